package ports

import (
	"context"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// TickSource entrega ticks de precio uno a uno, en orden de timestamp.
// El backtest los consume tan rápido como puede; el modo paper los recibe
// al ritmo que la fuente decida.
type TickSource interface {
	// Next devuelve el siguiente tick. Devuelve domain.ErrSourceDrained
	// envuelto cuando la fuente se agota.
	Next(ctx context.Context) (domain.PriceTick, error)
}

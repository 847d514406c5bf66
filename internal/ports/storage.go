package ports

import (
	"context"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// SweepStorage persiste los resultados de un sweep del optimizer.
type SweepStorage interface {
	// SaveSweep persiste el sweep completo con sus trials ya rankeados.
	// Devuelve el identificador asignado al sweep.
	SaveSweep(ctx context.Context, symbol string, results []domain.TrialResult) (string, error)

	// TopTrials devuelve los mejores n trials del sweep dado, en orden de ranking.
	TopTrials(ctx context.Context, sweepID string, n int) ([]domain.TrialResult, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}

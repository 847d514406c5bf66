package domain

import (
	"fmt"
	"time"
)

// PriceTick es una vela OHLCV inmutable. Una vez producida nunca se modifica.
type PriceTick struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// PriceSeries es una secuencia de ticks ordenada por timestamp.
// Es el único recurso compartido entre trials paralelos del optimizer:
// solo lectura, nunca se muta después de cargarla.
type PriceSeries []PriceTick

// Validate verifica que la serie no esté vacía y que los timestamps
// sean estrictamente crecientes. No se asume ausencia de gaps.
func (s PriceSeries) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("domain.PriceSeries: %w", ErrEmptySeries)
	}
	for i := 1; i < len(s); i++ {
		if !s[i].Timestamp.After(s[i-1].Timestamp) {
			return fmt.Errorf("domain.PriceSeries: tick %d: timestamp %s not after %s",
				i, s[i].Timestamp.Format(time.RFC3339), s[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// Span devuelve la ventana temporal cubierta por la serie.
func (s PriceSeries) Span() time.Duration {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Timestamp.Sub(s[0].Timestamp)
}

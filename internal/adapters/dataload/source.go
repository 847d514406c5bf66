package dataload

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// SeriesSource implementa ports.TickSource sobre una serie ya cargada.
// El ritmo de entrega lo decide el consumidor (el modo paper lo pacea
// con un rate limiter).
type SeriesSource struct {
	series domain.PriceSeries
	next   int
}

// NewSeriesSource crea una fuente que reproduce la serie en orden.
func NewSeriesSource(series domain.PriceSeries) *SeriesSource {
	return &SeriesSource{series: series}
}

// Next devuelve el siguiente tick, o ErrSourceDrained al agotarse la serie.
func (s *SeriesSource) Next(ctx context.Context) (domain.PriceTick, error) {
	if err := ctx.Err(); err != nil {
		return domain.PriceTick{}, fmt.Errorf("dataload.SeriesSource: %w", err)
	}
	if s.next >= len(s.series) {
		return domain.PriceTick{}, fmt.Errorf("dataload.SeriesSource: %w", domain.ErrSourceDrained)
	}
	tick := s.series[s.next]
	s.next++
	return tick, nil
}

// Remaining devuelve cuántos ticks quedan por entregar.
func (s *SeriesSource) Remaining() int {
	return len(s.series) - s.next
}

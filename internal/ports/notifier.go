package ports

import (
	"github.com/alejandrodnm/gridbot/internal/domain"
)

// Notifier presenta los resultados al usuario.
type Notifier interface {
	// PrintReport muestra el report de un backtest individual, con los
	// benchmarks de buy-and-hold y sell-and-hold como referencia.
	PrintReport(report domain.PerformanceReport, params domain.ParameterSet, series domain.PriceSeries)

	// PrintSweep muestra los mejores trials de un sweep y las estadísticas
	// de supervivencia.
	PrintSweep(results []domain.TrialResult, topN int)

	// PrintTrades muestra el trade log completo de un report.
	PrintTrades(trades []domain.Trade)
}

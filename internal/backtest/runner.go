package backtest

// runner.go — alimenta una PriceSeries tick a tick al par engine/simulator y
// arma el PerformanceReport.
//
// Run es puro respecto a estado global: construye su propio Simulator y su
// propia grilla, itera los ticks en orden de timestamp exactamente una vez y
// sin look-ahead. Dos invocaciones con inputs idénticos producen reports
// bit-idénticos — requisito para que el optimizer pueda comparar trials.

import (
	"fmt"

	"github.com/alejandrodnm/gridbot/internal/domain"
	"github.com/alejandrodnm/gridbot/internal/exchange"
	"github.com/alejandrodnm/gridbot/internal/strategy"
)

// StrategyFactory construye la estrategia para un run. Permite enchufar
// variantes de grilla nuevas sin tocar el runner ni el simulator.
type StrategyFactory func(params domain.ParameterSet, sim *exchange.Simulator, basePrice float64) (strategy.TickStrategy, error)

// Runner ejecuta backtests aislados.
type Runner struct {
	factory StrategyFactory
}

// New crea un Runner con la grilla apalancada por defecto.
func New() *Runner {
	return &Runner{
		factory: func(params domain.ParameterSet, sim *exchange.Simulator, basePrice float64) (strategy.TickStrategy, error) {
			return strategy.NewGridEngine(params, sim, basePrice)
		},
	}
}

// NewWithStrategy crea un Runner con una estrategia alternativa.
func NewWithStrategy(factory StrategyFactory) *Runner {
	return &Runner{factory: factory}
}

// Run ejecuta el backtest completo. Parámetros inválidos o una serie
// malformada abortan solo esta invocación, nunca un sweep entero.
func (r *Runner) Run(series domain.PriceSeries, params domain.ParameterSet) (domain.PerformanceReport, error) {
	if err := params.Validate(); err != nil {
		return domain.PerformanceReport{}, fmt.Errorf("backtest.Run: %w", err)
	}
	if err := series.Validate(); err != nil {
		return domain.PerformanceReport{}, fmt.Errorf("backtest.Run: %w", err)
	}

	sim := exchange.New(params.InitialCapital, exchange.Config{
		MakerFee:               params.MakerFee,
		TakerFee:               params.TakerFee,
		Slippage:               params.Slippage,
		MaintenanceMargin:      params.MaintenanceMargin,
		MinLiquidationDistance: params.MinLiquidationDistance,
	})

	strat, err := r.factory(params, sim, series[0].Close)
	if err != nil {
		return domain.PerformanceReport{}, fmt.Errorf("backtest.Run: build strategy: %w", err)
	}

	curve := make([]float64, 0, len(series))
	for _, tick := range series {
		if err := strat.OnTick(tick); err != nil {
			return domain.PerformanceReport{}, fmt.Errorf("backtest.Run: tick %s: %w",
				tick.Timestamp, err)
		}
		curve = append(curve, sim.Equity())
	}

	return BuildReport(sim, strat, params, curve), nil
}

// BuildReport deriva las métricas finales del estado del simulador. También
// lo usa el modo paper al cerrar una sesión.
func BuildReport(sim *exchange.Simulator, strat strategy.TickStrategy, params domain.ParameterSet, curve []float64) domain.PerformanceReport {
	trades := sim.Trades()

	wins := 0
	for _, tr := range trades {
		if tr.PnL > 0 {
			wins++
		}
	}
	winRate := 0.0
	if len(trades) > 0 {
		winRate = float64(wins) / float64(len(trades))
	}

	final := sim.Equity()
	return domain.PerformanceReport{
		FinalEquity:      final,
		TotalReturnPct:   (final/params.InitialCapital - 1) * 100,
		TradeCount:       len(trades),
		WinRate:          winRate,
		MaxDrawdownPct:   domain.MaxDrawdownPct(curve),
		LiquidationCount: sim.Liquidations(),
		TotalFees:        sim.TotalFees(),
		Halted:           strat.Halted(),
		EquityCurve:      curve,
		TradeLog:         trades,
	}
}

package paper

// engine.go — sesiones de paper trading: la misma grilla y el mismo
// simulador que el backtest, pero alimentados por un TickSource al ritmo
// real (o acelerado) en vez de consumir una serie de golpe.
//
// Una sesión no toca dinero: el "exchange" es el mismo Simulator de los
// backtests, con fees y slippage. La diferencia es el pacing y el status
// periódico por consola.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/gridbot/internal/backtest"
	"github.com/alejandrodnm/gridbot/internal/domain"
	"github.com/alejandrodnm/gridbot/internal/exchange"
	"github.com/alejandrodnm/gridbot/internal/ports"
	"github.com/alejandrodnm/gridbot/internal/strategy"
)

// StatusPrinter es el subconjunto del notificador de consola que la sesión
// usa para el status periódico y el report final.
type StatusPrinter interface {
	PrintPaperStatus(sessionID string, tick domain.PriceTick, equity float64, trades, liquidations int)
	PrintReport(report domain.PerformanceReport, params domain.ParameterSet, series domain.PriceSeries)
}

// Config controla el pacing y la frecuencia de status de la sesión.
type Config struct {
	TickInterval time.Duration // separación mínima entre ticks; <= 0 sin pacing
	StatusEvery  int           // imprimir status cada N ticks; <= 0 usa 10
}

// Engine corre una sesión de paper trading sobre un TickSource.
type Engine struct {
	cfg       Config
	params    domain.ParameterSet
	source    ports.TickSource
	printer   StatusPrinter
	sessionID string
}

// NewEngine crea una sesión con su propio identificador.
func NewEngine(cfg Config, params domain.ParameterSet, source ports.TickSource, printer StatusPrinter) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("paper.NewEngine: %w", err)
	}
	if cfg.StatusEvery <= 0 {
		cfg.StatusEvery = 10
	}
	return &Engine{
		cfg:       cfg,
		params:    params,
		source:    source,
		printer:   printer,
		sessionID: uuid.NewString(),
	}, nil
}

// SessionID devuelve el identificador de la sesión.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Run consume el TickSource hasta agotarlo o hasta que el contexto se
// cancele, y devuelve el report de la sesión. La cancelación no es un
// error: la sesión cierra con lo acumulado hasta ese momento.
func (e *Engine) Run(ctx context.Context) (domain.PerformanceReport, error) {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if e.cfg.TickInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(e.cfg.TickInterval), 1)
	}

	slog.Info("paper session starting",
		"session", e.sessionID,
		"symbol", e.params.Symbol,
		"tick_interval", e.cfg.TickInterval,
	)

	var (
		sim    *exchange.Simulator
		strat  strategy.TickStrategy
		series domain.PriceSeries
		curve  []float64
	)

	for {
		if err := limiter.Wait(ctx); err != nil {
			break // contexto cancelado
		}

		tick, err := e.source.Next(ctx)
		if errors.Is(err, domain.ErrSourceDrained) || errors.Is(err, context.Canceled) {
			break
		}
		if err != nil {
			return domain.PerformanceReport{}, fmt.Errorf("paper.Run: next tick: %w", err)
		}

		// El primer tick fija el precio base de la grilla.
		if sim == nil {
			sim = exchange.New(e.params.InitialCapital, exchange.Config{
				MakerFee:               e.params.MakerFee,
				TakerFee:               e.params.TakerFee,
				Slippage:               e.params.Slippage,
				MaintenanceMargin:      e.params.MaintenanceMargin,
				MinLiquidationDistance: e.params.MinLiquidationDistance,
			})
			strat, err = strategy.NewGridEngine(e.params, sim, tick.Close)
			if err != nil {
				return domain.PerformanceReport{}, fmt.Errorf("paper.Run: build strategy: %w", err)
			}
		}

		if err := strat.OnTick(tick); err != nil {
			return domain.PerformanceReport{}, fmt.Errorf("paper.Run: tick %s: %w", tick.Timestamp, err)
		}

		series = append(series, tick)
		curve = append(curve, sim.Equity())

		if len(series)%e.cfg.StatusEvery == 0 {
			e.printer.PrintPaperStatus(e.sessionID, tick, sim.Equity(),
				len(sim.Trades()), sim.Liquidations())
		}
	}

	if sim == nil {
		return domain.PerformanceReport{}, fmt.Errorf("paper.Run: %w", domain.ErrEmptySeries)
	}

	report := backtest.BuildReport(sim, strat, e.params, curve)
	e.printer.PrintReport(report, e.params, series)

	slog.Info("paper session closed",
		"session", e.sessionID,
		"ticks", len(series),
		"trades", report.TradeCount,
		"final_equity", report.FinalEquity,
	)
	return report, nil
}

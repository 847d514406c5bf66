package strategy

// engine.go — motor de decisión de la grilla.
//
// Contrato por tick: precio entra, order intents salen hacia el
// ExchangeSimulator. Los rechazos de entrada (margen insuficiente, distancia
// de liquidación insegura) son no fatales: el nivel queda ARMED y el run
// sigue. Superar el max_portfolio_drawdown es terminal: el engine pasa a
// HALTED y no procesa más entradas, solo cierres pendientes.

import (
	"errors"
	"log/slog"

	"github.com/alejandrodnm/gridbot/internal/domain"
	"github.com/alejandrodnm/gridbot/internal/exchange"
)

// TickStrategy es el contrato de decisión que consume el runner: tick entra,
// intents salen. Variantes nuevas de grilla se agregan implementando esto sin
// tocar el ExchangeSimulator.
type TickStrategy interface {
	OnTick(tick domain.PriceTick) error
	Halted() bool
}

// GridEngine implementa TickStrategy para la grilla apalancada de una sola
// posición. La dirección (SHORT u LONG) viene del ParameterSet; ambas
// variantes comparten esta implementación.
type GridEngine struct {
	params domain.ParameterSet
	sim    *exchange.Simulator
	grid   *Grid
	vol    *trueRangeWindow

	openLevel int // índice del nivel que abrió la posición actual, -1 si flat
	halted    bool
}

// NewGridEngine construye el engine con todos los niveles ARMED centrados en
// el precio base dado.
func NewGridEngine(params domain.ParameterSet, sim *exchange.Simulator, basePrice float64) (*GridEngine, error) {
	grid, err := NewGrid(basePrice, params.GridSize, params.GridRatio, params.Spacing, params.Side)
	if err != nil {
		return nil, err
	}

	e := &GridEngine{
		params:    params,
		sim:       sim,
		grid:      grid,
		openLevel: -1,
	}
	if params.AdaptiveSpacing {
		e.vol = newTrueRangeWindow(params.VolLookback)
	}
	return e, nil
}

// OnTick procesa un tick completo: mark-to-market, liquidación, drawdown,
// cierre por take-profit y por último una entrada como máximo.
func (e *GridEngine) OnTick(tick domain.PriceTick) error {
	price := tick.Close

	e.sim.MarkToMarket(price)
	if e.vol != nil {
		e.vol.Observe(tick.High, tick.Low, tick.Close)
	}

	// Liquidación forzada: resetea toda la grilla.
	if _, liquidated := e.sim.CheckLiquidation(price, tick.Timestamp); liquidated {
		e.grid.RearmAll()
		e.openLevel = -1
	}

	// Drawdown: fatal para entradas, los cierres pendientes siguen su curso.
	if !e.halted && e.sim.Account().Drawdown() > e.params.MaxPortfolioDrawdown {
		e.halted = true
		slog.Warn("drawdown limit exceeded, entries halted",
			"drawdown", e.sim.Account().Drawdown(),
			"limit", e.params.MaxPortfolioDrawdown,
		)
	}

	if e.sim.HasPosition() {
		e.maybeClose(price, tick)
	}

	if !e.halted && !e.sim.HasPosition() {
		e.maybeRespace(price)
		e.maybeOpen(price, tick)
	}
	return nil
}

// Halted informa si el engine entró en estado terminal por drawdown.
func (e *GridEngine) Halted() bool { return e.halted }

// maybeClose cierra la posición cuando el precio alcanza el paso de grilla
// adyacente (take-profit) y re-arma el nivel.
func (e *GridEngine) maybeClose(price float64, tick domain.PriceTick) {
	if e.openLevel < 0 {
		return
	}

	target := e.grid.TakeProfit(e.openLevel)
	reached := price <= target
	if e.params.Side == domain.SideLong {
		reached = price >= target
	}
	if !reached {
		return
	}

	trade, err := e.sim.ClosePosition(price, tick.Timestamp)
	if err != nil {
		slog.Error("close failed", "err", err)
		return
	}
	e.grid.Rearm(e.openLevel)
	e.openLevel = -1

	slog.Debug("take profit",
		"target", target,
		"price", price,
		"pnl", trade.PnL,
	)
}

// maybeOpen dispara como máximo el nivel ARMED más cercano cruzado este tick.
// El tamaño compromete min(max_position_size × equity, cash disponible) como
// margen.
func (e *GridEngine) maybeOpen(price float64, tick domain.PriceTick) {
	idx := e.grid.NearestTriggered(price)
	if idx < 0 {
		return
	}

	margin := e.params.MaxPositionSize * e.sim.Equity()
	if cash := e.sim.AvailableMargin(); cash < margin {
		margin = cash
	}
	if margin <= 0 || price <= 0 {
		return
	}
	size := margin * e.params.Leverage / price

	_, err := e.sim.OpenPosition(e.params.Side, price, size, e.params.Leverage, tick.Timestamp)
	switch {
	case err == nil:
		e.grid.Fill(idx)
		e.openLevel = idx
	case errors.Is(err, domain.ErrInsufficientMargin),
		errors.Is(err, domain.ErrUnsafeLiquidationDistance):
		// No fatal: el nivel queda ARMED y se reintenta en ticks futuros.
		slog.Debug("entry skipped", "level", e.grid.Levels()[idx].Price, "err", err)
	default:
		slog.Error("open failed", "err", err)
	}
}

// maybeRespace recalcula la grilla entre ciclos de trading (nunca con
// posición abierta): cuando el mercado se alejó del rango, y con el ratio
// escalado por volatilidad si el spacing adaptativo está activo.
func (e *GridEngine) maybeRespace(price float64) {
	if !e.grid.OutOfRange(price) {
		return
	}

	ratio := e.params.GridRatio
	if e.vol != nil {
		ratio = e.vol.ScaledRatio(ratio)
	}
	if err := e.grid.Rebase(price, ratio); err != nil {
		slog.Error("grid rebase failed", "err", err)
		return
	}
	e.openLevel = -1

	slog.Debug("grid rebased", "base", price, "ratio", ratio)
}

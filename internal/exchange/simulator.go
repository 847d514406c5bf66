package exchange

// simulator.go — cuenta de margen virtual.
//
// Modela balance, posición abierta, fees, slippage y liquidación contra los
// ticks que le alimenta el runner. Sin estado global: cada backtest construye
// su propio Simulator, lo que hace triviales los trials paralelos del
// optimizer.
//
// Política numérica: float64 en todo el motor; los cruces de liquidación son
// inclusivos (ver domain.CrossedLiquidation).

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// Config agrupa los parámetros de ejecución del exchange simulado.
type Config struct {
	MakerFee               float64 // pata de entrada
	TakerFee               float64 // pata de salida y liquidación
	Slippage               float64 // fracción adversa aplicada al fill
	MaintenanceMargin      float64
	MinLiquidationDistance float64
}

// Simulator posee el Account en exclusiva; toda mutación pasa por su API.
type Simulator struct {
	cfg          Config
	acct         domain.Account
	trades       []domain.Trade
	liquidations int
	totalFees    float64
}

// New crea un simulador con el capital inicial dado.
func New(initialCapital float64, cfg Config) *Simulator {
	return &Simulator{
		cfg: cfg,
		acct: domain.Account{
			CashBalance:   initialCapital,
			Equity:        initialCapital,
			HighWaterMark: initialCapital,
		},
	}
}

// OpenPosition intenta abrir una posición apalancada al precio dado.
//
// Aplica slippage y fee de entrada antes de calcular el margen requerido.
// Rechaza con ErrInsufficientMargin si el margen más el fee no caben en el
// cash, y con ErrUnsafeLiquidationDistance si el precio de liquidación
// resultante queda a menos de min_liquidation_distance de la entrada.
// Ambos rechazos dejan el Account intacto.
func (s *Simulator) OpenPosition(side domain.Side, price, size, leverage float64, ts time.Time) (domain.Position, error) {
	if s.acct.OpenPosition != nil {
		return domain.Position{}, fmt.Errorf("exchange.OpenPosition: %w", domain.ErrPositionOpen)
	}
	if size <= 0 || price <= 0 {
		return domain.Position{}, fmt.Errorf("exchange.OpenPosition: size %.8f price %.8f: %w",
			size, price, domain.ErrInsufficientMargin)
	}

	fill := domain.SlippedFill(side, price, s.cfg.Slippage, true)
	fee := size * fill * s.cfg.MakerFee
	margin := domain.RequiredMargin(fill, size, leverage)

	if margin+fee > s.acct.CashBalance {
		return domain.Position{}, fmt.Errorf("exchange.OpenPosition: need %.2f have %.2f: %w",
			margin+fee, s.acct.CashBalance, domain.ErrInsufficientMargin)
	}

	dist := domain.LiquidationDistance(side, fill, leverage, s.cfg.MaintenanceMargin)
	if dist < s.cfg.MinLiquidationDistance {
		return domain.Position{}, fmt.Errorf("exchange.OpenPosition: liq distance %.4f < %.4f: %w",
			dist, s.cfg.MinLiquidationDistance, domain.ErrUnsafeLiquidationDistance)
	}

	pos := domain.Position{
		Side:             side,
		EntryPrice:       fill,
		Size:             size,
		Leverage:         leverage,
		MarginUsed:       margin,
		LiquidationPrice: domain.LiquidationPrice(side, fill, leverage, s.cfg.MaintenanceMargin),
		EntryFee:         fee,
		OpenedAt:         ts,
	}

	s.acct.CashBalance -= margin + fee
	s.acct.OpenPosition = &pos
	s.totalFees += fee
	s.MarkToMarket(price)

	slog.Debug("position opened",
		"side", side,
		"fill", fill,
		"size", size,
		"leverage", leverage,
		"liq_price", pos.LiquidationPrice,
	)
	return pos, nil
}

// ClosePosition cierra la posición abierta al precio dado (con slippage y fee
// taker), acredita el cash y agrega el Trade al log.
func (s *Simulator) ClosePosition(price float64, ts time.Time) (domain.Trade, error) {
	pos := s.acct.OpenPosition
	if pos == nil {
		return domain.Trade{}, fmt.Errorf("exchange.ClosePosition: %w", domain.ErrNoPosition)
	}

	fill := domain.SlippedFill(pos.Side, price, s.cfg.Slippage, false)
	exitFee := pos.Size * fill * s.cfg.TakerFee
	gross := domain.PositionPnL(pos.Side, pos.EntryPrice, fill, pos.Size)

	trade := s.settle(pos, fill, gross, exitFee, domain.CloseTakeProfit, ts, false)
	s.MarkToMarket(price)

	slog.Debug("position closed",
		"fill", fill,
		"pnl", trade.PnL,
		"fees", trade.Fees,
	)
	return trade, nil
}

// MarkToMarket actualiza equity y high-water-mark con el precio actual sin
// tocar el cash. Se llama en cada tick.
func (s *Simulator) MarkToMarket(price float64) {
	equity := s.acct.CashBalance
	if pos := s.acct.OpenPosition; pos != nil {
		equity += pos.MarginUsed + domain.PositionPnL(pos.Side, pos.EntryPrice, price, pos.Size)
	}
	s.acct.Equity = equity
	if equity > s.acct.HighWaterMark {
		s.acct.HighWaterMark = equity
	}
}

// CheckLiquidation fuerza el cierre si el precio cruzó (inclusive) el precio
// de liquidación en la dirección adversa. El fill es el precio de liquidación
// calculado, no el precio del tick — la pérdida se detiene en el umbral de
// mantenimiento aunque el tick haya saltado más allá. El fee de la pata de
// cierre se aplica igual y el contador de liquidaciones incrementa.
func (s *Simulator) CheckLiquidation(price float64, ts time.Time) (domain.Trade, bool) {
	pos := s.acct.OpenPosition
	if pos == nil || !domain.CrossedLiquidation(pos.Side, price, pos.LiquidationPrice) {
		return domain.Trade{}, false
	}

	fill := pos.LiquidationPrice
	exitFee := pos.Size * fill * s.cfg.TakerFee
	gross := domain.PositionPnL(pos.Side, pos.EntryPrice, fill, pos.Size)

	trade := s.settle(pos, fill, gross, exitFee, domain.CloseLiquidation, ts, true)
	s.liquidations++
	s.MarkToMarket(price)

	slog.Warn("position liquidated",
		"liq_price", fill,
		"tick_price", price,
		"loss", trade.PnL,
	)
	return trade, true
}

// settle libera el margen, acredita el resultado y registra el Trade.
// En una liquidación el retorno de margen se recorta a >= 0: el margen se
// agota en el umbral de mantenimiento y la equity nunca queda negativa.
func (s *Simulator) settle(pos *domain.Position, fill, gross, exitFee float64, reason domain.CloseReason, ts time.Time, liquidation bool) domain.Trade {
	returned := pos.MarginUsed + gross - exitFee
	if liquidation && returned < 0 {
		returned = 0
	}

	s.acct.CashBalance += returned
	s.acct.OpenPosition = nil
	s.totalFees += exitFee

	fees := pos.EntryFee + exitFee
	net := gross - fees
	pnlPct := 0.0
	if pos.MarginUsed > 0 {
		pnlPct = net / pos.MarginUsed * 100
	}

	trade := domain.Trade{
		Side:       pos.Side,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  fill,
		Size:       pos.Size,
		Leverage:   pos.Leverage,
		PnL:        net,
		PnLPct:     pnlPct,
		Fees:       fees,
		Reason:     reason,
		OpenedAt:   pos.OpenedAt,
		ClosedAt:   ts,
	}
	s.trades = append(s.trades, trade)
	return trade
}

// Account devuelve un snapshot del estado de la cuenta.
func (s *Simulator) Account() domain.Account {
	acct := s.acct
	if acct.OpenPosition != nil {
		pos := *acct.OpenPosition
		acct.OpenPosition = &pos
	}
	return acct
}

// Equity devuelve la equity del último mark-to-market.
func (s *Simulator) Equity() float64 { return s.acct.Equity }

// AvailableMargin devuelve el cash libre para abrir posiciones.
func (s *Simulator) AvailableMargin() float64 { return s.acct.CashBalance }

// HasPosition informa si hay una posición abierta.
func (s *Simulator) HasPosition() bool { return s.acct.OpenPosition != nil }

// Trades devuelve el trade log acumulado.
func (s *Simulator) Trades() []domain.Trade { return s.trades }

// Liquidations devuelve cuántas liquidaciones forzadas hubo.
func (s *Simulator) Liquidations() int { return s.liquidations }

// TotalFees devuelve los fees pagados en ambas patas de todos los trades.
func (s *Simulator) TotalFees() float64 { return s.totalFees }

package domain

import "time"

// Side es la dirección de una posición o de un nivel de grilla.
type Side string

const (
	SideShort Side = "SHORT"
	SideLong  Side = "LONG"
)

// Position es la única posición abierta del account (variante single-position).
// Se crea en el fill y se destruye en el close; LiquidationPrice se recalcula
// en cada cambio de size/leverage.
type Position struct {
	Side             Side
	EntryPrice       float64 // precio de fill, ya con slippage aplicado
	Size             float64 // unidades del activo base
	Leverage         float64
	MarginUsed       float64
	LiquidationPrice float64
	EntryFee         float64
	OpenedAt         time.Time
}

// Notional devuelve el valor nominal de la posición al precio de entrada.
func (p Position) Notional() float64 {
	return p.Size * p.EntryPrice
}

// Account es el estado de la cuenta de margen virtual. Lo posee en exclusiva
// el ExchangeSimulator y solo se muta a través de su API de ejecución.
type Account struct {
	CashBalance   float64
	Equity        float64 // cash + PnL no realizado
	OpenPosition  *Position
	HighWaterMark float64 // máximo equity observado, para drawdown
}

// Drawdown devuelve el drawdown actual respecto al high-water-mark.
func (a Account) Drawdown() float64 {
	if a.HighWaterMark <= 0 {
		return 0
	}
	return (a.HighWaterMark - a.Equity) / a.HighWaterMark
}

// CloseReason explica por qué se cerró un trade.
type CloseReason string

const (
	CloseTakeProfit  CloseReason = "take_profit"
	CloseLiquidation CloseReason = "liquidation"
	CloseEndOfRun    CloseReason = "end_of_run"
)

// Trade es el registro inmutable de una posición cerrada. Se agrega al trade
// log en cada close y nunca se muta después.
type Trade struct {
	Side       Side
	EntryPrice float64
	ExitPrice  float64
	Size       float64
	Leverage   float64
	PnL        float64 // neto, con ambas patas de fees descontadas
	PnLPct     float64 // PnL / margen usado
	Fees       float64
	Reason     CloseReason
	OpenedAt   time.Time
	ClosedAt   time.Time
}

package domain

import "math"

// pricing.go — matemática pura de margen, PnL y liquidación.
//
// Todo el motor opera en float64 de forma consistente; las comparaciones de
// liquidación son inclusivas (>= para SHORT, <= para LONG) para que un tick
// exactamente en el precio de liquidación dispare el cierre de forma
// determinista.

// RequiredMargin devuelve el margen necesario para abrir una posición:
// nominal / leverage.
func RequiredMargin(price, size, leverage float64) float64 {
	if leverage <= 0 {
		return math.Inf(1)
	}
	return price * size / leverage
}

// LiquidationPrice calcula el precio al que el margen queda consumido hasta
// la fracción de mantenimiento:
//
//	SHORT: entry × (1 + (1 − maintenanceMargin)/leverage)
//	LONG:  entry × (1 − (1 − maintenanceMargin)/leverage)
//
// A menor leverage la distancia a entry crece — más margen posteado absorbe
// más movimiento adverso antes de agotarse.
func LiquidationPrice(side Side, entry, leverage, maintenanceMargin float64) float64 {
	ratio := (1 - maintenanceMargin) / leverage
	if side == SideShort {
		return entry * (1 + ratio)
	}
	return entry * (1 - ratio)
}

// LiquidationDistance devuelve la distancia relativa entre entry y el precio
// de liquidación. Se compara contra min_liquidation_distance al abrir.
func LiquidationDistance(side Side, entry, leverage, maintenanceMargin float64) float64 {
	if entry <= 0 {
		return 0
	}
	liq := LiquidationPrice(side, entry, leverage, maintenanceMargin)
	return math.Abs(liq-entry) / entry
}

// CrossedLiquidation informa si el precio cruzó (inclusive) el precio de
// liquidación en la dirección adversa a la posición.
func CrossedLiquidation(side Side, price, liquidationPrice float64) bool {
	if side == SideShort {
		return price >= liquidationPrice
	}
	return price <= liquidationPrice
}

// PositionPnL calcula el PnL bruto de una posición: size × (entry − exit)
// para SHORT, el inverso para LONG. Sin fees.
func PositionPnL(side Side, entry, exit, size float64) float64 {
	if side == SideShort {
		return size * (entry - exit)
	}
	return size * (exit - entry)
}

// SlippedFill aplica el slippage adverso al precio solicitado: abrir un SHORT
// (vender) llena más abajo, cerrarlo (comprar) llena más arriba; LONG al revés.
func SlippedFill(side Side, price, slippage float64, opening bool) float64 {
	selling := (side == SideShort) == opening
	if selling {
		return price * (1 - slippage)
	}
	return price * (1 + slippage)
}

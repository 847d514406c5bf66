package domain

import "errors"

// Taxonomía de errores del motor. Los dos primeros son rechazos de entrada
// no fatales: el nivel de grilla queda ARMED y el run continúa. Los demás
// abortan el run (pero nunca el sweep completo del optimizer).
var (
	// ErrInsufficientMargin: el margen requerido supera el cash disponible.
	ErrInsufficientMargin = errors.New("insufficient margin")

	// ErrUnsafeLiquidationDistance: el precio de liquidación calculado queda
	// demasiado cerca del precio de entrada.
	ErrUnsafeLiquidationDistance = errors.New("liquidation price too close to entry")

	// ErrDrawdownLimitExceeded: el drawdown de equity superó el máximo
	// configurado. Fatal para nuevas entradas durante el resto del run.
	ErrDrawdownLimitExceeded = errors.New("max portfolio drawdown exceeded")

	// ErrInvalidParameterSet: combinación de parámetros inválida. Fatal en
	// el setup del trial; el trial se marca como fallido y el sweep sigue.
	ErrInvalidParameterSet = errors.New("invalid parameter set")

	// ErrEmptySeries: serie de precios vacía.
	ErrEmptySeries = errors.New("empty price series")

	// ErrPositionOpen / ErrNoPosition: violaciones del invariante de una
	// sola posición abierta a la vez.
	ErrPositionOpen = errors.New("a position is already open")
	ErrNoPosition   = errors.New("no open position")

	// ErrSourceDrained: el TickSource se quedó sin ticks. No es un fallo,
	// marca el final natural de una sesión paper.
	ErrSourceDrained = errors.New("tick source drained")
)

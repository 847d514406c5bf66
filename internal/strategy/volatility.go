package strategy

// volatility.go — true range rodante para el spacing adaptativo.

import "math"

// referenceTrueRange es la volatilidad "normal" contra la que se escala el
// grid ratio cuando el spacing adaptativo está activo.
const referenceTrueRange = 0.02

// trueRangeWindow acumula el true range relativo de los últimos N ticks.
type trueRangeWindow struct {
	lookback  int
	samples   []float64
	prevClose float64
}

func newTrueRangeWindow(lookback int) *trueRangeWindow {
	return &trueRangeWindow{lookback: lookback}
}

// Observe registra el true range del tick: max(H−L, |H−prevC|, |L−prevC|)
// normalizado por el close.
func (w *trueRangeWindow) Observe(high, low, close float64) {
	if close <= 0 {
		return
	}
	tr := high - low
	if w.prevClose > 0 {
		tr = math.Max(tr, math.Max(math.Abs(high-w.prevClose), math.Abs(low-w.prevClose)))
	}
	w.prevClose = close

	w.samples = append(w.samples, tr/close)
	if len(w.samples) > w.lookback {
		w.samples = w.samples[1:]
	}
}

// Ready informa si la ventana ya tiene lookback muestras completas.
func (w *trueRangeWindow) Ready() bool {
	return len(w.samples) >= w.lookback
}

// ScaledRatio escala el ratio base por la volatilidad reciente, acotado a
// [0.5×, 2×] para que un pico de volatilidad no deforme la grilla.
func (w *trueRangeWindow) ScaledRatio(baseRatio float64) float64 {
	if !w.Ready() {
		return baseRatio
	}
	sum := 0.0
	for _, s := range w.samples {
		sum += s
	}
	avg := sum / float64(len(w.samples))

	scale := avg / referenceTrueRange
	if scale < 0.5 {
		scale = 0.5
	} else if scale > 2 {
		scale = 2
	}
	return baseRatio * scale
}

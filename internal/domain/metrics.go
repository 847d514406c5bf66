package domain

import "math"

// metrics.go — métricas de performance sobre curvas de equity.

const periodsPerYear = 365 // velas diarias

// SharpeRatio calcula el Sharpe anualizado de una curva de equity usando
// los retornos por tick. Devuelve 0 si no hay suficientes puntos o la
// volatilidad es nula.
func SharpeRatio(equity []float64) float64 {
	returns := pctChanges(equity)
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(periodsPerYear)
}

// MaxDrawdownPct devuelve el peor drawdown de la curva en porcentaje,
// medido contra el high-water-mark acumulado.
func MaxDrawdownPct(equity []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dd := (peak - e) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst * 100
}

// BuyAndHoldReturnPct es el benchmark pasivo: comprar en el primer close y
// mantener hasta el último.
func BuyAndHoldReturnPct(series PriceSeries) float64 {
	if len(series) < 2 || series[0].Close <= 0 {
		return 0
	}
	return (series[len(series)-1].Close/series[0].Close - 1) * 100
}

// SellAndHoldReturnPct es el benchmark espejo: un short con el leverage dado
// abierto en el primer close y mantenido hasta el final.
func SellAndHoldReturnPct(series PriceSeries, leverage float64) float64 {
	return -BuyAndHoldReturnPct(series) * leverage
}

// pctChanges devuelve los retornos relativos entre puntos consecutivos,
// saltando los puntos con base <= 0.
func pctChanges(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 {
			continue
		}
		out = append(out, values[i]/values[i-1]-1)
	}
	return out
}

package dataload

// synthetic.go — generador de velas sintéticas para el modo paper y para
// probar sweeps sin depender de datos históricos en disco. Random walk
// geométrico con seed fija: la misma seed produce siempre la misma serie.

import (
	"math"
	"math/rand"
	"time"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// SyntheticConfig parametriza el random walk.
type SyntheticConfig struct {
	StartPrice float64       // precio inicial; <= 0 usa 100
	Drift      float64       // retorno medio por tick (p.ej. -0.001)
	Volatility float64       // desviación del retorno por tick; <= 0 usa 0.02
	Interval   time.Duration // separación entre ticks; <= 0 usa 24h
	Seed       int64
}

// GenerateSeries produce n velas sintéticas empezando en start.
func GenerateSeries(n int, start time.Time, cfg SyntheticConfig) domain.PriceSeries {
	if cfg.StartPrice <= 0 {
		cfg.StartPrice = 100
	}
	if cfg.Volatility <= 0 {
		cfg.Volatility = 0.02
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	series := make(domain.PriceSeries, 0, n)

	price := cfg.StartPrice
	for i := 0; i < n; i++ {
		ret := cfg.Drift + cfg.Volatility*rng.NormFloat64()
		next := price * math.Exp(ret)

		high := math.Max(price, next) * (1 + 0.25*cfg.Volatility*rng.Float64())
		low := math.Min(price, next) * (1 - 0.25*cfg.Volatility*rng.Float64())

		series = append(series, domain.PriceTick{
			Timestamp: start.Add(time.Duration(i) * cfg.Interval),
			Open:      price,
			High:      high,
			Low:       low,
			Close:     next,
			Volume:    1000 + 9000*rng.Float64(),
		})
		price = next
	}
	return series
}

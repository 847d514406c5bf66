package optimizer

import (
	"math/rand"
	"sort"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// Space son los rangos de parámetros a explorar. El producto cartesiano de
// los cuatro ejes define los trials candidatos.
type Space struct {
	GridSizes        []int
	GridRatios       []float64
	Leverages        []float64
	MaxPositionSizes []float64
}

// Combinations expande el producto cartesiano sobre el template base y
// deduplica por clave canónica: una combinación idéntica jamás se corre dos
// veces dentro de un sweep.
func (s Space) Combinations(base domain.ParameterSet) []domain.ParameterSet {
	seen := make(map[string]struct{})
	var combos []domain.ParameterSet

	for _, gs := range s.GridSizes {
		for _, gr := range s.GridRatios {
			for _, lev := range s.Leverages {
				for _, pos := range s.MaxPositionSizes {
					p := base
					p.GridSize = gs
					p.GridRatio = gr
					p.Leverage = lev
					p.MaxPositionSize = pos

					key := p.Key()
					if _, dup := seen[key]; dup {
						continue
					}
					seen[key] = struct{}{}
					combos = append(combos, p)
				}
			}
		}
	}
	return combos
}

// Sample recorta los combos al presupuesto de trials con un shuffle
// determinista (seed fija): el mismo sweep sobre los mismos rangos elige
// siempre los mismos candidatos. El orden de salida se re-canoniza por clave
// para que el ranking final no dependa del orden de muestreo.
func Sample(combos []domain.ParameterSet, maxTrials int, seed int64) []domain.ParameterSet {
	if maxTrials <= 0 || len(combos) <= maxTrials {
		return combos
	}

	shuffled := make([]domain.ParameterSet, len(combos))
	copy(shuffled, combos)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	picked := shuffled[:maxTrials]
	sort.Slice(picked, func(i, j int) bool {
		return picked[i].Key() < picked[j].Key()
	})
	return picked
}

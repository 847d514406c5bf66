package strategy

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// LevelState es el estado de un nivel dentro de la máquina
// ARMED → FILLED → ARMED.
type LevelState string

const (
	LevelArmed  LevelState = "ARMED"
	LevelFilled LevelState = "FILLED"
)

// Level es un umbral de precio de la grilla.
type Level struct {
	Price float64
	Side  domain.Side
	State LevelState
}

// Grid mantiene el set de niveles generados desde un precio base.
//
// Una grilla SHORT escalona sus niveles estrictamente por debajo del base: un
// nivel dispara cuando el precio cae a través de él y la posición toma
// ganancia un paso de grilla más abajo. La grilla LONG es el espejo por
// encima del base. Como el precio arranca en el base, todo disparo inicial es
// un cruce genuino: con precio constante ningún nivel dispara jamás.
//
// Invariante: precios estrictamente monótonos y únicos, o la construcción
// falla.
type Grid struct {
	base    float64
	ratio   float64
	size    int
	spacing domain.GridSpacing
	side    domain.Side
	levels  []Level // ordenados del más cercano al base al más lejano
}

// NewGrid genera los niveles y verifica el invariante de monotonía.
func NewGrid(base float64, size int, ratio float64, spacing domain.GridSpacing, side domain.Side) (*Grid, error) {
	g := &Grid{base: base, ratio: ratio, size: size, spacing: spacing, side: side}
	if err := g.rebuild(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grid) rebuild() error {
	if g.base <= 0 {
		return fmt.Errorf("strategy.NewGrid: base price %.4f must be > 0", g.base)
	}

	// SHORT escalona hacia abajo, LONG hacia arriba.
	dir := -1.0
	if g.side == domain.SideLong {
		dir = 1.0
	}

	levels := make([]Level, 0, g.size)
	for i := 1; i <= g.size; i++ {
		price := g.step(g.base, dir, i)
		if price <= 0 {
			return fmt.Errorf("strategy.NewGrid: level %d collapsed to %.4f", i, price)
		}
		levels = append(levels, Level{Price: price, Side: g.side, State: LevelArmed})
	}

	for i := 1; i < len(levels); i++ {
		decreasing := levels[i].Price < levels[i-1].Price
		if (g.side == domain.SideShort) != decreasing {
			return fmt.Errorf("strategy.NewGrid: levels not strictly monotonic at %d", i)
		}
	}

	g.levels = levels
	return nil
}

// step devuelve el precio a i pasos del base en la dirección dada.
func (g *Grid) step(base, dir float64, i int) float64 {
	if g.spacing == domain.SpacingArithmetic {
		return base * (1 + dir*float64(i)*g.ratio)
	}
	return base * math.Pow(1+dir*g.ratio, float64(i))
}

// Levels devuelve una copia de los niveles.
func (g *Grid) Levels() []Level {
	out := make([]Level, len(g.levels))
	copy(out, g.levels)
	return out
}

// NearestTriggered devuelve el índice del nivel ARMED más cercano al precio
// que fue cruzado en la dirección de disparo (cayendo para SHORT, subiendo
// para LONG), o -1 si ninguno disparó. Un gap que salta varios niveles en un
// tick procesa solo este nivel — sin piramidación multi-nivel.
func (g *Grid) NearestTriggered(price float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, lvl := range g.levels {
		if lvl.State != LevelArmed {
			continue
		}
		crossed := price <= lvl.Price
		if g.side == domain.SideLong {
			crossed = price >= lvl.Price
		}
		if !crossed {
			continue
		}
		if d := math.Abs(price - lvl.Price); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// TakeProfit devuelve el precio objetivo para cerrar la posición abierta en
// el nivel i: el paso de grilla adyacente alejándose del base (el siguiente
// nivel, o su extrapolación para el último).
func (g *Grid) TakeProfit(i int) float64 {
	if i+1 < len(g.levels) {
		return g.levels[i+1].Price
	}
	dir := -1.0
	if g.side == domain.SideLong {
		dir = 1.0
	}
	return g.step(g.base, dir, g.size+1)
}

// Fill marca el nivel como FILLED.
func (g *Grid) Fill(i int) { g.levels[i].State = LevelFilled }

// Rearm devuelve el nivel a ARMED, listo para re-disparar.
func (g *Grid) Rearm(i int) { g.levels[i].State = LevelArmed }

// RearmAll resetea todos los niveles. Se usa tras una liquidación.
func (g *Grid) RearmAll() {
	for i := range g.levels {
		g.levels[i].State = LevelArmed
	}
}

// Rebase regenera los niveles alrededor de un nuevo precio base con un nuevo
// ratio. Solo debe llamarse entre ciclos de trading, nunca con una posición
// abierta. Conserva los parámetros previos si el rebuild falla.
func (g *Grid) Rebase(base, ratio float64) error {
	prevBase, prevRatio := g.base, g.ratio
	g.base, g.ratio = base, ratio
	if err := g.rebuild(); err != nil {
		g.base, g.ratio = prevBase, prevRatio
		return err
	}
	return nil
}

// Base devuelve el precio base actual de la grilla.
func (g *Grid) Base() float64 { return g.base }

// OutOfRange informa si el precio dejó atrás la grilla: un paso más allá del
// nivel más lejano, o un paso del otro lado del base. En ambos casos los
// niveles actuales ya no representan el mercado y conviene rebasar.
func (g *Grid) OutOfRange(price float64) bool {
	farthest := g.levels[len(g.levels)-1].Price
	if g.side == domain.SideShort {
		return price < farthest*(1-g.ratio) || price > g.base*(1+g.ratio)
	}
	return price > farthest*(1+g.ratio) || price < g.base*(1-g.ratio)
}

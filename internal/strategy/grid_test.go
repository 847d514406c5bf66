package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

func TestNewGrid_ShortLevelsBelowBaseMonotonic(t *testing.T) {
	g, err := NewGrid(100, 5, 0.02, domain.SpacingGeometric, domain.SideShort)
	require.NoError(t, err)

	levels := g.Levels()
	require.Len(t, levels, 5)

	prev := 100.0
	for i, lvl := range levels {
		assert.Less(t, lvl.Price, prev, "level %d must be strictly below the previous", i)
		assert.Equal(t, LevelArmed, lvl.State)
		prev = lvl.Price
	}
	assert.InDelta(t, 98.0, levels[0].Price, 1e-9)
	assert.InDelta(t, 96.04, levels[1].Price, 1e-9)
}

func TestNewGrid_LongLevelsAboveBase(t *testing.T) {
	g, err := NewGrid(100, 3, 0.02, domain.SpacingArithmetic, domain.SideLong)
	require.NoError(t, err)

	levels := g.Levels()
	assert.InDelta(t, 102.0, levels[0].Price, 1e-9)
	assert.InDelta(t, 104.0, levels[1].Price, 1e-9)
	assert.InDelta(t, 106.0, levels[2].Price, 1e-9)
}

func TestNewGrid_InvalidBase(t *testing.T) {
	_, err := NewGrid(0, 3, 0.02, domain.SpacingGeometric, domain.SideShort)
	assert.Error(t, err)
}

func TestNearestTriggered_GapPicksSingleNearest(t *testing.T) {
	g, err := NewGrid(100, 3, 0.02, domain.SpacingGeometric, domain.SideShort)
	require.NoError(t, err)

	// Un gap hasta 95 cruza 98 y 96.04; el más cercano al precio es 96.04.
	idx := g.NearestTriggered(95)
	require.Equal(t, 1, idx)

	// Precio en el base: ningún cruce.
	assert.Equal(t, -1, g.NearestTriggered(100))
}

func TestNearestTriggered_SkipsFilled(t *testing.T) {
	g, err := NewGrid(100, 3, 0.02, domain.SpacingGeometric, domain.SideShort)
	require.NoError(t, err)

	g.Fill(1)
	idx := g.NearestTriggered(95)
	assert.Equal(t, 0, idx, "filled level must not re-trigger until rearmed")

	g.Rearm(1)
	assert.Equal(t, 1, g.NearestTriggered(95))
}

func TestTakeProfit_AdjacentStepAwayFromBase(t *testing.T) {
	g, err := NewGrid(100, 3, 0.02, domain.SpacingGeometric, domain.SideShort)
	require.NoError(t, err)

	levels := g.Levels()
	assert.InDelta(t, levels[1].Price, g.TakeProfit(0), 1e-9)
	assert.InDelta(t, levels[2].Price, g.TakeProfit(1), 1e-9)
	// Último nivel: extrapola un paso más.
	assert.InDelta(t, 100*0.98*0.98*0.98*0.98, g.TakeProfit(2), 1e-9)
}

func TestRearmAll(t *testing.T) {
	g, err := NewGrid(100, 3, 0.02, domain.SpacingGeometric, domain.SideShort)
	require.NoError(t, err)

	g.Fill(0)
	g.Fill(2)
	g.RearmAll()
	for _, lvl := range g.Levels() {
		assert.Equal(t, LevelArmed, lvl.State)
	}
}

func TestRebase(t *testing.T) {
	g, err := NewGrid(100, 3, 0.02, domain.SpacingGeometric, domain.SideShort)
	require.NoError(t, err)

	require.NoError(t, g.Rebase(80, 0.03))
	assert.InDelta(t, 80.0, g.Base(), 1e-9)
	assert.InDelta(t, 80*0.97, g.Levels()[0].Price, 1e-9)

	// Rebase inválido no destruye la grilla anterior.
	assert.Error(t, g.Rebase(-1, 0.03))
	assert.InDelta(t, 80.0, g.Base(), 1e-9)
}

func TestOutOfRange(t *testing.T) {
	g, err := NewGrid(100, 3, 0.02, domain.SpacingGeometric, domain.SideShort)
	require.NoError(t, err)
	farthest := g.Levels()[2].Price // 94.12

	assert.False(t, g.OutOfRange(100))
	assert.False(t, g.OutOfRange(95))
	assert.True(t, g.OutOfRange(farthest*0.97), "a full step beyond the grid")
	assert.True(t, g.OutOfRange(103), "a full step above the base")
}

func TestScaledRatio_ClampedScaling(t *testing.T) {
	w := newTrueRangeWindow(3)
	assert.InDelta(t, 0.02, w.ScaledRatio(0.02), 1e-9, "not ready yet")

	// Volatilidad al doble de la referencia → ratio ×2.
	for _, c := range []float64{100, 100, 100} {
		w.Observe(c*1.02, c*0.98, c)
	}
	require.True(t, w.Ready())
	assert.InDelta(t, 0.04, w.ScaledRatio(0.02), 0.002)

	// Volatilidad minúscula → clamp en 0.5×.
	w2 := newTrueRangeWindow(3)
	for i := 0; i < 3; i++ {
		w2.Observe(100.01, 99.99, 100)
	}
	assert.InDelta(t, 0.01, w2.ScaledRatio(0.02), 1e-9)
}

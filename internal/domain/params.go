package domain

import "fmt"

// GridSpacing define cómo se separan los niveles de grilla.
type GridSpacing string

const (
	SpacingGeometric  GridSpacing = "geometric"
	SpacingArithmetic GridSpacing = "arithmetic"
)

// ParameterSet es el value object con todos los parámetros de un run.
// Uno por trial del optimizer; inmutable después de construirse y validado
// una sola vez con Validate.
type ParameterSet struct {
	Symbol         string
	InitialCapital float64

	GridSize        int
	GridRatio       float64
	Spacing         GridSpacing
	Side            Side
	AdaptiveSpacing bool
	VolLookback     int

	Leverage        float64
	MaxPositionSize float64 // fracción de equity comprometida como margen por entrada

	MakerFee float64
	TakerFee float64
	Slippage float64

	MaxPortfolioDrawdown   float64
	MaintenanceMargin      float64
	MinLiquidationDistance float64
}

// Validate falla rápido con ErrInvalidParameterSet si la combinación no
// tiene sentido. Se llama una vez en el setup del run/trial.
func (p ParameterSet) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("domain.ParameterSet: "+format+": %w", append(args, ErrInvalidParameterSet)...)
	}

	if p.InitialCapital <= 0 {
		return fail("initial capital %.2f must be > 0", p.InitialCapital)
	}
	if p.GridSize < 1 {
		return fail("grid size %d must be >= 1", p.GridSize)
	}
	if p.GridRatio <= 0 || p.GridRatio >= 1 {
		return fail("grid ratio %.4f must be in (0, 1)", p.GridRatio)
	}
	if p.Spacing != SpacingGeometric && p.Spacing != SpacingArithmetic {
		return fail("unknown spacing %q", p.Spacing)
	}
	if p.Side != SideShort && p.Side != SideLong {
		return fail("unknown side %q", p.Side)
	}
	if p.Leverage < 1 {
		return fail("leverage %.2f must be >= 1", p.Leverage)
	}
	if p.MaxPositionSize <= 0 || p.MaxPositionSize > 1 {
		return fail("max position size %.2f must be in (0, 1]", p.MaxPositionSize)
	}
	if p.MakerFee < 0 || p.TakerFee < 0 {
		return fail("fees must be >= 0")
	}
	if p.Slippage < 0 || p.Slippage >= 1 {
		return fail("slippage %.4f must be in [0, 1)", p.Slippage)
	}
	if p.MaintenanceMargin <= 0 || p.MaintenanceMargin >= 1 {
		return fail("maintenance margin %.4f must be in (0, 1)", p.MaintenanceMargin)
	}
	if p.MaxPortfolioDrawdown <= 0 || p.MaxPortfolioDrawdown > 1 {
		return fail("max portfolio drawdown %.4f must be in (0, 1]", p.MaxPortfolioDrawdown)
	}
	if p.MinLiquidationDistance < 0 || p.MinLiquidationDistance >= 1 {
		return fail("min liquidation distance %.4f must be in [0, 1)", p.MinLiquidationDistance)
	}
	if p.AdaptiveSpacing && p.VolLookback < 2 {
		return fail("volatility lookback %d must be >= 2 when adaptive spacing is on", p.VolLookback)
	}
	return nil
}

// Key devuelve una clave canónica de la parte explorable del ParameterSet.
// El optimizer la usa para deduplicar trials y como tie-break determinista
// del ranking.
func (p ParameterSet) Key() string {
	return fmt.Sprintf("gs=%d|gr=%.6f|lev=%.4f|pos=%.4f",
		p.GridSize, p.GridRatio, p.Leverage, p.MaxPositionSize)
}

package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

var ts = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func newSim(capital float64, cfg Config) *Simulator {
	if cfg.MaintenanceMargin == 0 {
		cfg.MaintenanceMargin = 0.05
	}
	return New(capital, cfg)
}

func TestOpenClose_RoundTripCostsOnlyFees(t *testing.T) {
	// Abrir y cerrar al mismo precio sin movimiento: pnl = −fees.
	sim := newSim(10000, Config{MakerFee: 0.0005, TakerFee: 0.001})

	pos, err := sim.OpenPosition(domain.SideShort, 100, 10, 2, ts)
	require.NoError(t, err)

	trade, err := sim.ClosePosition(100, ts.Add(time.Hour))
	require.NoError(t, err)

	wantFees := pos.EntryFee + 10*100*0.001
	assert.InDelta(t, -wantFees, trade.PnL, 1e-9)
	assert.InDelta(t, wantFees, trade.Fees, 1e-9)
	assert.InDelta(t, 10000-wantFees, sim.Equity(), 1e-9)
	assert.False(t, sim.HasPosition())
}

func TestOpenPosition_InsufficientMargin(t *testing.T) {
	sim := newSim(100, Config{MinLiquidationDistance: 0})

	// nominal 10×100=1000 a 2x → margen 500 > 100 de cash
	_, err := sim.OpenPosition(domain.SideShort, 100, 10, 2, ts)
	assert.ErrorIs(t, err, domain.ErrInsufficientMargin)
	assert.False(t, sim.HasPosition())
	assert.InDelta(t, 100.0, sim.AvailableMargin(), 1e-9)
}

func TestOpenPosition_UnsafeLiquidationDistance(t *testing.T) {
	// lev=50, mm=0.05 → distancia 0.95/50 = 1.9% < 5% requerido
	sim := newSim(100000, Config{MinLiquidationDistance: 0.05})

	_, err := sim.OpenPosition(domain.SideShort, 100, 10, 50, ts)
	assert.ErrorIs(t, err, domain.ErrUnsafeLiquidationDistance)
	assert.False(t, sim.HasPosition())
}

func TestOpenPosition_RejectsSecondPosition(t *testing.T) {
	sim := newSim(10000, Config{})

	_, err := sim.OpenPosition(domain.SideShort, 100, 5, 2, ts)
	require.NoError(t, err)

	_, err = sim.OpenPosition(domain.SideShort, 100, 5, 2, ts)
	assert.ErrorIs(t, err, domain.ErrPositionOpen)
}

func TestCheckLiquidation_FillsAtLiquidationPriceNotTick(t *testing.T) {
	// Spike de 10% contra un SHORT a 20x: exactamente una liquidación y el
	// fill es el precio de liquidación calculado, no el precio del tick.
	sim := newSim(10000, Config{TakerFee: 0.001, MaintenanceMargin: 0.05})

	pos, err := sim.OpenPosition(domain.SideShort, 100, 10, 20, ts)
	require.NoError(t, err)
	wantLiq := 100 * (1 + 0.95/20) // 104.75

	assert.InDelta(t, wantLiq, pos.LiquidationPrice, 1e-9)

	trade, liquidated := sim.CheckLiquidation(110, ts.Add(time.Hour))
	require.True(t, liquidated)
	assert.Equal(t, domain.CloseLiquidation, trade.Reason)
	assert.InDelta(t, wantLiq, trade.ExitPrice, 1e-9)
	assert.Equal(t, 1, sim.Liquidations())

	// Segunda pasada: ya no hay posición que liquidar.
	_, again := sim.CheckLiquidation(120, ts.Add(2*time.Hour))
	assert.False(t, again)
	assert.Equal(t, 1, sim.Liquidations())
}

func TestCheckLiquidation_InclusiveBoundary(t *testing.T) {
	sim := newSim(10000, Config{MaintenanceMargin: 0.05})

	pos, err := sim.OpenPosition(domain.SideShort, 100, 10, 10, ts)
	require.NoError(t, err)

	_, liquidated := sim.CheckLiquidation(pos.LiquidationPrice, ts)
	assert.True(t, liquidated, "tick exactly at liquidation price must liquidate")
}

func TestCheckLiquidation_EquityNeverNegative(t *testing.T) {
	// Incluso con leverage alto y fees, la cuenta no puede quedar en negativo
	// tras una liquidación forzada.
	sim := New(1000, Config{TakerFee: 0.002, MaintenanceMargin: 0.01})

	_, err := sim.OpenPosition(domain.SideShort, 100, 9, 1, ts)
	require.NoError(t, err)

	_, liquidated := sim.CheckLiquidation(1000, ts)
	require.True(t, liquidated)

	sim.MarkToMarket(1000)
	assert.GreaterOrEqual(t, sim.Equity(), 0.0)
	assert.GreaterOrEqual(t, sim.AvailableMargin(), 0.0)
}

func TestMarkToMarket_TracksEquityAndHWM(t *testing.T) {
	sim := newSim(10000, Config{})

	_, err := sim.OpenPosition(domain.SideShort, 100, 10, 2, ts)
	require.NoError(t, err)

	// El precio baja 5: SHORT gana 50
	sim.MarkToMarket(95)
	assert.InDelta(t, 10050, sim.Equity(), 1e-9)

	// Rebota: la equity baja pero el HWM se mantiene
	sim.MarkToMarket(100)
	acct := sim.Account()
	assert.InDelta(t, 10050, acct.HighWaterMark, 1e-9)
	assert.Greater(t, acct.Drawdown(), 0.0)
}

func TestClosePosition_NoPosition(t *testing.T) {
	sim := newSim(10000, Config{})
	_, err := sim.ClosePosition(100, ts)
	assert.ErrorIs(t, err, domain.ErrNoPosition)
}

func TestSlippage_WorsensBothLegs(t *testing.T) {
	noSlip := newSim(10000, Config{})
	withSlip := newSim(10000, Config{Slippage: 0.01})

	_, err := noSlip.OpenPosition(domain.SideShort, 100, 10, 2, ts)
	require.NoError(t, err)
	_, err = withSlip.OpenPosition(domain.SideShort, 100, 10, 2, ts)
	require.NoError(t, err)

	a, err := noSlip.ClosePosition(100, ts)
	require.NoError(t, err)
	b, err := withSlip.ClosePosition(100, ts)
	require.NoError(t, err)

	assert.Greater(t, a.PnL, b.PnL, "slippage must cost money on a flat round trip")
}

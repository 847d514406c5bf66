package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/gridbot/internal/adapters/storage"
	"github.com/alejandrodnm/gridbot/internal/domain"
)

func makeTrial(leverage, returnPct float64, liquidations int) domain.TrialResult {
	return domain.TrialResult{
		Params: domain.ParameterSet{
			Symbol:                 "SOL-USD",
			InitialCapital:         10000,
			GridSize:               3,
			GridRatio:              0.02,
			Spacing:                domain.SpacingGeometric,
			Side:                   domain.SideShort,
			Leverage:               leverage,
			MaxPositionSize:        0.15,
			MakerFee:               0.0005,
			TakerFee:               0.001,
			MaxPortfolioDrawdown:   0.30,
			MaintenanceMargin:      0.05,
			MinLiquidationDistance: 0.02,
		},
		Report: domain.PerformanceReport{
			FinalEquity:      10000 * (1 + returnPct/100),
			TotalReturnPct:   returnPct,
			TradeCount:       12,
			WinRate:          0.75,
			MaxDrawdownPct:   4.2,
			LiquidationCount: liquidations,
			TotalFees:        31.5,
		},
	}
}

func TestSQLiteStorage_SaveAndTopTrials(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	results := []domain.TrialResult{
		makeTrial(2, 18.0, 0),
		makeTrial(5, 9.5, 0),
		makeTrial(20, -40.0, 1),
	}

	ctx := context.Background()
	sweepID, err := db.SaveSweep(ctx, "SOL-USD", results)
	require.NoError(t, err)
	require.NotEmpty(t, sweepID)

	top, err := db.TopTrials(ctx, sweepID, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)

	// El ranking de entrada se preserva
	assert.InDelta(t, 18.0, top[0].Report.TotalReturnPct, 0.001)
	assert.InDelta(t, 9.5, top[1].Report.TotalReturnPct, 0.001)

	// El ParameterSet sobrevive el round-trip completo
	assert.Equal(t, results[0].Params, top[0].Params)
	assert.Equal(t, domain.SpacingGeometric, top[0].Params.Spacing)
	assert.Equal(t, domain.SideShort, top[0].Params.Side)
}

func TestSQLiteStorage_FailedTrialPersisted(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	failed := makeTrial(0, 0, 0)
	failed.Report = domain.PerformanceReport{}
	failed.Err = "invalid parameter set: leverage must be positive"

	ctx := context.Background()
	sweepID, err := db.SaveSweep(ctx, "SOL-USD", []domain.TrialResult{failed})
	require.NoError(t, err)

	top, err := db.TopTrials(ctx, sweepID, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.True(t, top[0].Failed())
	assert.Contains(t, top[0].Err, "leverage")
}

func TestSQLiteStorage_UnknownSweep(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	top, err := db.TopTrials(context.Background(), "no-such-sweep", 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestSQLiteStorage_MultipleSweepsIsolated(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	idA, err := db.SaveSweep(ctx, "SOL-USD", []domain.TrialResult{makeTrial(2, 10, 0)})
	require.NoError(t, err)
	idB, err := db.SaveSweep(ctx, "ETH-USD", []domain.TrialResult{makeTrial(3, 5, 0), makeTrial(4, 2, 0)})
	require.NoError(t, err)
	require.NotEqual(t, idA, idB)

	topA, err := db.TopTrials(ctx, idA, 10)
	require.NoError(t, err)
	assert.Len(t, topA, 1)

	topB, err := db.TopTrials(ctx, idB, 10)
	require.NoError(t, err)
	assert.Len(t, topB, 2)
}

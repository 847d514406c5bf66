package paper

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/gridbot/internal/adapters/dataload"
	"github.com/alejandrodnm/gridbot/internal/adapters/notify"
	"github.com/alejandrodnm/gridbot/internal/backtest"
	"github.com/alejandrodnm/gridbot/internal/domain"
)

func sessionParams() domain.ParameterSet {
	return domain.ParameterSet{
		Symbol:                 "SOL-USD",
		InitialCapital:         10000,
		GridSize:               3,
		GridRatio:              0.02,
		Spacing:                domain.SpacingGeometric,
		Side:                   domain.SideShort,
		Leverage:               1,
		MaxPositionSize:        0.15,
		MakerFee:               0.0005,
		TakerFee:               0.001,
		MaxPortfolioDrawdown:   0.30,
		MaintenanceMargin:      0.05,
		MinLiquidationDistance: 0.10,
	}
}

func decliningSeries(n int) domain.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(domain.PriceSeries, n)
	p := 100.0
	for i := range s {
		s[i] = domain.PriceTick{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Open:      p, High: p, Low: p, Close: p,
			Volume: 1000,
		}
		p *= 0.95
	}
	return s
}

func TestEngine_MatchesBacktestOnSameSeries(t *testing.T) {
	series := decliningSeries(12)
	params := sessionParams()

	var buf bytes.Buffer
	eng, err := NewEngine(Config{}, params, dataload.NewSeriesSource(series), notify.NewConsoleWriter(&buf))
	require.NoError(t, err)

	paperReport, err := eng.Run(context.Background())
	require.NoError(t, err)

	btReport, err := backtest.New().Run(series, params)
	require.NoError(t, err)

	// Misma grilla, mismo simulador, misma serie: mismo resultado.
	assert.Equal(t, btReport, paperReport)
	assert.Greater(t, paperReport.TradeCount, 0)
}

func TestEngine_PrintsStatusPeriodically(t *testing.T) {
	var buf bytes.Buffer
	eng, err := NewEngine(
		Config{StatusEvery: 5},
		sessionParams(),
		dataload.NewSeriesSource(decliningSeries(12)),
		notify.NewConsoleWriter(&buf),
	)
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[PAPER "+eng.SessionID()[:8]+"]")
	assert.Contains(t, out, "BACKTEST SOL-USD", "final report printed on close")
}

func TestEngine_EmptySource(t *testing.T) {
	var buf bytes.Buffer
	eng, err := NewEngine(Config{}, sessionParams(),
		dataload.NewSeriesSource(nil), notify.NewConsoleWriter(&buf))
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptySeries)
}

func TestEngine_InvalidParams(t *testing.T) {
	bad := sessionParams()
	bad.GridSize = 0

	var buf bytes.Buffer
	_, err := NewEngine(Config{}, bad,
		dataload.NewSeriesSource(decliningSeries(3)), notify.NewConsoleWriter(&buf))
	assert.ErrorIs(t, err, domain.ErrInvalidParameterSet)
}

func TestEngine_CancelledContextClosesCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	eng, err := NewEngine(Config{}, sessionParams(),
		dataload.NewSeriesSource(decliningSeries(12)), notify.NewConsoleWriter(&buf))
	require.NoError(t, err)

	// Cancelado antes del primer tick: no hay sesión que reportar.
	_, err = eng.Run(ctx)
	assert.Error(t, err)
}

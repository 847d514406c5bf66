package notify_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/gridbot/internal/adapters/notify"
	"github.com/alejandrodnm/gridbot/internal/domain"
)

func makeSeries(closes ...float64) domain.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(domain.PriceSeries, len(closes))
	for i, c := range closes {
		s[i] = domain.PriceTick{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Open:      c, High: c, Low: c, Close: c,
			Volume: 1000,
		}
	}
	return s
}

func makeParams() domain.ParameterSet {
	return domain.ParameterSet{
		Symbol:               "SOL-USD",
		InitialCapital:       10000,
		GridSize:             3,
		GridRatio:            0.02,
		Spacing:              domain.SpacingGeometric,
		Side:                 domain.SideShort,
		Leverage:             2,
		MaxPositionSize:      0.15,
		MaxPortfolioDrawdown: 0.30,
	}
}

func TestConsole_PrintReport(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	report := domain.PerformanceReport{
		FinalEquity:    11234.56,
		TotalReturnPct: 12.35,
		TradeCount:     18,
		WinRate:        0.83,
		MaxDrawdownPct: 5.1,
		TotalFees:      42.0,
		EquityCurve:    []float64{10000, 10100, 10250, 11234.56},
	}

	n.PrintReport(report, makeParams(), makeSeries(100, 98, 95, 92))

	out := buf.String()
	assert.Contains(t, out, "SOL-USD")
	assert.Contains(t, out, "$11234.56")
	assert.Contains(t, out, "+12.35%")
	assert.Contains(t, out, "buy-and-hold")
	assert.Contains(t, out, "sell-and-hold")
	assert.Contains(t, out, "VEREDICTO")
	assert.NotContains(t, out, "halted")
}

func TestConsole_PrintReport_LiquidatedVerdict(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	report := domain.PerformanceReport{
		FinalEquity:      4000,
		TotalReturnPct:   -60,
		LiquidationCount: 2,
		EquityCurve:      []float64{10000, 4000},
	}

	n.PrintReport(report, makeParams(), makeSeries(100, 130))
	assert.Contains(t, buf.String(), "LIQUIDADO")
}

func TestConsole_PrintSweep(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	p := makeParams()
	results := []domain.TrialResult{
		{Params: p, Report: domain.PerformanceReport{TotalReturnPct: 15, TradeCount: 10, WinRate: 0.9}},
		{Params: p, Report: domain.PerformanceReport{TotalReturnPct: -30, LiquidationCount: 1}},
		{Params: p, Err: "invalid parameter set: leverage must be positive"},
	}

	n.PrintSweep(results, 2)

	out := buf.String()
	assert.Contains(t, out, "3 trials, top 2")
	assert.Contains(t, out, "+15.00%")
	assert.Contains(t, out, "Survival zone: 1/3")
	assert.Contains(t, out, "1 failed")
	// El tercero quedó fuera del top
	assert.NotContains(t, out, "leverage must be positive")
}

func TestConsole_PrintSweep_Empty(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	n.PrintSweep(nil, 10)
	assert.Contains(t, buf.String(), "No trials")
}

func TestConsole_PrintTrades(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	opened := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := []domain.Trade{
		{
			Side: domain.SideShort, EntryPrice: 100, ExitPrice: 98,
			Size: 15, Leverage: 2, PnL: 29.7, PnLPct: 3.96, Fees: 0.3,
			Reason:   domain.CloseTakeProfit,
			OpenedAt: opened, ClosedAt: opened.Add(48 * time.Hour),
		},
	}

	n.PrintTrades(trades)

	out := buf.String()
	assert.Contains(t, out, "SHORT")
	assert.Contains(t, out, "take_profit")
	assert.Contains(t, out, "+29.70")
}

func TestConsole_PrintPaperStatus(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	tick := domain.PriceTick{
		Timestamp: time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC),
		Close:     101.5,
	}
	n.PrintPaperStatus("0d5a7c9e-1111-2222-3333-444455556666", tick, 10123.45, 4, 0)

	out := buf.String()
	assert.Contains(t, out, "[PAPER 0d5a7c9e]")
	assert.Contains(t, out, "101.5")
	assert.Contains(t, out, "$10123.45")
}

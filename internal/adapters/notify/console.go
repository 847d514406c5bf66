package notify

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintReport imprime el report de un backtest con los benchmarks pasivos
// como referencia: si la grilla no le gana a buy-and-hold ni a sell-and-hold,
// toda la complejidad sobra.
func (c *Console) PrintReport(report domain.PerformanceReport, params domain.ParameterSet, series domain.PriceSeries) {
	from := series[0].Timestamp
	to := series[len(series)-1].Timestamp
	fmt.Fprintf(c.out, "\n=== BACKTEST %s — %s to %s (%d ticks) ===\n",
		params.Symbol, from.Format("2006-01-02"), to.Format("2006-01-02"), len(series))
	fmt.Fprintf(c.out, "  grid: %d levels × %.2f%% %s, side %s, leverage %.1fx\n",
		params.GridSize, params.GridRatio*100, params.Spacing, params.Side, params.Leverage)

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value")
	table.Append("Final equity", fmt.Sprintf("$%.2f", report.FinalEquity))
	table.Append("Total return", fmt.Sprintf("%+.2f%%", report.TotalReturnPct))
	table.Append("Trades", fmt.Sprintf("%d", report.TradeCount))
	table.Append("Win rate", fmt.Sprintf("%.1f%%", report.WinRate*100))
	table.Append("Max drawdown", fmt.Sprintf("%.2f%%", report.MaxDrawdownPct))
	table.Append("Sharpe", fmt.Sprintf("%.2f", domain.SharpeRatio(report.EquityCurve)))
	table.Append("Liquidations", fmt.Sprintf("%d", report.LiquidationCount))
	table.Append("Total fees", fmt.Sprintf("$%.2f", report.TotalFees))
	table.Render()

	if report.Halted {
		fmt.Fprintf(c.out, "  !! run halted by drawdown limit (%.0f%%)\n",
			params.MaxPortfolioDrawdown*100)
	}

	bah := domain.BuyAndHoldReturnPct(series)
	sah := domain.SellAndHoldReturnPct(series, params.Leverage)
	fmt.Fprintf(c.out, "\n  Benchmarks: buy-and-hold %+.2f%% | sell-and-hold (%.1fx) %+.2f%%\n",
		bah, params.Leverage, sah)

	switch {
	case report.LiquidationCount > 0:
		fmt.Fprintf(c.out, "  VEREDICTO: LIQUIDADO — bajar leverage o ampliar el grid ratio\n\n")
	case report.TotalReturnPct > bah && report.TotalReturnPct > sah:
		fmt.Fprintf(c.out, "  VEREDICTO: la grilla le gana a ambos benchmarks pasivos\n\n")
	case report.TotalReturnPct > 0:
		fmt.Fprintf(c.out, "  VEREDICTO: rentable pero un benchmark pasivo lo supera\n\n")
	default:
		fmt.Fprintf(c.out, "  VEREDICTO: NO RENTABLE con esta configuración\n\n")
	}
}

// PrintSweep imprime los mejores trials del sweep y el resumen de la zona
// de supervivencia.
func (c *Console) PrintSweep(results []domain.TrialResult, topN int) {
	if len(results) == 0 {
		fmt.Fprintln(c.out, "\n  No trials to report.")
		return
	}

	top := results
	if len(top) > topN {
		top = results[:topN]
	}

	fmt.Fprintf(c.out, "\n=== SWEEP — %d trials, top %d ===\n", len(results), len(top))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Grid", "Ratio", "Lev", "Pos", "Return", "MaxDD", "Trades", "Win", "Liq", "Status")

	for i, t := range top {
		status := "ok"
		if t.Failed() {
			status = "failed: " + truncate(t.Err, 30)
		} else if t.Report.Halted {
			status = "halted"
		}

		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", t.Params.GridSize),
			fmt.Sprintf("%.2f%%", t.Params.GridRatio*100),
			fmt.Sprintf("%.0fx", t.Params.Leverage),
			fmt.Sprintf("%.0f%%", t.Params.MaxPositionSize*100),
			fmt.Sprintf("%+.2f%%", t.Report.TotalReturnPct),
			fmt.Sprintf("%.1f%%", t.Report.MaxDrawdownPct),
			fmt.Sprintf("%d", t.Report.TradeCount),
			fmt.Sprintf("%.0f%%", t.Report.WinRate*100),
			fmt.Sprintf("%d", t.Report.LiquidationCount),
			status,
		)
	}
	table.Render()

	survivors, failed := 0, 0
	for _, t := range results {
		switch {
		case t.Failed():
			failed++
		case t.Report.LiquidationCount == 0:
			survivors++
		}
	}
	fmt.Fprintf(c.out, "  Survival zone: %d/%d configs ended without liquidation (%.0f%%), %d failed\n\n",
		survivors, len(results), 100*float64(survivors)/float64(len(results)), failed)
}

// PrintTrades imprime el trade log completo.
func (c *Console) PrintTrades(trades []domain.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "\n  No trades executed.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Side", "Entry", "Exit", "Size", "PnL", "PnL%", "Fees", "Reason", "Held")

	for i, tr := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			string(tr.Side),
			fmt.Sprintf("%.4f", tr.EntryPrice),
			fmt.Sprintf("%.4f", tr.ExitPrice),
			fmt.Sprintf("%.4f", tr.Size),
			fmt.Sprintf("%+.2f", tr.PnL),
			fmt.Sprintf("%+.2f%%", tr.PnLPct),
			fmt.Sprintf("%.2f", tr.Fees),
			string(tr.Reason),
			tr.ClosedAt.Sub(tr.OpenedAt).Round(time.Minute).String(),
		)
	}
	table.Render()
}

// PrintPaperStatus imprime una línea compacta de estado de la sesión paper.
func (c *Console) PrintPaperStatus(sessionID string, tick domain.PriceTick, equity float64, trades, liquidations int) {
	fmt.Fprintf(c.out, "[%s][PAPER %s] price %.4f | equity $%.2f | trades %d | liq %d\n",
		tick.Timestamp.Format("15:04:05"), shortID(sessionID), tick.Close,
		equity, trades, liquidations)
}

// --- helpers ---

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

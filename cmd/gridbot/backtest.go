package main

import (
	"log/slog"
	"os"

	"github.com/alejandrodnm/gridbot/config"
	"github.com/alejandrodnm/gridbot/internal/backtest"
	"github.com/alejandrodnm/gridbot/internal/domain"
	"github.com/alejandrodnm/gridbot/internal/ports"
)

func runBacktest(cfg *config.Config, series domain.PriceSeries, notifier ports.Notifier, showTrades bool) {
	params := cfg.ParameterSet()

	slog.Info("=== BACKTEST MODE ===",
		"symbol", params.Symbol,
		"ticks", len(series),
		"grid_size", params.GridSize,
		"leverage", params.Leverage,
	)

	report, err := backtest.New().Run(series, params)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	notifier.PrintReport(report, params, series)
	if showTrades {
		notifier.PrintTrades(report.TradeLog)
	}

	slog.Info("backtest complete",
		"trades", report.TradeCount,
		"return_pct", report.TotalReturnPct,
		"liquidations", report.LiquidationCount,
	)
}

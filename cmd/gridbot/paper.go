package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/gridbot/config"
	"github.com/alejandrodnm/gridbot/internal/adapters/dataload"
	"github.com/alejandrodnm/gridbot/internal/adapters/notify"
	"github.com/alejandrodnm/gridbot/internal/domain"
	"github.com/alejandrodnm/gridbot/internal/paper"
)

func runPaper(ctx context.Context, cfg *config.Config, series domain.PriceSeries, notifier *notify.Console) {
	eng, err := paper.NewEngine(paper.Config{
		TickInterval: cfg.TickInterval(),
		StatusEvery:  cfg.Paper.StatusEvery,
	}, cfg.ParameterSet(), dataload.NewSeriesSource(series), notifier)
	if err != nil {
		slog.Error("failed to start paper session", "err", err)
		os.Exit(1)
	}

	slog.Info("=== PAPER TRADING MODE ===",
		"session", eng.SessionID(),
		"ticks", len(series),
		"tick_interval", cfg.TickInterval(),
	)
	slog.Info("paper session running — press Ctrl+C to close early")

	report, err := eng.Run(ctx)
	if err != nil {
		slog.Error("paper session failed", "err", err)
		os.Exit(1)
	}

	slog.Info("paper session complete",
		"trades", report.TradeCount,
		"return_pct", report.TotalReturnPct,
	)
}

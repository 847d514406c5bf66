package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/gridbot/config"
	"github.com/alejandrodnm/gridbot/internal/adapters/storage"
	"github.com/alejandrodnm/gridbot/internal/backtest"
	"github.com/alejandrodnm/gridbot/internal/domain"
	"github.com/alejandrodnm/gridbot/internal/optimizer"
	"github.com/alejandrodnm/gridbot/internal/ports"
)

func runOptimize(ctx context.Context, cfg *config.Config, series domain.PriceSeries, notifier ports.Notifier) {
	base := cfg.ParameterSet()
	space := buildSpace(cfg.Optimization, base)

	slog.Info("=== OPTIMIZE MODE ===",
		"symbol", base.Symbol,
		"ticks", len(series),
		"objective", cfg.Optimization.Objective,
		"max_trials", cfg.Optimization.MaxTrials,
	)

	opt := optimizer.New(optimizer.Config{
		MaxTrials: cfg.Optimization.MaxTrials,
		Seed:      cfg.Optimization.Seed,
		Workers:   cfg.Optimization.Workers,
		Objective: domain.ObjectiveByName(cfg.Optimization.Objective),
	}, backtest.New())

	results := opt.Search(ctx, space, base, series)
	if len(results) == 0 {
		slog.Warn("sweep produced no results")
		return
	}

	notifier.PrintSweep(results, cfg.Optimization.TopN)

	sqlStore, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	persistSweep(ctx, sqlStore, base.Symbol, results)
}

func persistSweep(ctx context.Context, store ports.SweepStorage, symbol string, results []domain.TrialResult) {
	defer store.Close()

	sweepID, err := store.SaveSweep(ctx, symbol, results)
	if err != nil {
		slog.Error("failed to persist sweep", "err", err)
		os.Exit(1)
	}

	stats := optimizer.Survivors(results)
	slog.Info("sweep persisted",
		"sweep_id", sweepID,
		"trials", stats.Total,
		"survivors", stats.Survivors,
	)
}

// buildSpace arma el espacio de búsqueda; un eje sin valores configurados
// queda fijado al valor del ParameterSet base.
func buildSpace(opt config.OptimizationConfig, base domain.ParameterSet) optimizer.Space {
	space := optimizer.Space{
		GridSizes:        opt.GridSizes,
		GridRatios:       opt.GridRatios,
		Leverages:        opt.Leverages,
		MaxPositionSizes: opt.MaxPositionSizes,
	}
	if len(space.GridSizes) == 0 {
		space.GridSizes = []int{base.GridSize}
	}
	if len(space.GridRatios) == 0 {
		space.GridRatios = []float64{base.GridRatio}
	}
	if len(space.Leverages) == 0 {
		space.Leverages = []float64{base.Leverage}
	}
	if len(space.MaxPositionSizes) == 0 {
		space.MaxPositionSizes = []float64{base.MaxPositionSize}
	}
	return space
}

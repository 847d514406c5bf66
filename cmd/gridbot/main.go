package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/gridbot/config"
	"github.com/alejandrodnm/gridbot/internal/adapters/dataload"
	"github.com/alejandrodnm/gridbot/internal/adapters/notify"
	"github.com/alejandrodnm/gridbot/internal/domain"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	csvPath := flag.String("csv", "", "path to OHLCV CSV (synthetic series when empty)")
	optimize := flag.Bool("optimize", false, "run a parameter sweep instead of a single backtest")
	paper := flag.Bool("paper", false, "run a paced paper trading session")
	showTrades := flag.Bool("trades", false, "print the full trade log after the backtest")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("gridbot starting",
		"config", *configPath,
		"symbol", cfg.Trading.Symbol,
		"csv", *csvPath,
		"optimize", *optimize,
		"paper", *paper,
	)

	series, err := loadSeries(cfg, *csvPath)
	if err != nil {
		slog.Error("failed to load price series", "err", err)
		os.Exit(1)
	}

	notifier := notify.NewConsole()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *paper:
		runPaper(ctx, cfg, series, notifier)
	case *optimize:
		runOptimize(ctx, cfg, series, notifier)
	default:
		runBacktest(cfg, series, notifier, *showTrades)
	}

	slog.Info("gridbot stopped cleanly")
}

// loadSeries carga el CSV dado, o genera una serie sintética con la
// configuración del modo paper cuando no hay archivo.
func loadSeries(cfg *config.Config, csvPath string) (domain.PriceSeries, error) {
	if csvPath != "" {
		return dataload.LoadCSV(csvPath)
	}

	n := cfg.Paper.SyntheticTicks
	start := time.Now().UTC().AddDate(0, 0, -n).Truncate(24 * time.Hour)
	series := dataload.GenerateSeries(n, start, dataload.SyntheticConfig{
		StartPrice: 100,
		Drift:      cfg.Paper.Drift,
		Volatility: cfg.Paper.Volatility,
		Seed:       cfg.Paper.Seed,
	})
	slog.Info("using synthetic price series", "ticks", n, "seed", cfg.Paper.Seed)
	return series, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

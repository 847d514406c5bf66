package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// Config es la configuración completa del bot.
type Config struct {
	Trading      TradingConfig      `yaml:"trading"`
	Grid         GridConfig         `yaml:"grid_strategy"`
	Risk         RiskConfig         `yaml:"risk_management"`
	Optimization OptimizationConfig `yaml:"optimization"`
	Paper        PaperConfig        `yaml:"paper"`
	Storage      StorageConfig      `yaml:"storage"`
	Log          LogConfig          `yaml:"log"`
}

// TradingConfig describe el mercado y los costes de ejecución.
type TradingConfig struct {
	Symbol         string  `yaml:"symbol"`
	InitialCapital float64 `yaml:"initial_capital"`
	MakerFee       float64 `yaml:"maker_fee"` // entradas (órdenes límite)
	TakerFee       float64 `yaml:"taker_fee"` // salidas (take profit y liquidaciones)
	Slippage       float64 `yaml:"slippage"`
}

// GridConfig controla la geometría de la grilla.
type GridConfig struct {
	GridSize        int     `yaml:"grid_size"`
	GridRatio       float64 `yaml:"grid_ratio"`
	Spacing         string  `yaml:"spacing"` // geometric | arithmetic
	Side            string  `yaml:"side"`    // SHORT | LONG
	AdaptiveSpacing bool    `yaml:"adaptive_spacing"`
	VolLookback     int     `yaml:"volatility_lookback"`
}

// RiskConfig controla apalancamiento y límites de riesgo.
type RiskConfig struct {
	Leverage               float64 `yaml:"leverage"`
	MaxPositionSize        float64 `yaml:"max_position_size"`
	MaxPortfolioDrawdown   float64 `yaml:"max_portfolio_drawdown"`
	MaintenanceMargin      float64 `yaml:"maintenance_margin"`
	MinLiquidationDistance float64 `yaml:"min_liquidation_distance"`
}

// OptimizationConfig define el espacio de búsqueda del sweep.
type OptimizationConfig struct {
	GridSizes        []int     `yaml:"grid_sizes"`
	GridRatios       []float64 `yaml:"grid_ratios"`
	Leverages        []float64 `yaml:"leverages"`
	MaxPositionSizes []float64 `yaml:"max_position_sizes"`
	MaxTrials        int       `yaml:"max_trials"` // 0 = sin límite
	Seed             int64     `yaml:"seed"`
	Workers          int       `yaml:"workers"`   // 0 = NumCPU
	Objective        string    `yaml:"objective"` // total_return | risk_adjusted | sharpe
	TopN             int       `yaml:"top_n"`
}

// PaperConfig controla las sesiones de paper trading.
type PaperConfig struct {
	TickIntervalMS int     `yaml:"tick_interval_ms"` // pacing entre ticks; 0 = sin pacing
	StatusEvery    int     `yaml:"status_every"`
	SyntheticTicks int     `yaml:"synthetic_ticks"` // ticks a generar si no hay CSV
	Drift          float64 `yaml:"drift"`
	Volatility     float64 `yaml:"volatility"`
	Seed           int64   `yaml:"seed"`
}

// StorageConfig controla dónde se persisten los sweeps.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ParameterSet convierte la configuración en el ParameterSet del motor.
func (c *Config) ParameterSet() domain.ParameterSet {
	return domain.ParameterSet{
		Symbol:                 c.Trading.Symbol,
		InitialCapital:         c.Trading.InitialCapital,
		GridSize:               c.Grid.GridSize,
		GridRatio:              c.Grid.GridRatio,
		Spacing:                domain.GridSpacing(c.Grid.Spacing),
		Side:                   domain.Side(c.Grid.Side),
		AdaptiveSpacing:        c.Grid.AdaptiveSpacing,
		VolLookback:            c.Grid.VolLookback,
		Leverage:               c.Risk.Leverage,
		MaxPositionSize:        c.Risk.MaxPositionSize,
		MakerFee:               c.Trading.MakerFee,
		TakerFee:               c.Trading.TakerFee,
		Slippage:               c.Trading.Slippage,
		MaxPortfolioDrawdown:   c.Risk.MaxPortfolioDrawdown,
		MaintenanceMargin:      c.Risk.MaintenanceMargin,
		MinLiquidationDistance: c.Risk.MinLiquidationDistance,
	}
}

// TickInterval devuelve el pacing del modo paper como time.Duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Paper.TickIntervalMS) * time.Millisecond
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("GRIDBOT_DB"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("GRIDBOT_SYMBOL"); v != "" {
		cfg.Trading.Symbol = v
	}
	if v := os.Getenv("GRIDBOT_LEVERAGE"); v != "" {
		if lev, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.Leverage = lev
		}
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Trading.Symbol == "" {
		cfg.Trading.Symbol = "SOL-USD"
	}
	if cfg.Trading.InitialCapital <= 0 {
		cfg.Trading.InitialCapital = 10000
	}
	if cfg.Grid.GridSize <= 0 {
		cfg.Grid.GridSize = 5
	}
	if cfg.Grid.GridRatio <= 0 {
		cfg.Grid.GridRatio = 0.02
	}
	if cfg.Grid.Spacing == "" {
		cfg.Grid.Spacing = string(domain.SpacingGeometric)
	}
	if cfg.Grid.Side == "" {
		cfg.Grid.Side = string(domain.SideShort)
	}
	if cfg.Grid.VolLookback <= 0 {
		cfg.Grid.VolLookback = 14
	}
	if cfg.Risk.Leverage <= 0 {
		cfg.Risk.Leverage = 1
	}
	if cfg.Risk.MaxPositionSize <= 0 {
		cfg.Risk.MaxPositionSize = 0.1
	}
	if cfg.Risk.MaxPortfolioDrawdown <= 0 {
		cfg.Risk.MaxPortfolioDrawdown = 0.3
	}
	if cfg.Risk.MaintenanceMargin <= 0 {
		cfg.Risk.MaintenanceMargin = 0.05
	}
	if cfg.Risk.MinLiquidationDistance <= 0 {
		cfg.Risk.MinLiquidationDistance = 0.02
	}
	if cfg.Optimization.Objective == "" {
		cfg.Optimization.Objective = "total_return"
	}
	if cfg.Optimization.TopN <= 0 {
		cfg.Optimization.TopN = 10
	}
	if cfg.Paper.StatusEvery <= 0 {
		cfg.Paper.StatusEvery = 10
	}
	if cfg.Paper.SyntheticTicks <= 0 {
		cfg.Paper.SyntheticTicks = 500
	}
	if cfg.Paper.Volatility <= 0 {
		cfg.Paper.Volatility = 0.02
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "gridbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

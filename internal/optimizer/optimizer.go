package optimizer

// optimizer.go — sweep de parámetros sobre un worker pool.
//
// Cada trial es una invocación independiente del BacktestRunner: sin estado
// mutable compartido, el único recurso común es la PriceSeries de solo
// lectura. La cancelación es cooperativa y entre trials, nunca a mitad de
// uno, para que el bookkeeping de resultados parciales sea trivial.

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/alejandrodnm/gridbot/internal/backtest"
	"github.com/alejandrodnm/gridbot/internal/domain"
)

// Config controla el presupuesto y el orden del sweep.
type Config struct {
	MaxTrials int              // presupuesto de trials; 0 = sin límite
	Seed      int64            // seed del sampling determinista
	Workers   int              // <= 0 usa runtime.NumCPU()
	Objective domain.Objective // nil usa domain.TotalReturn
}

// Optimizer genera combinaciones, corre los backtests y rankea los reports.
type Optimizer struct {
	cfg    Config
	runner *backtest.Runner
}

// New crea un Optimizer sobre el runner dado.
func New(cfg Config, runner *backtest.Runner) *Optimizer {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Objective == nil {
		cfg.Objective = domain.TotalReturn
	}
	return &Optimizer{cfg: cfg, runner: runner}
}

// Search explora el espacio y devuelve los trials ordenados descendente por
// objective. Un trial fallido (ParameterSet inválido) no desaparece: queda en
// el resultado con su marcador de error, al final del ranking. Si el contexto
// se cancela, devuelve los resultados parciales acumulados hasta ahí.
func (o *Optimizer) Search(ctx context.Context, space Space, base domain.ParameterSet, series domain.PriceSeries) []domain.TrialResult {
	combos := Sample(space.Combinations(base), o.cfg.MaxTrials, o.cfg.Seed)

	slog.Info("optimizer sweep starting",
		"trials", len(combos),
		"workers", o.cfg.Workers,
	)

	workCh := make(chan domain.ParameterSet, len(combos))
	resultCh := make(chan domain.TrialResult, len(combos))

	var wg sync.WaitGroup
	for w := 0; w < o.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range workCh {
				// Cancelación entre trials: no arrancar uno nuevo.
				if ctx.Err() != nil {
					return
				}
				resultCh <- o.runTrial(series, params)
			}
		}()
	}

	queued := 0
	for _, params := range combos {
		if ctx.Err() != nil {
			break
		}
		workCh <- params
		queued++
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]domain.TrialResult, 0, queued)
	for res := range resultCh {
		results = append(results, res)
	}

	o.rank(results)

	slog.Info("optimizer sweep complete",
		"completed", len(results),
		"queued", queued,
		"cancelled", ctx.Err() != nil,
	)
	return results
}

// runTrial corre un backtest aislado y absorbe el fallo como marcador.
func (o *Optimizer) runTrial(series domain.PriceSeries, params domain.ParameterSet) domain.TrialResult {
	report, err := o.runner.Run(series, params)
	if err != nil {
		slog.Debug("trial failed", "params", params.Key(), "err", err)
		return domain.TrialResult{Params: params, Err: err.Error()}
	}
	return domain.TrialResult{Params: params, Report: report}
}

// rank ordena descendente por objective, fallidos al final, con la clave del
// ParameterSet como tie-break determinista.
func (o *Optimizer) rank(results []domain.TrialResult) {
	score := func(t domain.TrialResult) float64 {
		if t.Failed() {
			return math.Inf(-1)
		}
		return o.cfg.Objective(t.Report)
	}
	sort.Slice(results, func(i, j int) bool {
		si, sj := score(results[i]), score(results[j])
		if si != sj {
			return si > sj
		}
		return results[i].Params.Key() < results[j].Params.Key()
	})
}

// SurvivorStats resume la "zona de supervivencia" del sweep: cuántas
// configuraciones terminaron sin liquidarse y cuál es la mejor de ellas.
type SurvivorStats struct {
	Total     int
	Survivors int
	Share     float64
	Best      *domain.TrialResult
}

// Survivors calcula las estadísticas de supervivencia sobre un resultado ya
// rankeado.
func Survivors(results []domain.TrialResult) SurvivorStats {
	stats := SurvivorStats{Total: len(results)}
	for i := range results {
		t := &results[i]
		if t.Failed() || t.Report.LiquidationCount > 0 {
			continue
		}
		stats.Survivors++
		if stats.Best == nil {
			stats.Best = t // el ranking ya viene ordenado por objective
		}
	}
	if stats.Total > 0 {
		stats.Share = float64(stats.Survivors) / float64(stats.Total)
	}
	return stats
}

package storage

// sqlite.go — persistencia de sweeps del optimizer.
//
// Estrategia:
//   - `sweeps`: UNA fila por sweep, con el resumen agregado (trials totales,
//     supervivientes sin liquidación, mejor retorno).
//   - `trials`: una fila por trial, con el ParameterSet completo y las
//     métricas del report. El rank guardado es el del ranking del optimizer,
//     así TopTrials no necesita reordenar en memoria.
//   - Prune automático al arrancar: sweeps de más de 90 días se borran con
//     sus trials (cascade manual, SQLite sin FK enforcement por defecto).

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

const schema = `
-- Resumen por sweep
CREATE TABLE IF NOT EXISTS sweeps (
    id          TEXT PRIMARY KEY,
    symbol      TEXT     NOT NULL,
    created_at  DATETIME NOT NULL,
    trials      INTEGER  NOT NULL DEFAULT 0,
    survivors   INTEGER  NOT NULL DEFAULT 0,
    best_return REAL     NOT NULL DEFAULT 0
);

-- Un trial por fila, en orden de ranking
CREATE TABLE IF NOT EXISTS trials (
    sweep_id          TEXT    NOT NULL,
    rank              INTEGER NOT NULL,
    params_key        TEXT    NOT NULL,
    symbol            TEXT    NOT NULL,
    initial_capital   REAL    NOT NULL,
    grid_size         INTEGER NOT NULL,
    grid_ratio        REAL    NOT NULL,
    spacing           TEXT    NOT NULL,
    side              TEXT    NOT NULL,
    adaptive_spacing  INTEGER NOT NULL DEFAULT 0,
    vol_lookback      INTEGER NOT NULL DEFAULT 0,
    leverage          REAL    NOT NULL,
    max_position_size REAL    NOT NULL,
    maker_fee         REAL    NOT NULL DEFAULT 0,
    taker_fee         REAL    NOT NULL DEFAULT 0,
    slippage          REAL    NOT NULL DEFAULT 0,
    max_drawdown      REAL    NOT NULL DEFAULT 0,
    maintenance_mgn   REAL    NOT NULL DEFAULT 0,
    min_liq_distance  REAL    NOT NULL DEFAULT 0,
    final_equity      REAL    NOT NULL DEFAULT 0,
    total_return_pct  REAL    NOT NULL DEFAULT 0,
    trade_count       INTEGER NOT NULL DEFAULT 0,
    win_rate          REAL    NOT NULL DEFAULT 0,
    max_drawdown_pct  REAL    NOT NULL DEFAULT 0,
    liquidations      INTEGER NOT NULL DEFAULT 0,
    total_fees        REAL    NOT NULL DEFAULT 0,
    halted            INTEGER NOT NULL DEFAULT 0,
    err               TEXT    NOT NULL DEFAULT '',
    PRIMARY KEY (sweep_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_sweeps_at     ON sweeps(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trials_return ON trials(sweep_id, total_return_pct DESC);
`

// sweeps más viejos que esto se podan al arrancar
const retentionSweeps = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.SweepStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y poda sweeps antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveSweep persiste el sweep completo en una transacción. Los results deben
// venir ya rankeados; el índice del slice es el rank guardado.
func (s *SQLiteStorage) SaveSweep(ctx context.Context, symbol string, results []domain.TrialResult) (string, error) {
	sweepID := uuid.NewString()
	now := time.Now().UTC()

	survivors, bestReturn := sweepSummary(results)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveSweep: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sweeps (id, symbol, created_at, trials, survivors, best_return) VALUES (?, ?, ?, ?, ?, ?)`,
		sweepID, symbol, now, len(results), survivors, bestReturn,
	); err != nil {
		return "", fmt.Errorf("storage.SaveSweep: insert sweep: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trials
			(sweep_id, rank, params_key, symbol, initial_capital,
			 grid_size, grid_ratio, spacing, side, adaptive_spacing, vol_lookback,
			 leverage, max_position_size, maker_fee, taker_fee, slippage,
			 max_drawdown, maintenance_mgn, min_liq_distance,
			 final_equity, total_return_pct, trade_count, win_rate,
			 max_drawdown_pct, liquidations, total_fees, halted, err)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("storage.SaveSweep: prepare: %w", err)
	}
	defer stmt.Close()

	for rank, t := range results {
		p := t.Params
		if _, err := stmt.ExecContext(ctx,
			sweepID, rank, p.Key(), p.Symbol, p.InitialCapital,
			p.GridSize, p.GridRatio, string(p.Spacing), string(p.Side),
			boolToInt(p.AdaptiveSpacing), p.VolLookback,
			p.Leverage, p.MaxPositionSize, p.MakerFee, p.TakerFee, p.Slippage,
			p.MaxPortfolioDrawdown, p.MaintenanceMargin, p.MinLiquidationDistance,
			t.Report.FinalEquity, t.Report.TotalReturnPct, t.Report.TradeCount,
			t.Report.WinRate, t.Report.MaxDrawdownPct, t.Report.LiquidationCount,
			t.Report.TotalFees, boolToInt(t.Report.Halted), t.Err,
		); err != nil {
			return "", fmt.Errorf("storage.SaveSweep: insert trial %s: %w", p.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveSweep: commit: %w", err)
	}
	return sweepID, nil
}

// TopTrials devuelve los n mejores trials del sweep, en orden de ranking.
func (s *SQLiteStorage) TopTrials(ctx context.Context, sweepID string, n int) ([]domain.TrialResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, initial_capital, grid_size, grid_ratio, spacing, side,
		       adaptive_spacing, vol_lookback, leverage, max_position_size,
		       maker_fee, taker_fee, slippage, max_drawdown, maintenance_mgn,
		       min_liq_distance, final_equity, total_return_pct, trade_count,
		       win_rate, max_drawdown_pct, liquidations, total_fees, halted, err
		FROM trials
		WHERE sweep_id = ?
		ORDER BY rank ASC
		LIMIT ?
	`, sweepID, n)
	if err != nil {
		return nil, fmt.Errorf("storage.TopTrials: query: %w", err)
	}
	defer rows.Close()

	var results []domain.TrialResult
	for rows.Next() {
		var t domain.TrialResult
		var spacing, side string
		var adaptive, halted int

		if err := rows.Scan(
			&t.Params.Symbol, &t.Params.InitialCapital,
			&t.Params.GridSize, &t.Params.GridRatio, &spacing, &side,
			&adaptive, &t.Params.VolLookback,
			&t.Params.Leverage, &t.Params.MaxPositionSize,
			&t.Params.MakerFee, &t.Params.TakerFee, &t.Params.Slippage,
			&t.Params.MaxPortfolioDrawdown, &t.Params.MaintenanceMargin,
			&t.Params.MinLiquidationDistance,
			&t.Report.FinalEquity, &t.Report.TotalReturnPct, &t.Report.TradeCount,
			&t.Report.WinRate, &t.Report.MaxDrawdownPct, &t.Report.LiquidationCount,
			&t.Report.TotalFees, &halted, &t.Err,
		); err != nil {
			return nil, fmt.Errorf("storage.TopTrials: scan row: %w", err)
		}

		t.Params.Spacing = domain.GridSpacing(spacing)
		t.Params.Side = domain.Side(side)
		t.Params.AdaptiveSpacing = adaptive == 1
		t.Report.Halted = halted == 1
		results = append(results, t)
	}

	return results, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina sweeps antiguos y sus trials para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionSweeps)
	s.db.ExecContext(ctx,
		`DELETE FROM trials WHERE sweep_id IN (SELECT id FROM sweeps WHERE created_at < ?)`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM sweeps WHERE created_at < ?`, cutoff)
}

// sweepSummary cuenta los trials sin liquidación y extrae el mejor retorno.
func sweepSummary(results []domain.TrialResult) (survivors int, best float64) {
	for _, t := range results {
		if t.Failed() || t.Report.LiquidationCount > 0 {
			continue
		}
		if survivors == 0 || t.Report.TotalReturnPct > best {
			best = t.Report.TotalReturnPct
		}
		survivors++
	}
	return
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

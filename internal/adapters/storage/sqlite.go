package storage

// sqlite.go: histórico de ejecuciones del backtest.
//
// Tablas:
//   - `runs`: una fila por ejecución, con el rango y las métricas del portfolio si se calculó.
//   - `stock_results`: una fila por (run, stock) con las métricas de la curva de equity.
//   - `signals` / `closes`: entradas LONG y cierres explícitos de cada stock.
//   - Prune automático al arrancar: runs de más de 90 días y todo lo que cuelga de ellos.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id                TEXT PRIMARY KEY,
    started_at        TEXT    NOT NULL,
    range_start       TEXT    NOT NULL DEFAULT '',
    range_end         TEXT    NOT NULL DEFAULT '',
    stocks            INTEGER NOT NULL DEFAULT 0,
    has_portfolio     INTEGER NOT NULL DEFAULT 0,
    pf_total_return   REAL    NOT NULL DEFAULT 0,
    pf_annualized     REAL    NOT NULL DEFAULT 0,
    pf_sharpe         REAL    NOT NULL DEFAULT 0,
    pf_max_drawdown   REAL    NOT NULL DEFAULT 0,
    pf_win_rate       REAL    NOT NULL DEFAULT 0,
    pf_avg_win        REAL    NOT NULL DEFAULT 0,
    pf_avg_loss       REAL    NOT NULL DEFAULT 0,
    pf_profit_factor  REAL    NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS stock_results (
    run_id         TEXT    NOT NULL,
    stock          TEXT    NOT NULL,
    strategy       TEXT    NOT NULL,
    position       INTEGER NOT NULL,
    bars           INTEGER NOT NULL DEFAULT 0,
    first_bar      TEXT    NOT NULL DEFAULT '',
    last_bar       TEXT    NOT NULL DEFAULT '',
    total_return   REAL    NOT NULL DEFAULT 0,
    annualized     REAL    NOT NULL DEFAULT 0,
    sharpe         REAL    NOT NULL DEFAULT 0,
    max_drawdown   REAL    NOT NULL DEFAULT 0,
    win_rate       REAL    NOT NULL DEFAULT 0,
    avg_win        REAL    NOT NULL DEFAULT 0,
    avg_loss       REAL    NOT NULL DEFAULT 0,
    profit_factor  REAL    NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, stock)
);

CREATE TABLE IF NOT EXISTS signals (
    id           TEXT PRIMARY KEY,
    run_id       TEXT NOT NULL,
    stock        TEXT NOT NULL,
    ts           TEXT NOT NULL,
    type         TEXT NOT NULL,
    price        REAL NOT NULL,
    stop_loss    REAL NOT NULL,
    take_profit  REAL NOT NULL,
    reason       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS closes (
    id           TEXT PRIMARY KEY,
    run_id       TEXT NOT NULL,
    stock        TEXT NOT NULL,
    ts           TEXT NOT NULL,
    price        REAL NOT NULL,
    entry_ts     TEXT NOT NULL,
    entry_price  REAL NOT NULL,
    reason       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started   ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_signals_run    ON signals(run_id, stock, ts);
CREATE INDEX IF NOT EXISTS idx_closes_run     ON closes(run_id, stock, ts);
`

const retentionRuns = 90 * 24 * time.Hour

// timeLayout es de ancho fijo en UTC para que el orden lexicográfico sea el cronológico.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
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

// SaveRun persiste una ejecución completa en una transacción. Si run.ID está vacío
// se genera un UUID; el ID usado se puede leer después con GetRuns.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	var pf domain.Metrics
	hasPF := 0
	if run.Portfolio != nil {
		pf = run.Portfolio.Metrics
		hasPF = 1
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, started_at, range_start, range_end, stocks, has_portfolio,
			 pf_total_return, pf_annualized, pf_sharpe, pf_max_drawdown,
			 pf_win_rate, pf_avg_win, pf_avg_loss, pf_profit_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), formatTime(run.Range.Start), formatTime(run.Range.End),
		len(run.Results), hasPF,
		pf.TotalReturnPct, pf.AnnualizedReturnPct, pf.SharpeRatio, pf.MaxDrawdownPct,
		pf.WinRatePct, pf.AvgWinPct, pf.AvgLossPct, pf.ProfitFactor,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	resStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stock_results
			(run_id, stock, strategy, position, bars, first_bar, last_bar,
			 total_return, annualized, sharpe, max_drawdown,
			 win_rate, avg_win, avg_loss, profit_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare results: %w", err)
	}
	defer resStmt.Close()

	sigStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO signals (id, run_id, stock, ts, type, price, stop_loss, take_profit, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare signals: %w", err)
	}
	defer sigStmt.Close()

	closeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO closes (id, run_id, stock, ts, price, entry_ts, entry_price, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare closes: %w", err)
	}
	defer closeStmt.Close()

	for pos, r := range run.Results {
		m := r.Metrics
		if _, err := resStmt.ExecContext(ctx,
			run.ID, r.Stock.Name, r.Stock.Strategy, pos, r.Bars,
			formatTime(r.From), formatTime(r.To),
			m.TotalReturnPct, m.AnnualizedReturnPct, m.SharpeRatio, m.MaxDrawdownPct,
			m.WinRatePct, m.AvgWinPct, m.AvgLossPct, m.ProfitFactor,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert result %s: %w", r.Stock.Name, err)
		}

		for _, sig := range r.Signals {
			if _, err := sigStmt.ExecContext(ctx,
				uuid.NewString(), run.ID, r.Stock.Name, formatTime(sig.Timestamp),
				string(sig.Type), sig.Price, sig.StopLoss, sig.TakeProfit, sig.Reason,
			); err != nil {
				return fmt.Errorf("storage.SaveRun: insert signal %s: %w", r.Stock.Name, err)
			}
		}
		for _, c := range r.Closes {
			if _, err := closeStmt.ExecContext(ctx,
				uuid.NewString(), run.ID, r.Stock.Name, formatTime(c.Timestamp), c.Price,
				formatTime(c.EntryTimestamp), c.EntryPrice, c.Reason,
			); err != nil {
				return fmt.Errorf("storage.SaveRun: insert close %s: %w", r.Stock.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetRuns devuelve las ejecuciones cuyo started_at está en el rango dado, más recientes primero.
// Cada resultado trae métricas, señales y cierres; las series de retornos no se persisten.
func (s *SQLiteStorage) GetRuns(ctx context.Context, from, to time.Time) ([]domain.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, range_start, range_end, has_portfolio,
		       pf_total_return, pf_annualized, pf_sharpe, pf_max_drawdown,
		       pf_win_rate, pf_avg_win, pf_avg_loss, pf_profit_factor
		FROM runs
		WHERE started_at BETWEEN ? AND ?
		ORDER BY started_at DESC
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}

	var runs []domain.Run
	for rows.Next() {
		var run domain.Run
		var startedAt, rangeStart, rangeEnd string
		var hasPF int
		var pf domain.Metrics
		if err := rows.Scan(
			&run.ID, &startedAt, &rangeStart, &rangeEnd, &hasPF,
			&pf.TotalReturnPct, &pf.AnnualizedReturnPct, &pf.SharpeRatio, &pf.MaxDrawdownPct,
			&pf.WinRatePct, &pf.AvgWinPct, &pf.AvgLossPct, &pf.ProfitFactor,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}
		run.StartedAt = parseTime(startedAt)
		run.Range = domain.DateRange{Start: parseTime(rangeStart), End: parseTime(rangeEnd)}
		if hasPF == 1 {
			run.Portfolio = &domain.PortfolioResult{Metrics: pf}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("storage.GetRuns: %w", err)
	}
	rows.Close()

	// con MaxOpenConns(1) las consultas anidadas tienen que ir después de cerrar rows
	for i := range runs {
		results, err := s.getResults(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
		if runs[i].Portfolio != nil {
			runs[i].Portfolio.Stocks = results
		}
	}
	return runs, nil
}

// GetSignals devuelve las señales de una ejecución agrupadas por stock, en orden cronológico.
func (s *SQLiteStorage) GetSignals(ctx context.Context, runID string) (map[string][]domain.TradeSignal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stock, ts, type, price, stop_loss, take_profit, reason
		FROM signals
		WHERE run_id = ?
		ORDER BY stock, ts
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetSignals: query: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.TradeSignal)
	for rows.Next() {
		var stock, ts, typ string
		var sig domain.TradeSignal
		if err := rows.Scan(&stock, &ts, &typ, &sig.Price, &sig.StopLoss, &sig.TakeProfit, &sig.Reason); err != nil {
			return nil, fmt.Errorf("storage.GetSignals: scan row: %w", err)
		}
		sig.Timestamp = parseTime(ts)
		sig.Type = domain.SignalType(typ)
		out[stock] = append(out[stock], sig)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func (s *SQLiteStorage) getResults(ctx context.Context, runID string) ([]domain.StockResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stock, strategy, bars, first_bar, last_bar,
		       total_return, annualized, sharpe, max_drawdown,
		       win_rate, avg_win, avg_loss, profit_factor
		FROM stock_results
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.getResults: query: %w", err)
	}

	var results []domain.StockResult
	for rows.Next() {
		var r domain.StockResult
		var first, last string
		m := &r.Metrics
		if err := rows.Scan(
			&r.Stock.Name, &r.Stock.Strategy, &r.Bars, &first, &last,
			&m.TotalReturnPct, &m.AnnualizedReturnPct, &m.SharpeRatio, &m.MaxDrawdownPct,
			&m.WinRatePct, &m.AvgWinPct, &m.AvgLossPct, &m.ProfitFactor,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage.getResults: scan row: %w", err)
		}
		r.From, r.To = parseTime(first), parseTime(last)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("storage.getResults: %w", err)
	}
	rows.Close()

	signals, err := s.GetSignals(ctx, runID)
	if err != nil {
		return nil, err
	}
	closes, err := s.getCloses(ctx, runID)
	if err != nil {
		return nil, err
	}
	for i := range results {
		name := results[i].Stock.Name
		results[i].Signals = signals[name]
		results[i].Closes = closes[name]
	}
	return results, nil
}

func (s *SQLiteStorage) getCloses(ctx context.Context, runID string) (map[string][]domain.PositionClosed, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stock, ts, price, entry_ts, entry_price, reason
		FROM closes
		WHERE run_id = ?
		ORDER BY stock, ts
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.getCloses: query: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.PositionClosed)
	for rows.Next() {
		var stock, ts, entryTS string
		var c domain.PositionClosed
		if err := rows.Scan(&stock, &ts, &c.Price, &entryTS, &c.EntryPrice, &c.Reason); err != nil {
			return nil, fmt.Errorf("storage.getCloses: scan row: %w", err)
		}
		c.Timestamp, c.EntryTimestamp = parseTime(ts), parseTime(entryTS)
		out[stock] = append(out[stock], c)
	}
	return out, rows.Err()
}

// pruneOld elimina ejecuciones antiguas para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := formatTime(time.Now().Add(-retentionRuns))
	for _, table := range []string{"signals", "closes", "stock_results"} {
		s.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff)
	}
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
}

// formatTime serializa en UTC; el tiempo cero se guarda como cadena vacía.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeLayout, s)
	return t
}

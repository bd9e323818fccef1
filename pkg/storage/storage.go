// Package storage persists batch runs and their per-URL results to a local
// SQLite database so past syncs stay reviewable after the process exits.
package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/freakstore-tools/freaksync/pkg/syncer"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sync_runs (
  id          INTEGER PRIMARY KEY,
  started_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  total       INTEGER NOT NULL,
  succeeded   INTEGER NOT NULL,
  failed      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS sync_results (
  id               INTEGER PRIMARY KEY,
  run_id           INTEGER NOT NULL REFERENCES sync_runs(id),
  url              TEXT NOT NULL,
  success          INTEGER NOT NULL CHECK (success IN (0,1)),
  matched_sku      TEXT,
  target_sku       TEXT,
  fallback_match   INTEGER NOT NULL DEFAULT 0 CHECK (fallback_match IN (0,1)),
  attempted_skus   TEXT,
  discount_pct     REAL NOT NULL DEFAULT 0,
  original_price   INTEGER NOT NULL DEFAULT 0,
  final_price      INTEGER NOT NULL DEFAULT 0,
  product_id       INTEGER NOT NULL DEFAULT 0,
  variant_id       INTEGER NOT NULL DEFAULT 0,
  updated_variants INTEGER NOT NULL DEFAULT 0,
  total_variants   INTEGER NOT NULL DEFAULT 0,
  failed_at        TEXT,
  error            TEXT
);
CREATE INDEX IF NOT EXISTS idx_results_run ON sync_results(run_id);
CREATE INDEX IF NOT EXISTS idx_results_url ON sync_results(url);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// RecordRun stores a batch's results under a new run id.
func (d *DB) RecordRun(ctx context.Context, results []syncer.Result) (runID int64, err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sync_runs(total, succeeded, failed) VALUES(?,?,?)`,
		len(results), succeeded, len(results)-succeeded)
	if err != nil {
		return 0, err
	}
	runID, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, r := range results {
		_, err = tx.ExecContext(ctx, `INSERT INTO sync_results(
run_id, url, success, matched_sku, target_sku, fallback_match, attempted_skus,
discount_pct, original_price, final_price, product_id, variant_id,
updated_variants, total_variants, failed_at, error)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			runID, r.URL, boolToInt(r.Success), nullIfEmpty(r.MatchedSKU),
			nullIfEmpty(r.TargetSKU), boolToInt(r.FallbackMatch),
			nullIfEmpty(strings.Join(r.AttemptedSKUs, ",")),
			r.DiscountPct, r.OriginalPrice, r.FinalPrice, r.ProductID,
			r.VariantID, r.UpdatedVariants, r.TotalVariants,
			nullIfEmpty(string(r.FailedAt)), nullIfEmpty(r.Error))
		if err != nil {
			return 0, err
		}
	}

	return runID, tx.Commit()
}

// RunSummary is one row of the run list.
type RunSummary struct {
	ID        int64
	StartedAt time.Time
	Total     int
	Succeeded int
	Failed    int
}

// RecentRuns lists the latest runs, newest first.
func (d *DB) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, started_at, total, succeeded, failed FROM sync_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			started string
		)
		if err := rows.Scan(&r.ID, &started, &r.Total, &r.Succeeded, &r.Failed); err != nil {
			return nil, err
		}
		// SQLite stores CURRENT_TIMESTAMP as text.
		r.StartedAt, _ = time.Parse("2006-01-02 15:04:05", started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunResults returns the stored per-URL results of a run, in insert order.
func (d *DB) RunResults(ctx context.Context, runID int64) ([]syncer.Result, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT url, success, matched_sku, target_sku, fallback_match, attempted_skus,
discount_pct, original_price, final_price, product_id, variant_id,
updated_variants, total_variants, failed_at, error
FROM sync_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []syncer.Result
	for rows.Next() {
		var (
			r                                      syncer.Result
			success, fallback                      int
			matched, target, attempted, failedAt, errText sql.NullString
		)
		if err := rows.Scan(&r.URL, &success, &matched, &target, &fallback,
			&attempted, &r.DiscountPct, &r.OriginalPrice, &r.FinalPrice,
			&r.ProductID, &r.VariantID, &r.UpdatedVariants, &r.TotalVariants,
			&failedAt, &errText); err != nil {
			return nil, err
		}
		r.Success = success == 1
		r.FallbackMatch = fallback == 1
		r.MatchedSKU = matched.String
		r.TargetSKU = target.String
		if attempted.String != "" {
			r.AttemptedSKUs = strings.Split(attempted.String, ",")
		}
		r.FailedAt = syncer.State(failedAt.String)
		r.Error = errText.String
		results = append(results, r)
	}
	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

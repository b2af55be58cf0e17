package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linesd/az-fda/pkg/analysis"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	kind TEXT NOT NULL,
	matrix TEXT,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS summaries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id),
	year TEXT NOT NULL,
	route TEXT,
	drug_names TEXT, -- JSON array
	average_num_ingredients REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_run ON summaries(run_id);
`

// RunInfo is the header of an archived run.
type RunInfo struct {
	ID        string
	Query     string
	Kind      analysis.Kind
	CreatedAt time.Time
}

// SQLiteStore archives runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the archive at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save appends run and its summary rows in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, run *Run) (err error) {
	defer func() { recordWrite(backendSQLite, err) }()

	if run == nil || run.Result == nil {
		return fmt.Errorf("run cannot be nil")
	}

	var matrix []byte
	if run.Matrix != nil {
		if matrix, err = json.Marshal(run.Matrix); err != nil {
			return fmt.Errorf("marshal matrix: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, kind, matrix, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Query, string(run.Kind), string(matrix), run.CreatedAt); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO summaries (run_id, year, route, drug_names, average_num_ingredients) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sum := range run.Result.Summaries {
		var names sql.NullString
		if len(sum.DrugNames) > 0 {
			var b []byte
			if b, err = json.Marshal(sum.DrugNames); err != nil {
				return fmt.Errorf("marshal drug names: %w", err)
			}
			names = sql.NullString{String: string(b), Valid: true}
		}
		if _, err = stmt.ExecContext(ctx, run.ID, sum.Year, nullable(sum.Route),
			names, sum.AverageNumIngredients); err != nil {
			return fmt.Errorf("insert summary: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns archived runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, query, kind, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var kind string
		if err := rows.Scan(&info.ID, &info.Query, &kind, &info.CreatedAt); err != nil {
			return nil, err
		}
		info.Kind = analysis.Kind(kind)
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// Summaries returns the summary rows of one run in insertion order.
func (s *SQLiteStore) Summaries(ctx context.Context, runID string) ([]analysis.Summary, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT year, route, drug_names, average_num_ingredients FROM summaries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analysis.Summary
	for rows.Next() {
		var sum analysis.Summary
		var route, names sql.NullString
		if err := rows.Scan(&sum.Year, &route, &names, &sum.AverageNumIngredients); err != nil {
			return nil, err
		}
		sum.Route = route.String
		if names.Valid {
			if err := json.Unmarshal([]byte(names.String), &sum.DrugNames); err != nil {
				return nil, fmt.Errorf("decode drug names: %w", err)
			}
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

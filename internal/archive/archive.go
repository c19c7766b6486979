// Package archive keeps a history of generated verification reports in a
// SQLite database.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/msageha/wfinterop/internal/model"
)

//go:embed schema.sql
var schemaSQL string

var ErrRunNotFound = errors.New("report run not found")

// Run is one archived report.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Checkers  int       `json:"checkers"`
	Observed  int       `json:"observed"`
}

// Archive stores report runs. SQLite allows one writer, so the pool is
// limited to a single connection.
type Archive struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect archive: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Save records results as a new run created at at.
func (a *Archive) Save(ctx context.Context, results []model.TestbedResult, at time.Time) (Run, error) {
	id, err := model.GenerateID(model.IDTypeReport)
	if err != nil {
		return Run{}, err
	}
	run := Run{ID: id, CreatedAt: at.UTC().Truncate(time.Second), Checkers: len(results)}
	for _, r := range results {
		if len(r.WESVerified.Details()) > 0 {
			run.Observed++
		}
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO report_runs (id, created_at, checkers, observed)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.CreatedAt.Format(time.RFC3339), run.Checkers, run.Observed)
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}

	for i, r := range results {
		verified, err := json.Marshal(r.WESVerified)
		if err != nil {
			return Run{}, fmt.Errorf("save run: encode result %d: %w", i, err)
		}
		workflowID, err := json.Marshal(r.WorkflowID)
		if err != nil {
			return Run{}, fmt.Errorf("save run: encode result %d: %w", i, err)
		}
		versionID, err := json.Marshal(r.VersionID)
		if err != nil {
			return Run{}, fmt.Errorf("save run: encode result %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO report_results
			(run_id, seq, checker_queue, target_queue, workflow_id, version_id, wes_verified)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, r.CheckerQueue, r.TargetQueue, string(workflowID), string(versionID), string(verified))
		if err != nil {
			return Run{}, fmt.Errorf("save run: result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("save run: commit: %w", err)
	}
	return run, nil
}

// Runs lists archived runs, newest first. limit <= 0 means all.
func (a *Archive) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, created_at, checkers, observed FROM report_runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var created string
		if err := rows.Scan(&run.ID, &created, &run.Checkers, &run.Observed); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("list runs: run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Results returns the results of run id in their original order.
func (a *Archive) Results(ctx context.Context, id string) ([]model.TestbedResult, error) {
	var exists int
	err := a.db.QueryRowContext(ctx, `SELECT 1 FROM report_runs WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT checker_queue, target_queue, workflow_id, version_id, wes_verified
		FROM report_results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	defer rows.Close()

	results := make([]model.TestbedResult, 0)
	for rows.Next() {
		var r model.TestbedResult
		var workflowID, versionID, verified string
		if err := rows.Scan(&r.CheckerQueue, &r.TargetQueue, &workflowID, &versionID, &verified); err != nil {
			return nil, fmt.Errorf("load run %s: scan: %w", id, err)
		}
		if err := json.Unmarshal([]byte(workflowID), &r.WorkflowID); err != nil {
			return nil, fmt.Errorf("load run %s: decode workflow_id: %w", id, err)
		}
		if err := json.Unmarshal([]byte(versionID), &r.VersionID); err != nil {
			return nil, fmt.Errorf("load run %s: decode version_id: %w", id, err)
		}
		if err := json.Unmarshal([]byte(verified), &r.WESVerified); err != nil {
			return nil, fmt.Errorf("load run %s: decode wes_verified: %w", id, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	return results, nil
}

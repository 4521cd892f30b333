package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/storesim/internal/engine"
	"github.com/roach88/storesim/internal/ir"
)

const runColumns = `id, seed, params, steps, snapshot_hash, revenue, transactions, restocks, created_at`

// ReadRun returns the run with the given id.
// Returns ErrRunNotFound if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// LatestRun returns the most recently created run.
// Returns ErrRunNotFound if the store is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY created_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns every run, oldest first.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSamples returns a run's history ordered by step.
func (s *Store) ReadSamples(ctx context.Context, runID string) ([]engine.Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, revenue, transactions, restocks, avg_satisfaction, avg_performance,
		       premium_customers, active_customers, low_stock_books, total_messages
		FROM samples
		WHERE run_id = ?
		ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []engine.Sample{}
	for rows.Next() {
		var sm engine.Sample
		var revenue int64
		if err := rows.Scan(
			&sm.Step,
			&revenue,
			&sm.Transactions,
			&sm.Restocks,
			&sm.AvgSatisfaction,
			&sm.AvgPerformance,
			&sm.Premium,
			&sm.Active,
			&sm.LowStock,
			&sm.Messages,
		); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		sm.Revenue = ir.Cents(revenue)
		samples = append(samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// ReadTransactions returns a run's transactions ordered by seq.
func (s *Store) ReadTransactions(ctx context.Context, runID string) ([]ir.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, customer_id, book_id, amount, step, timestamp
		FROM transactions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns := []ir.Transaction{}
	for rows.Next() {
		var txn ir.Transaction
		var amount int64
		var ts string
		if err := rows.Scan(&txn.Seq, &txn.CustomerID, &txn.BookID, &amount, &txn.Step, &ts); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txn.Amount = ir.Cents(amount)
		if txn.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

// ReadSnapshot returns the stored hash and canonical JSON of a run's final
// snapshot. Returns ErrRunNotFound if the run has none.
func (s *Store) ReadSnapshot(ctx context.Context, runID string) (hash string, body []byte, err error) {
	var text string
	err = s.db.QueryRowContext(ctx, `
		SELECT hash, body FROM snapshots WHERE run_id = ?
	`, runID).Scan(&hash, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return "", nil, fmt.Errorf("read snapshot: %w", err)
	}
	return hash, []byte(text), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var params, createdAt string
	var revenue int64
	err := row.Scan(
		&run.ID,
		&run.Seed,
		&params,
		&run.Steps,
		&run.SnapshotHash,
		&revenue,
		&run.Transactions,
		&run.Restocks,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Revenue = ir.Cents(revenue)
	if run.Params, err = unmarshalParams(params); err != nil {
		return Run{}, err
	}
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return Run{}, err
	}
	return run, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/roach88/storesim/internal/engine"
	"github.com/roach88/storesim/internal/ir"
)

// SaveRun writes a run with its history, transactions and final snapshot
// in one transaction. Saving an id that already exists fails.
func (s *Store) SaveRun(ctx context.Context, run Run, samples []engine.Sample, snap ir.Snapshot) error {
	paramsJSON, err := marshalParams(run.Params)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	body, err := marshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seed, params, steps, snapshot_hash, revenue, transactions, restocks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seed,
		paramsJSON,
		run.Steps,
		run.SnapshotHash,
		int64(run.Revenue),
		run.Transactions,
		run.Restocks,
		formatTime(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save run: insert run: %w", err)
	}

	for _, sm := range samples {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO samples
			(run_id, step, revenue, transactions, restocks, avg_satisfaction, avg_performance,
			 premium_customers, active_customers, low_stock_books, total_messages)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			sm.Step,
			int64(sm.Revenue),
			sm.Transactions,
			sm.Restocks,
			sm.AvgSatisfaction,
			sm.AvgPerformance,
			sm.Premium,
			sm.Active,
			sm.LowStock,
			sm.Messages,
		)
		if err != nil {
			return fmt.Errorf("save run: insert sample %d: %w", sm.Step, err)
		}
	}

	for _, txn := range snap.Transactions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions
			(run_id, seq, customer_id, book_id, amount, step, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			txn.Seq,
			txn.CustomerID,
			txn.BookID,
			int64(txn.Amount),
			txn.Step,
			formatTime(txn.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("save run: insert transaction %d: %w", txn.Seq, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (run_id, step, hash, body)
		VALUES (?, ?, ?, ?)
	`, run.ID, snap.Step, run.SnapshotHash, body)
	if err != nil {
		return fmt.Errorf("save run: insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run: commit: %w", err)
	}
	return nil
}

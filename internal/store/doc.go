// Package store provides SQLite-backed durable storage for simulation runs.
//
// A saved run is append-only and consists of:
//   - Run: id, seed, parameters, step count and aggregate totals
//   - Samples: the per-step history series
//   - Transactions: every successful purchase, in sequence order
//   - Snapshot: the canonical JSON of the final snapshot and its hash
//
// # Ordering
//
// Queries order by logical keys (step, seq) and never by timestamps, so a
// stored run reads back identically however often it is loaded. Runs list
// by created_at, then id; run ids are UUIDv7 and sort by creation time.
//
// # Replay
//
// The seed and parameters are enough to rebuild a run. Replay compares the
// rebuilt final snapshot hash with Run.SnapshotHash.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/storesim/internal/engine"
	"github.com/roach88/storesim/internal/testutil"
)

// createTestStore opens a fresh database under t.TempDir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// runTestSimulation runs a small seeded simulation to completion.
func runTestSimulation(t *testing.T, seed int64, steps int) *engine.Simulation {
	t.Helper()
	clock := testutil.NewFakeClock()
	sim, err := engine.Initialize(
		engine.Params{Customers: 5, Employees: 2, Books: 8, Seed: seed},
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithClock(clock.Now),
	)
	if err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if err := sim.Run(context.Background(), steps, nil); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	sim.Finish()
	return sim
}

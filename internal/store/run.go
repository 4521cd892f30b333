package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/roach88/storesim/internal/engine"
	"github.com/roach88/storesim/internal/ir"
)

// Run is the stored summary of one simulation run.
type Run struct {
	ID           string        `json:"id"`
	Seed         int64         `json:"seed"`
	Params       engine.Params `json:"params"`
	Steps        int64         `json:"steps"`
	SnapshotHash string        `json:"snapshot_hash"`
	Revenue      ir.Cents      `json:"revenue"`
	Transactions int           `json:"transactions"`
	Restocks     int           `json:"restocks"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewRunID returns a time-sortable UUIDv7 run id.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RunFromSimulation summarizes sim under id. Params carry the resolved
// seed so the run can be rebuilt exactly.
func RunFromSimulation(id string, sim *engine.Simulation, createdAt time.Time) (Run, error) {
	hash, err := sim.SnapshotHash()
	if err != nil {
		return Run{}, err
	}
	params := sim.Params()
	params.Seed = sim.Seed()
	return Run{
		ID:           id,
		Seed:         sim.Seed(),
		Params:       params,
		Steps:        sim.StepCount(),
		SnapshotHash: hash,
		Revenue:      sim.TotalRevenue(),
		Transactions: sim.TotalTransactions(),
		Restocks:     sim.TotalRestocks(),
		CreatedAt:    createdAt,
	}, nil
}

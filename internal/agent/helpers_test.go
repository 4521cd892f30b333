package agent

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/storesim/internal/bus"
	"github.com/roach88/storesim/internal/entity"
	"github.com/roach88/storesim/internal/ir"
	"github.com/roach88/storesim/internal/testutil"
)

// scriptedSource replays a fixed cycle of uniform draws in [0,1). A draw
// of 0 makes every chance succeed and every Intn return 0.
type scriptedSource struct {
	vals []float64
	i    int
}

func (s *scriptedSource) Int63() int64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return int64(v * (1 << 63))
}

func (s *scriptedSource) Seed(int64) {}

func scripted(vals ...float64) *rand.Rand {
	return rand.New(&scriptedSource{vals: vals})
}

type fakeRecorder struct {
	purchases []ir.Transaction
	restocks  []string
}

func (r *fakeRecorder) RecordPurchase(txn ir.Transaction) {
	r.purchases = append(r.purchases, txn)
}

func (r *fakeRecorder) RecordRestock(employeeID, inventoryID string, amount int) {
	r.restocks = append(r.restocks, inventoryID)
}

type fixture struct {
	env      *Env
	store    *entity.Store
	bus      *bus.Bus
	recorder *fakeRecorder
}

func newFixture(t *testing.T, rng *rand.Rand) *fixture {
	t.Helper()
	clock := testutil.NewFakeClock()
	st := entity.New(testutil.NewRand(testutil.DefaultSeed), entity.WithClock(clock.Now))
	b := bus.New(bus.WithClock(clock.Now))
	b.Register(ir.SystemID)
	rec := &fakeRecorder{}
	return &fixture{
		env: &Env{
			Store:    st,
			Bus:      b,
			Rand:     rng,
			Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
			Recorder: rec,
			Step:     1,
		},
		store:    st,
		bus:      b,
		recorder: rec,
	}
}

func (f *fixture) customer(t *testing.T, id string, budget ir.Cents) *Customer {
	t.Helper()
	require.NoError(t, f.store.CreateCustomer(id, "Customer "+id, budget))
	f.bus.Register(id)
	return NewCustomer(id)
}

func (f *fixture) book(t *testing.T, id string, price ir.Cents, qty, threshold int) *Book {
	t.Helper()
	require.NoError(t, f.store.CreateBookWithStock(id, "Title "+id, price, "Author", "Genre", qty, threshold))
	f.bus.Register(id)
	return NewBook(id)
}

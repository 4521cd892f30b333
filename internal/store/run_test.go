package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesim/internal/ir"
	"github.com/roach88/storesim/internal/testutil"
)

func saveTestRun(t *testing.T, s *Store, seed int64, createdAt time.Time) Run {
	t.Helper()
	sim := runTestSimulation(t, seed, 40)
	run, err := RunFromSimulation(NewRunID(), sim, createdAt)
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(context.Background(), run, sim.History(), sim.Snapshot()))
	return run
}

func TestNewRunID_IsV7(t *testing.T) {
	id := NewRunID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSaveRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sim := runTestSimulation(t, 42, 40)

	run, err := RunFromSimulation(NewRunID(), sim, testutil.Epoch)
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(ctx, run, sim.History(), sim.Snapshot()))

	got, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, sim.Params().Customers, got.Params.Customers)
	assert.Equal(t, int64(42), got.Params.Seed)
	assert.Equal(t, int64(40), got.Steps)
	assert.Equal(t, sim.TotalRevenue(), got.Revenue)
	assert.Equal(t, sim.TotalTransactions(), got.Transactions)
	assert.Equal(t, sim.TotalRestocks(), got.Restocks)
	assert.True(t, testutil.Epoch.Equal(got.CreatedAt))

	samples, err := s.ReadSamples(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, sim.History(), samples)

	txns, err := s.ReadTransactions(ctx, run.ID)
	require.NoError(t, err)
	want := sim.Snapshot().Transactions
	require.Len(t, txns, len(want))
	for i := range want {
		assert.Equal(t, want[i].Seq, txns[i].Seq)
		assert.Equal(t, want[i].Amount, txns[i].Amount)
		assert.True(t, want[i].Timestamp.Equal(txns[i].Timestamp))
	}

	hash, body, err := s.ReadSnapshot(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.SnapshotHash, hash)
	wantBody, err := ir.MarshalCanonical(sim.Snapshot().Object())
	require.NoError(t, err)
	assert.Equal(t, string(wantBody), string(body))
}

func TestSaveRun_DuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sim := runTestSimulation(t, 7, 20)

	run, err := RunFromSimulation(NewRunID(), sim, testutil.Epoch)
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(ctx, run, sim.History(), sim.Snapshot()))

	err = s.SaveRun(ctx, run, sim.History(), sim.Snapshot())
	require.Error(t, err)

	// The failed save left nothing behind.
	samples, err := s.ReadSamples(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, samples, 20)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, _, err = s.ReadSnapshot(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = s.LatestRun(context.Background())
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestListRuns_Order(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first := saveTestRun(t, s, 1, testutil.Epoch)
	second := saveTestRun(t, s, 2, testutil.Epoch.Add(time.Minute))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, second.ID, runs[1].ID)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestReadSamples_UnknownRunEmpty(t *testing.T) {
	s := createTestStore(t)

	samples, err := s.ReadSamples(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, samples)
	assert.Empty(t, samples)
}

package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Step: 3,
		Customers: []Customer{{
			ID: "customer_0", Name: "Alice Johnson", Budget: 15000, Satisfaction: 65,
			Purchases: []string{"book_5"}, Tags: []Tag{TagActive},
		}},
		Books: []Book{{
			ID: "book_5", Title: "The Great Adventure", Author: "John Smith", Genre: "Adventure",
			Price: 2499, BasePrice: 2499, InventoryID: "book_5_inventory",
		}},
		Inventories: []Inventory{{ID: "book_5_inventory", BookID: "book_5", Quantity: 19, Threshold: 4}},
		Transactions: []Transaction{{
			Seq: 1, CustomerID: "customer_0", BookID: "book_5", Amount: 2499, Step: 2,
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}},
	}
}

func TestSnapshotHashDeterminism(t *testing.T) {
	h1, err := SnapshotHash(sampleSnapshot())
	require.NoError(t, err)
	h2, err := SnapshotHash(sampleSnapshot())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestSnapshotHashIgnoresWallClock(t *testing.T) {
	a := sampleSnapshot()
	b := sampleSnapshot()
	b.Transactions[0].Timestamp = time.Now()

	assert.Equal(t, mustHash(t, a), mustHash(t, b))
}

func TestSnapshotHashChangesWithState(t *testing.T) {
	a := sampleSnapshot()
	b := sampleSnapshot()
	b.Inventories[0].Quantity--

	assert.NotEqual(t, mustHash(t, a), mustHash(t, b))
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte(`{"step":1}`)
	assert.NotEqual(t, hashWithDomain(DomainSnapshot, data), hashWithDomain(DomainTrace, data))
}

func mustHash(t *testing.T, s Snapshot) string {
	t.Helper()
	h, err := SnapshotHash(s)
	require.NoError(t, err)
	return h
}

func TestHashBytesMatchesSnapshotHash(t *testing.T) {
	snap := sampleSnapshot()
	body, err := MarshalCanonical(snap.Object())
	require.NoError(t, err)
	want, err := SnapshotHash(snap)
	require.NoError(t, err)

	assert.Equal(t, want, HashBytes(DomainSnapshot, body))
	assert.NotEqual(t, want, HashBytes(DomainTrace, body))
}

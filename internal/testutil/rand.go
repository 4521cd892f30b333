package testutil

import "math/rand"

// DefaultSeed is the seed used by tests that do not care about the value.
const DefaultSeed int64 = 42

// NewRand returns a generator seeded with seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

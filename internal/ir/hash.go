package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// encoding to change without colliding with stored hashes.
const (
	DomainSnapshot = "storesim/snapshot/v1"
	DomainTrace    = "storesim/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotHash returns the content hash of a snapshot. Two runs with the
// same seed and parameters produce the same hash.
func SnapshotHash(s Snapshot) (string, error) {
	canonical, err := MarshalCanonical(s.Object())
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// TraceHash returns the content hash of a canonical trace document.
func TraceHash(trace Object) (string, error) {
	canonical, err := MarshalCanonical(trace)
	if err != nil {
		return "", fmt.Errorf("TraceHash: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// HashBytes hashes already-canonical data under domain. Use it to check a
// stored canonical body against its recorded hash.
func HashBytes(domain string, data []byte) string {
	return hashWithDomain(domain, data)
}

package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/storesim/internal/engine"
	"github.com/roach88/storesim/internal/ir"
)

// timeLayout stores wall-clock values as sortable TEXT.
const timeLayout = time.RFC3339Nano

// marshalParams converts Params to JSON TEXT. Params is a plain struct, so
// encoding/json's field order is already stable.
func marshalParams(p engine.Params) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

func unmarshalParams(s string) (engine.Params, error) {
	var p engine.Params
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return engine.Params{}, fmt.Errorf("unmarshal params: %w", err)
	}
	return p, nil
}

// marshalSnapshot converts a snapshot to canonical JSON TEXT.
func marshalSnapshot(snap ir.Snapshot) (string, error) {
	data, err := ir.MarshalCanonical(snap.Object())
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

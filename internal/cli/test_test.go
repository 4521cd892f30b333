package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bundledScenarios is the harness package's scenario directory.
var bundledScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

const classifyScenario = `name: only_classify
description: one rule pass over a single low stock book
setup:
  books:
    - {id: b1, title: Cooking Basics, price: 1899, quantity: 2, threshold: 5}
flow:
  - op: classify
assertions:
  - type: tags
    id: b1
    tags: [low_stock]
`

func TestTestCommandMissingArgs(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})

	_, err := execute(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})

	_, err := execute(t, cmd, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})

	out, err := execute(t, cmd, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandBundledScenarios(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "json"})

	out, err := execute(t, cmd, bundledScenarios)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Zero(t, resp.Data.Failed)
	assert.Equal(t, resp.Data.Total, resp.Data.Passed)
	for _, s := range resp.Data.Scenarios {
		assert.Len(t, s.TraceHash, 64, s.Name)
	}
}

func TestTestCommandFilter(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})

	out, err := execute(t, cmd, bundledScenarios, "--filter", "purchase_*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ purchase_rejected")
	assert.Contains(t, out, "✓ purchase_success")
	assert.NotContains(t, out, "mailbox_drain")
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "only_classify.yaml"), []byte(classifyScenario), 0644))

	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenarios, "--update")
	require.NoError(t, err)
	goldenPath := filepath.Join(root, "golden", "only_classify.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"only_classify"`)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All scenarios passed")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"stale":true}`), 0644))
	out, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandFailingAssertion(t *testing.T) {
	dir := t.TempDir()
	bad := classifyScenario[:len(classifyScenario)-len("    tags: [low_stock]\n")] + "    tags: [overstocked]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0644))

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
}

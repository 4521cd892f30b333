package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioFiles lists the bundled scenarios. Each has a golden file named
// after its scenario name.
func scenarioFiles(t *testing.T) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	return files
}

func TestScenarios_Golden(t *testing.T) {
	for _, path := range scenarioFiles(t) {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "file name should match scenario name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario failed: %v", result.Errors)
		})
	}
}

func TestScenarios_Replay(t *testing.T) {
	for _, path := range scenarioFiles(t) {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			first, err := Run(scenario)
			require.NoError(t, err)
			second, err := Run(scenario)
			require.NoError(t, err)

			assert.Equal(t, first.TraceHash, second.TraceHash)
			assert.Equal(t, first.Trace, second.Trace)
		})
	}
}

func TestScenario_PurchaseRejected(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/purchase_rejected.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, OutcomeRejected, result.Trace[0].Outcome)
	assert.Empty(t, result.Trace[0].Result)
}

func TestScenario_MailboxDrain(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/mailbox_drain.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	ghost := result.Trace[3]
	assert.Equal(t, OutcomeError, ghost.Outcome)
	msg, _ := ghost.Result.GetString("error")
	assert.Contains(t, msg, "ghost")
}

package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesim/internal/ir"
)

func bookShop() Setup {
	return Setup{
		Customers: []CustomerSpec{{ID: "c1", Name: "Alice Johnson", Budget: 5000}},
		Books: []BookSpec{{
			ID: "b1", Title: "Cooking Basics", Author: "Chef Martinez", Genre: "Cooking",
			Price: 1899, Quantity: 1, Threshold: 3,
		}},
	}
}

func TestRun_PurchaseUntilOutOfStock(t *testing.T) {
	scenario := &Scenario{
		Name:        "out_of_stock",
		Description: "second purchase finds no stock",
		Setup:       bookShop(),
		Flow: []FlowStep{
			{Op: OpPurchase, Args: map[string]any{"customer": "c1", "book": "b1"}, Expect: &ExpectClause{Outcome: OutcomeOK}},
			{Op: OpPurchase, Args: map[string]any{"customer": "c1", "book": "b1"}, Expect: &ExpectClause{Outcome: OutcomeRejected}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	quantities := result.Final["quantities"].(ir.Object)
	assert.Equal(t, ir.Int(0), quantities["b1_inventory"])
	budgets := result.Final["budgets"].(ir.Object)
	assert.Equal(t, ir.Int(3101), budgets["c1"])
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "expect clause that does not hold",
		Setup:       bookShop(),
		Flow: []FlowStep{
			{
				Op:   OpPurchase,
				Args: map[string]any{"customer": "c1", "book": "b1"},
				Expect: &ExpectClause{
					Outcome: OutcomeOK,
					Result:  map[string]any{"amount": 1},
				},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `result "amount"`)
}

func TestRun_UnknownEntityIsTraceError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown",
		Description: "purchase of a book that does not exist",
		Setup:       bookShop(),
		Flow: []FlowStep{
			{Op: OpPurchase, Args: map[string]any{"customer": "c1", "book": "nope"}, Expect: &ExpectClause{Outcome: OutcomeError}},
			{Op: OpRestock, Args: map[string]any{"inventory": "b1_inventory", "amount": 0}, Expect: &ExpectClause{Outcome: OutcomeError}},
			{Op: OpAdjustPrice, Args: map[string]any{"book": "b1", "price": -5}, Expect: &ExpectClause{Outcome: OutcomeError}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	for _, event := range result.Trace {
		_, ok := event.Result.GetString("error")
		assert.True(t, ok, "step %d should carry an error", event.Seq)
	}
}

func TestRun_BadArgTypeIsTraceError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_arg",
		Description: "amount given as text",
		Setup:       bookShop(),
		Flow: []FlowStep{
			{Op: OpRestock, Args: map[string]any{"inventory": "b1_inventory", "amount": "ten"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, OutcomeError, result.Trace[0].Outcome)
}

func TestRun_NullArgAborts(t *testing.T) {
	scenario := &Scenario{
		Name:        "null_arg",
		Description: "null values cannot be canonicalized",
		Flow: []FlowStep{
			{Op: OpPoll, Args: map[string]any{"mailbox": nil}},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")
}

func TestRun_DuplicateSetupIDFails(t *testing.T) {
	setup := bookShop()
	setup.Customers = append(setup.Customers, CustomerSpec{ID: "c1", Name: "Again", Budget: 1})
	scenario := &Scenario{
		Name:        "dup",
		Description: "duplicate customer",
		Setup:       setup,
		Flow:        []FlowStep{{Op: OpClassify}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup")
}

func TestRunWithLogger_LogsSteps(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	scenario := &Scenario{
		Name:        "logged",
		Description: "classify once",
		Setup:       bookShop(),
		Flow:        []FlowStep{{Op: OpClassify}},
	}

	_, err := RunWithLogger(scenario, logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "flow step completed")
	assert.Contains(t, buf.String(), "op=classify")
}

func TestRun_TraceHashChangesWithFlow(t *testing.T) {
	base := &Scenario{
		Name:        "hash",
		Description: "hash sensitivity",
		Setup:       bookShop(),
		Flow:        []FlowStep{{Op: OpClassify}},
	}
	other := *base
	other.Flow = []FlowStep{{Op: OpPurchase, Args: map[string]any{"customer": "c1", "book": "b1"}}}

	a, err := Run(base)
	require.NoError(t, err)
	b, err := Run(&other)
	require.NoError(t, err)

	assert.NotEqual(t, a.TraceHash, b.TraceHash)
	assert.Len(t, a.TraceHash, len(b.TraceHash))
}

package harness

import "github.com/roach88/storesim/internal/ir"

// Operation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// TraceEvent records one executed flow operation.
type TraceEvent struct {
	Seq     int64     `json:"seq"` // 1-based position in the flow
	Op      string    `json:"op"`
	Args    ir.Object `json:"args"`
	Outcome string    `json:"outcome"`
	Result  ir.Object `json:"result"`
}

func (e TraceEvent) object() ir.Object {
	args := e.Args
	if args == nil {
		args = ir.Object{}
	}
	result := e.Result
	if result == nil {
		result = ir.Object{}
	}
	return ir.Object{
		"seq":     ir.Int(e.Seq),
		"op":      ir.String(e.Op),
		"args":    args,
		"outcome": ir.String(e.Outcome),
		"result":  result,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace lists the flow operations in execution order.
	Trace []TraceEvent `json:"trace"`

	// Final is the end state: budgets, quantities, prices, transactions
	// and message counts.
	Final ir.Object `json:"final"`

	// TraceHash is the content hash of the golden document.
	TraceHash string `json:"trace_hash"`

	// Errors contains expect and assertion failures. Empty if Pass.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Document returns the canonical golden document for the run.
func (r *Result) Document(name string) ir.Object {
	trace := make(ir.Array, len(r.Trace))
	for i, e := range r.Trace {
		trace[i] = e.object()
	}
	final := r.Final
	if final == nil {
		final = ir.Object{}
	}
	return ir.Object{
		"scenario_name": ir.String(name),
		"trace":         trace,
		"final":         final,
	}
}

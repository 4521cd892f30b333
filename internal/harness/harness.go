package harness

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/storesim/internal/bus"
	"github.com/roach88/storesim/internal/entity"
	"github.com/roach88/storesim/internal/ir"
	"github.com/roach88/storesim/internal/rules"
	"github.com/roach88/storesim/internal/testutil"
)

// Harness is the scenario execution engine. Each run gets a fresh store,
// bus and rule engine with a fake clock, so traces are reproducible.
type Harness struct {
	store  *entity.Store
	bus    *bus.Bus
	rules  *rules.Engine
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Build the population and register mailboxes
//  2. Execute flow steps, checking expect clauses
//  3. Evaluate assertions against the final state
//  4. Record the final state and the trace hash
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, discardLogger())
}

// RunWithLogger is Run with step logging sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	h := newHarness(logger)

	if err := h.executeSetup(scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	if err := h.executeFlow(scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for _, errMsg := range EvaluateAssertions(h, scenario.Assertions) {
		result.AddError(errMsg)
	}

	result.Final = h.final()
	hash, err := ir.TraceHash(result.Document(scenario.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to hash trace: %w", err)
	}
	result.TraceHash = hash
	return result, nil
}

func newHarness(logger *slog.Logger) *Harness {
	clock := testutil.NewFakeClock()
	return &Harness{
		store:  entity.New(testutil.NewRand(testutil.DefaultSeed), entity.WithClock(clock.Now)),
		bus:    bus.New(bus.WithClock(clock.Now)),
		rules:  rules.NewEngine(nil),
		logger: logger,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (h *Harness) executeSetup(setup Setup) error {
	h.bus.Register(ir.SystemID)
	for _, c := range setup.Customers {
		if err := h.store.CreateCustomer(c.ID, c.Name, ir.Cents(c.Budget)); err != nil {
			return err
		}
		h.bus.Register(c.ID)
	}
	for _, e := range setup.Employees {
		if err := h.store.CreateEmployee(e.ID, e.Name, e.Role); err != nil {
			return err
		}
		h.bus.Register(e.ID)
	}
	for _, b := range setup.Books {
		if err := h.store.CreateBookWithStock(b.ID, b.Title, ir.Cents(b.Price), b.Author, b.Genre, b.Quantity, b.Threshold); err != nil {
			return err
		}
		h.bus.Register(b.ID)
	}
	// Manager links need the books to exist.
	for _, e := range setup.Employees {
		for _, bookID := range e.Manages {
			if err := h.store.AssignManager(e.ID, bookID); err != nil {
				return err
			}
		}
	}
	for _, id := range setup.Mailboxes {
		h.bus.Register(id)
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses. Operation
// failures are recorded in the trace; only malformed arguments abort.
func (h *Harness) executeFlow(flow []FlowStep, result *Result) error {
	for i, step := range flow {
		args, err := convertArgsToObject(step.Args)
		if err != nil {
			return fmt.Errorf("flow step %d: failed to convert args: %w", i, err)
		}

		outcome, res := h.execute(step.Op, args)
		result.Trace = append(result.Trace, TraceEvent{
			Seq:     int64(i + 1),
			Op:      step.Op,
			Args:    args,
			Outcome: outcome,
			Result:  res,
		})

		if step.Expect != nil {
			for _, msg := range checkExpect(i, step, outcome, res) {
				result.AddError(msg)
			}
		}

		h.logger.Debug("flow step completed",
			"step", i,
			"op", step.Op,
			"outcome", outcome)
	}
	return nil
}

func (h *Harness) execute(op string, args ir.Object) (string, ir.Object) {
	switch op {
	case OpPurchase:
		return h.purchase(args)
	case OpRestock:
		return h.restock(args)
	case OpAdjustPrice:
		return h.adjustPrice(args)
	case OpClassify:
		return h.classify()
	case OpSend:
		return h.send(args)
	case OpBroadcast:
		return h.broadcast(args)
	case OpPoll:
		return h.poll(args)
	}
	return failed(fmt.Errorf("unknown op %q", op))
}

func (h *Harness) purchase(args ir.Object) (string, ir.Object) {
	customer, book, err := twoStrings(args, "customer", "book")
	if err != nil {
		return failed(err)
	}
	txn, ok, err := h.store.Purchase(customer, book)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return OutcomeRejected, ir.Object{}
	}
	return OutcomeOK, ir.Object{
		"amount":  ir.Int(txn.Amount),
		"txn_seq": ir.Int(txn.Seq),
	}
}

func (h *Harness) restock(args ir.Object) (string, ir.Object) {
	invID, ok := args.GetString("inventory")
	if !ok {
		return failed(argError("inventory", "string"))
	}
	amount, ok := args.GetInt("amount")
	if !ok {
		return failed(argError("amount", "integer"))
	}
	if err := h.store.Restock(invID, int(amount)); err != nil {
		return failed(err)
	}
	inv, _ := h.store.Inventory(invID)
	return OutcomeOK, ir.Object{"quantity": ir.Int(inv.Quantity)}
}

func (h *Harness) adjustPrice(args ir.Object) (string, ir.Object) {
	bookID, ok := args.GetString("book")
	if !ok {
		return failed(argError("book", "string"))
	}
	price, ok := args.GetInt("price")
	if !ok {
		return failed(argError("price", "integer"))
	}
	if err := h.store.AdjustPrice(bookID, ir.Cents(price)); err != nil {
		return failed(err)
	}
	return OutcomeOK, ir.Object{"price": ir.Int(price)}
}

// classify runs one rule pass. The result maps every tagged entity id to
// its sorted tags.
func (h *Harness) classify() (string, ir.Object) {
	c := h.rules.Apply(h.store)
	tagged := ir.Object{}
	for _, byID := range []map[string][]ir.Tag{c.Customers, c.Employees, c.Books, c.Inventories} {
		for id, tags := range byID {
			if len(tags) > 0 {
				tagged[id] = ir.StringArray(ir.SortTags(tags))
			}
		}
	}
	return OutcomeOK, ir.Object{"tags": tagged}
}

func (h *Harness) send(args ir.Object) (string, ir.Object) {
	from, to, err := twoStrings(args, "from", "to")
	if err != nil {
		return failed(err)
	}
	typ, ok := args.GetString("type")
	if !ok {
		return failed(argError("type", "string"))
	}
	payload, err := payloadArg(args)
	if err != nil {
		return failed(err)
	}
	id, err := h.bus.Send(from, to, ir.MessageType(typ), payload)
	if err != nil {
		return failed(err)
	}
	return OutcomeOK, ir.Object{"id": ir.Int(id)}
}

func (h *Harness) broadcast(args ir.Object) (string, ir.Object) {
	from, typ, err := twoStrings(args, "from", "type")
	if err != nil {
		return failed(err)
	}
	payload, err := payloadArg(args)
	if err != nil {
		return failed(err)
	}
	ids, err := h.bus.Broadcast(from, ir.MessageType(typ), payload)
	if err != nil {
		return failed(err)
	}
	out := make(ir.Array, len(ids))
	for i, id := range ids {
		out[i] = ir.Int(id)
	}
	return OutcomeOK, ir.Object{"ids": out}
}

func (h *Harness) poll(args ir.Object) (string, ir.Object) {
	mailbox, ok := args.GetString("mailbox")
	if !ok {
		return failed(argError("mailbox", "string"))
	}
	msgs := h.bus.Poll(mailbox)
	out := make(ir.Array, len(msgs))
	for i, msg := range msgs {
		payload := msg.Payload
		if payload == nil {
			payload = ir.Object{}
		}
		out[i] = ir.Object{
			"id":      ir.Int(msg.ID),
			"sender":  ir.String(msg.Sender),
			"type":    ir.String(msg.Type),
			"payload": payload,
		}
	}
	return OutcomeOK, ir.Object{"messages": out}
}

// final captures the state compared by golden files.
func (h *Harness) final() ir.Object {
	budgets := ir.Object{}
	for _, c := range h.store.Customers() {
		budgets[c.ID] = ir.Int(c.Budget)
	}
	prices := ir.Object{}
	for _, b := range h.store.Books() {
		prices[b.ID] = ir.Int(b.Price)
	}
	quantities := ir.Object{}
	for _, inv := range h.store.Inventories() {
		quantities[inv.ID] = ir.Int(inv.Quantity)
	}
	txns := h.store.Transactions()
	transactions := make(ir.Array, len(txns))
	for i, t := range txns {
		transactions[i] = ir.Object{
			"seq":         ir.Int(t.Seq),
			"customer_id": ir.String(t.CustomerID),
			"book_id":     ir.String(t.BookID),
			"amount":      ir.Int(t.Amount),
		}
	}
	stats := h.bus.Stats()
	return ir.Object{
		"budgets":      budgets,
		"prices":       prices,
		"quantities":   quantities,
		"transactions": transactions,
		"messages": ir.Object{
			"total":     ir.Int(stats.Total),
			"delivered": ir.Int(stats.Delivered),
			"pending":   ir.Int(stats.Pending),
		},
	}
}

func checkExpect(index int, step FlowStep, outcome string, res ir.Object) []string {
	var errs []string
	if outcome != step.Expect.Outcome {
		errs = append(errs, fmt.Sprintf("flow[%d] %s: expected outcome %s, got %s (result %v)",
			index, step.Op, step.Expect.Outcome, outcome, res))
	}
	want, err := convertArgsToObject(step.Expect.Result)
	if err != nil {
		return append(errs, fmt.Sprintf("flow[%d] %s: bad expected result: %v", index, step.Op, err))
	}
	for _, key := range want.SortedKeys() {
		got, ok := res[key]
		if !ok {
			errs = append(errs, fmt.Sprintf("flow[%d] %s: result missing %q", index, step.Op, key))
			continue
		}
		if !valuesEqual(want[key], got) {
			errs = append(errs, fmt.Sprintf("flow[%d] %s: result %q = %v, expected %v", index, step.Op, key, got, want[key]))
		}
	}
	return errs
}

func valuesEqual(a, b ir.Value) bool {
	ca, errA := ir.MarshalCanonical(a)
	cb, errB := ir.MarshalCanonical(b)
	return errA == nil && errB == nil && slices.Equal(ca, cb)
}

func failed(err error) (string, ir.Object) {
	return OutcomeError, ir.Object{"error": ir.String(err.Error())}
}

func argError(name, kind string) error {
	return fmt.Errorf("arg %q must be a %s", name, kind)
}

func twoStrings(args ir.Object, a, b string) (string, string, error) {
	va, ok := args.GetString(a)
	if !ok {
		return "", "", argError(a, "string")
	}
	vb, ok := args.GetString(b)
	if !ok {
		return "", "", argError(b, "string")
	}
	return va, vb, nil
}

func payloadArg(args ir.Object) (ir.Object, error) {
	v, ok := args["payload"]
	if !ok {
		return ir.Object{}, nil
	}
	obj, ok := v.(ir.Object)
	if !ok {
		return nil, argError("payload", "mapping")
	}
	return obj, nil
}

// convertArgsToObject converts YAML-decoded values to an ir.Object.
func convertArgsToObject(args map[string]any) (ir.Object, error) {
	result := ir.Object{}
	for key, val := range args {
		v, err := convertToValue(val)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		result[key] = v
	}
	return result, nil
}

// convertToValue converts a YAML-decoded value to an ir.Value. Nulls and
// non-integral numbers are rejected since canonical JSON forbids them.
func convertToValue(val any) (ir.Value, error) {
	if val == nil {
		return nil, fmt.Errorf("null values are forbidden (canonical JSON does not support null)")
	}

	switch v := val.(type) {
	case string:
		return ir.String(v), nil
	case int:
		return ir.Int(int64(v)), nil
	case int64:
		return ir.Int(v), nil
	case float64:
		if v == float64(int64(v)) {
			return ir.Int(int64(v)), nil
		}
		return nil, fmt.Errorf("floats are forbidden: %v", v)
	case bool:
		return ir.Bool(v), nil
	case []any:
		arr := make(ir.Array, len(v))
		for i, elem := range v {
			irElem, err := convertToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj, err := convertArgsToObject(v)
		if err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", val)
	}
}

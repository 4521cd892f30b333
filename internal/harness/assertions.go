package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/storesim/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Subject  string // Entity id or "store"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s %s\n", e.Type, e.Subject)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions evaluates every assertion against the harness state
// and returns the failure messages.
func EvaluateAssertions(h *Harness, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(h, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(h *Harness, a Assertion) error {
	switch a.Type {
	case AssertBudget:
		c, ok := h.store.Customer(a.ID)
		if !ok {
			return notFound(a)
		}
		return compareInt(a, int64(c.Budget))
	case AssertQuantity:
		inv, ok := h.store.Inventory(a.ID)
		if !ok {
			return notFound(a)
		}
		return compareInt(a, int64(inv.Quantity))
	case AssertPrice:
		b, ok := h.store.Book(a.ID)
		if !ok {
			return notFound(a)
		}
		return compareInt(a, int64(b.Price))
	case AssertTags:
		tags, ok := h.tagsOf(a.ID)
		if !ok {
			return notFound(a)
		}
		want := make([]ir.Tag, len(a.Tags))
		for i, t := range a.Tags {
			want[i] = ir.Tag(t)
		}
		want = ir.SortTags(want)
		got := ir.SortTags(tags)
		if !slices.Equal(want, got) {
			return &AssertionError{
				Type:     a.Type,
				Subject:  a.ID,
				Expected: fmt.Sprintf("%v", want),
				Actual:   fmt.Sprintf("%v", got),
			}
		}
		return nil
	case AssertTransactionCount:
		return compareInt(a, int64(h.store.TransactionCount()))
	case AssertMessageStats:
		stats := h.bus.Stats()
		actual := map[string]int{
			"total":      stats.Total,
			"delivered":  stats.Delivered,
			"pending":    stats.Pending,
			"registered": stats.Registered,
		}
		for _, key := range sortedKeys(a.Stats) {
			got, known := actual[key]
			if !known || got != a.Stats[key] {
				return &AssertionError{
					Type:     a.Type,
					Subject:  key,
					Expected: fmt.Sprintf("%d", a.Stats[key]),
					Actual:   fmt.Sprintf("%d (known=%t)", got, known),
				}
			}
		}
		return nil
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// tagsOf finds an entity of any kind by id.
func (h *Harness) tagsOf(id string) ([]ir.Tag, bool) {
	if c, ok := h.store.Customer(id); ok {
		return c.Tags, true
	}
	if e, ok := h.store.Employee(id); ok {
		return e.Tags, true
	}
	if b, ok := h.store.Book(id); ok {
		return b.Tags, true
	}
	if inv, ok := h.store.Inventory(id); ok {
		return inv.Tags, true
	}
	return nil, false
}

func compareInt(a Assertion, got int64) error {
	if got == *a.Equals {
		return nil
	}
	subject := a.ID
	if subject == "" {
		subject = "store"
	}
	return &AssertionError{
		Type:     a.Type,
		Subject:  subject,
		Expected: fmt.Sprintf("%d", *a.Equals),
		Actual:   fmt.Sprintf("%d", got),
	}
}

func notFound(a Assertion) error {
	return &AssertionError{
		Type:     a.Type,
		Subject:  a.ID,
		Expected: "entity exists",
		Actual:   "not found",
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

package agent

import (
	"context"
	"math/rand"

	"github.com/roach88/storesim/internal/ir"
)

// Employee behavior parameters.
const (
	EmployeeActivity = 0.70
	MinEfficiency    = 0.70
	MaxEfficiency    = 0.95
	MinRestockAmount = 15
	MaxRestockAmount = 25

	PerformanceOnRestock      = 2
	PerformanceOnPurchaseNote = 1
)

// Employee restocks low inventories. It keeps no sub-state between steps
// beyond its fixed efficiency and restock amount.
type Employee struct {
	id            string
	restockAmount int
	efficiency    float64
}

// NewEmployee creates an employee agent, drawing its restock amount and
// efficiency from rng.
func NewEmployee(id string, rng *rand.Rand) *Employee {
	amount := intRange(rng, MinRestockAmount, MaxRestockAmount)
	efficiency := MinEfficiency + rng.Float64()*(MaxEfficiency-MinEfficiency)
	return &Employee{id: id, restockAmount: amount, efficiency: efficiency}
}

func (e *Employee) ID() string          { return e.id }
func (e *Employee) Kind() ir.EntityKind { return ir.KindEmployee }

// RestockAmount returns the fixed number of units added per restock.
func (e *Employee) RestockAmount() int { return e.restockAmount }

// Efficiency returns the fixed efficiency factor.
func (e *Employee) Efficiency() float64 { return e.efficiency }

// Act handles pending messages, then with EmployeeActivity × efficiency
// probability restocks one random inventory at or below its threshold.
func (e *Employee) Act(_ context.Context, env *Env) error {
	for _, msg := range env.Bus.Poll(e.id) {
		if msg.Type != ir.MsgPurchaseComplete {
			continue
		}
		if _, err := env.Store.AdjustPerformance(e.id, PerformanceOnPurchaseNote); err != nil {
			return err
		}
	}

	if !env.chance(EmployeeActivity * e.efficiency) {
		return nil
	}

	var low []ir.Book
	for _, b := range env.Store.Books() {
		inv, ok := env.Store.Inventory(b.InventoryID)
		if ok && inv.Quantity <= inv.Threshold {
			low = append(low, b)
		}
	}
	if len(low) == 0 {
		return nil
	}
	book := low[env.Rand.Intn(len(low))]

	if err := env.Store.Restock(book.InventoryID, e.restockAmount); err != nil {
		return err
	}
	if err := env.Store.CreditRestock(e.id); err != nil {
		return err
	}
	if _, err := env.Store.AdjustPerformance(e.id, PerformanceOnRestock); err != nil {
		return err
	}
	env.Recorder.RecordRestock(e.id, book.InventoryID, e.restockAmount)
	env.notify(e.id, ir.SystemID, ir.MsgRestockComplete, ir.Object{
		"employee_id": ir.String(e.id),
		"book_id":     ir.String(book.ID),
		"amount":      ir.Int(e.restockAmount),
	})
	return nil
}

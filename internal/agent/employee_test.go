package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesim/internal/entity"
	"github.com/roach88/storesim/internal/ir"
	"github.com/roach88/storesim/internal/testutil"
)

func newEmployeeAgent(t *testing.T, f *fixture, id string) *Employee {
	t.Helper()
	require.NoError(t, f.store.CreateEmployee(id, "Lisa Clerk", "Inventory Clerk"))
	f.bus.Register(id)
	return NewEmployee(id, f.env.Rand)
}

func TestNewEmployee_ParametersInRange(t *testing.T) {
	rng := testutil.NewRand(testutil.DefaultSeed)
	for i := 0; i < 100; i++ {
		e := NewEmployee("e", rng)
		assert.GreaterOrEqual(t, e.RestockAmount(), MinRestockAmount)
		assert.LessOrEqual(t, e.RestockAmount(), MaxRestockAmount)
		assert.GreaterOrEqual(t, e.Efficiency(), MinEfficiency)
		assert.Less(t, e.Efficiency(), MaxEfficiency)
	}
}

func TestEmployee_RestocksLowInventory(t *testing.T) {
	f := newFixture(t, scripted(0))
	f.book(t, "b1", ir.Dollars(20), 12, 5)
	f.book(t, "b2", ir.Dollars(20), 2, 5)
	e := newEmployeeAgent(t, f, "e1")
	require.Equal(t, MinRestockAmount, e.RestockAmount())

	require.NoError(t, e.Act(context.Background(), f.env))

	inv, _ := f.store.InventoryOf("b2")
	assert.Equal(t, 2+MinRestockAmount, inv.Quantity)
	untouched, _ := f.store.InventoryOf("b1")
	assert.Equal(t, 12, untouched.Quantity)

	emp, _ := f.store.Employee("e1")
	assert.Equal(t, 1, emp.Restocks)
	assert.Equal(t, entity.InitialScore+PerformanceOnRestock, emp.Performance)
	assert.Equal(t, []string{entity.InventoryID("b2")}, f.recorder.restocks)

	msgs := f.bus.Poll(ir.SystemID)
	require.Len(t, msgs, 1)
	assert.Equal(t, ir.MsgRestockComplete, msgs[0].Type)
	amount, _ := msgs[0].Payload.GetInt("amount")
	assert.Equal(t, int64(MinRestockAmount), amount)
}

func TestEmployee_NothingToRestock(t *testing.T) {
	f := newFixture(t, scripted(0))
	f.book(t, "b1", ir.Dollars(20), 12, 5)
	e := newEmployeeAgent(t, f, "e1")

	require.NoError(t, e.Act(context.Background(), f.env))

	emp, _ := f.store.Employee("e1")
	assert.Zero(t, emp.Restocks)
	assert.Equal(t, entity.InitialScore, emp.Performance)
	assert.Empty(t, f.recorder.restocks)
}

func TestEmployee_InactiveDraw(t *testing.T) {
	// efficiency 0.70 gives an activity probability of 0.49
	f := newFixture(t, scripted(0, 0, 0.5))
	f.book(t, "b1", ir.Dollars(20), 1, 5)
	e := newEmployeeAgent(t, f, "e1")

	require.NoError(t, e.Act(context.Background(), f.env))

	inv, _ := f.store.InventoryOf("b1")
	assert.Equal(t, 1, inv.Quantity)
}

func TestEmployee_PurchaseNoticeRaisesPerformance(t *testing.T) {
	f := newFixture(t, scripted(0, 0, 0.99))
	e := newEmployeeAgent(t, f, "e1")
	for i := 0; i < 2; i++ {
		_, err := f.bus.Send(ir.SystemID, "e1", ir.MsgPurchaseComplete, nil)
		require.NoError(t, err)
	}
	_, err := f.bus.Send(ir.SystemID, "e1", ir.MsgDiscountOffer, nil)
	require.NoError(t, err)

	require.NoError(t, e.Act(context.Background(), f.env))

	emp, _ := f.store.Employee("e1")
	assert.Equal(t, entity.InitialScore+2*PerformanceOnPurchaseNote, emp.Performance)
}

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesim/internal/entity"
	"github.com/roach88/storesim/internal/ir"
	"github.com/roach88/storesim/internal/testutil"
)

func newStore(t *testing.T) *entity.Store {
	t.Helper()
	return entity.New(testutil.NewRand(testutil.DefaultSeed))
}

func TestClassify_LowStockClearedAfterRestock(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateBookWithStock("b1", "The Great Adventure", ir.Dollars(24.99), "John Smith", "Adventure", 2, 5))
	e := NewEngine(nil)

	e.Apply(s)
	b, _ := s.Book("b1")
	inv, _ := s.InventoryOf("b1")
	assert.Contains(t, b.Tags, ir.TagLowStock)
	assert.Contains(t, inv.Tags, ir.TagRequiresRestock)

	require.NoError(t, s.Restock(inv.ID, 20))
	e.Apply(s)

	b, _ = s.Book("b1")
	inv, _ = s.InventoryOf("b1")
	assert.Equal(t, 22, inv.Quantity)
	assert.NotContains(t, b.Tags, ir.TagLowStock)
	assert.NotContains(t, inv.Tags, ir.TagRequiresRestock)
	assert.NotContains(t, b.Tags, ir.TagOverstocked)
}

func TestClassify_PremiumActiveImpliesDiscountEligible(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateCustomer("c1", "Alice Johnson", ir.Dollars(320)))
	require.NoError(t, s.CreateBookWithStock("b1", "Tech Future", ir.Dollars(20), "Alex Tech", "Technology", 10, 5))
	_, ok, err := s.Purchase("c1", "b1")
	require.NoError(t, err)
	require.True(t, ok)

	c := Classify(s.Snapshot(0), DefaultRules())

	tags := c.Customers["c1"]
	assert.Contains(t, tags, ir.TagPremium)
	assert.Contains(t, tags, ir.TagActive)
	assert.Contains(t, tags, ir.TagDiscountEligible)
	assert.NotContains(t, tags, ir.TagLowBudget)
}

func TestClassify_BudgetBoundaries(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateCustomer("at250", "A", ir.Dollars(250)))
	require.NoError(t, s.CreateCustomer("over250", "B", ir.Dollars(250.01)))
	require.NoError(t, s.CreateCustomer("at100", "C", ir.Dollars(100)))
	require.NoError(t, s.CreateCustomer("under100", "D", ir.Dollars(99.99)))

	c := Classify(s.Snapshot(0), DefaultRules())

	assert.Empty(t, c.Customers["at250"])
	assert.Equal(t, []ir.Tag{ir.TagPremium}, c.Customers["over250"])
	assert.Empty(t, c.Customers["at100"])
	assert.Equal(t, []ir.Tag{ir.TagLowBudget}, c.Customers["under100"])
}

func TestClassify_BookRules(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateBookWithStock("pricey", "History Unveiled", ir.Dollars(32.99), "Prof. Wilson", "History", 31, 5))
	require.NoError(t, s.CreateBookWithStock("cheap", "Cooking Basics", ir.Dollars(18.99), "Chef Martinez", "Cooking", 30, 5))
	require.NoError(t, s.CreateBookWithStock("edge", "Science Explained", ir.Dollars(30), "Dr. Brown", "Science", 5, 5))

	c := Classify(s.Snapshot(0), DefaultRules())

	assert.ElementsMatch(t, []ir.Tag{ir.TagHighValue, ir.TagOverstocked}, c.Books["pricey"])
	assert.Empty(t, c.Books["cheap"])
	assert.Empty(t, c.Books["edge"])
	assert.Equal(t, []ir.Tag{ir.TagRequiresRestock}, c.Inventories[entity.InventoryID("edge")])
}

func TestClassify_HighPerformingNeedsStockedManagedInventory(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateEmployee("e1", "Sarah Manager", "Store Manager"))
	require.NoError(t, s.CreateEmployee("e2", "Mike Associate", "Sales Associate"))
	require.NoError(t, s.CreateEmployee("e3", "Lisa Clerk", "Inventory Clerk"))
	require.NoError(t, s.CreateBookWithStock("low", "Love in Paris", ir.Dollars(19.99), "Marie Claire", "Romance", 3, 5))
	require.NoError(t, s.CreateBookWithStock("empty", "Art History", ir.Dollars(27.99), "Sofia Art", "Art", 0, 5))
	require.NoError(t, s.CreateBookWithStock("full", "Psychology Today", ir.Dollars(25.99), "Dr. Emma Clark", "Psychology", 20, 5))
	require.NoError(t, s.AssignManager("e1", "low"))
	require.NoError(t, s.AssignManager("e2", "empty"))
	require.NoError(t, s.AssignManager("e3", "full"))

	c := Classify(s.Snapshot(0), DefaultRules())

	assert.Equal(t, []ir.Tag{ir.TagHighPerforming}, c.Employees["e1"])
	assert.Empty(t, c.Employees["e2"], "requires restock but nothing on hand")
	assert.Empty(t, c.Employees["e3"], "inventory does not require restock")
}

func TestEngine_Idempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateCustomer("c1", "Grace Lee", ir.Dollars(260)))
	require.NoError(t, s.CreateCustomer("c2", "Henry Taylor", ir.Dollars(40)))
	require.NoError(t, s.CreateEmployee("e1", "Sarah Manager", "Store Manager"))
	require.NoError(t, s.CreateBook("b1", "Mystery of the Night", ir.Dollars(19.99), "Jane Doe", "Mystery"))
	require.NoError(t, s.CreateBookWithStock("b2", "Tech Future", ir.Dollars(35.99), "Alex Tech", "Technology", 1, 4))
	require.NoError(t, s.AssignManager("e1", "b2"))
	_, _, err := s.Purchase("c1", "b1")
	require.NoError(t, err)

	e := NewEngine(nil)
	first := e.Apply(s)
	snap1 := s.Snapshot(0)
	second := e.Apply(s)
	snap2 := s.Snapshot(0)

	assert.Equal(t, first, second)
	assert.Equal(t, snap1, snap2)
	assert.Equal(t, 2, e.Runs())
}

func TestEngine_StaleTagsCleared(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateCustomer("c1", "Ivy Chen", ir.Dollars(251)))
	require.NoError(t, s.CreateBookWithStock("b1", "History Unveiled", ir.Dollars(32.99), "Prof. Wilson", "History", 10, 5))
	e := NewEngine(nil)

	e.Apply(s)
	c, _ := s.Customer("c1")
	assert.Equal(t, []ir.Tag{ir.TagPremium}, c.Tags)

	_, ok, err := s.Purchase("c1", "b1")
	require.NoError(t, err)
	require.True(t, ok)
	e.Apply(s)

	c, _ = s.Customer("c1")
	assert.Equal(t, []ir.Tag{ir.TagActive}, c.Tags, "budget fell to 218.01")
}

func TestEngine_Counts(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateCustomer("c1", "Jack Rodriguez", ir.Dollars(50)))
	require.NoError(t, s.CreateCustomer("c2", "Alice Johnson", ir.Dollars(60)))
	require.NoError(t, s.CreateBookWithStock("b1", "The Great Adventure", ir.Dollars(24.99), "John Smith", "Adventure", 2, 5))
	e := NewEngine(nil)

	before := e.Counts()
	assert.Len(t, before, len(ir.AllTags()))
	assert.Zero(t, before[ir.TagLowBudget])

	e.Apply(s)
	counts := e.Counts()
	assert.Equal(t, 2, counts[ir.TagLowBudget])
	assert.Equal(t, 1, counts[ir.TagLowStock])
	assert.Equal(t, 1, counts[ir.TagRequiresRestock])
	assert.Equal(t, 0, counts[ir.TagPremium])
	assert.Equal(t, s.TagCounts(), counts)
}

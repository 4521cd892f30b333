package rules

import (
	"slices"

	"github.com/roach88/storesim/internal/ir"
)

// Thresholds used by the default rules.
const (
	PremiumBudget      ir.Cents = 25000
	LowBudget          ir.Cents = 10000
	HighValuePrice     ir.Cents = 3000
	LowStockQuantity            = 5
	OverstockQuantity           = 30
)

// Pass is the view a rule condition evaluates against: the snapshot plus
// the tags assigned so far in this pass.
type Pass struct {
	snap        ir.Snapshot
	inventories map[string]ir.Inventory
	result      ir.Classification
}

// Inventory returns the inventory with the given id.
func (p *Pass) Inventory(id string) ir.Inventory {
	return p.inventories[id]
}

// Tagged reports whether the entity already carries tag in this pass.
func (p *Pass) Tagged(kind ir.EntityKind, id string, tag ir.Tag) bool {
	return ir.HasTag(p.result.Of(kind)[id], tag)
}

// Rule assigns Tag to every entity of one kind whose condition holds.
// Exactly one of the condition fields is set, matching Kind.
type Rule struct {
	Name string
	Tag  ir.Tag
	Kind ir.EntityKind

	Customer  func(p *Pass, c ir.Customer) bool
	Employee  func(p *Pass, e ir.Employee) bool
	Book      func(p *Pass, b ir.Book) bool
	Inventory func(p *Pass, inv ir.Inventory) bool
}

// DefaultRules returns the nine classification rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "premium_customer", Tag: ir.TagPremium, Kind: ir.KindCustomer,
			Customer: func(_ *Pass, c ir.Customer) bool { return c.Budget > PremiumBudget },
		},
		{
			Name: "low_budget_customer", Tag: ir.TagLowBudget, Kind: ir.KindCustomer,
			Customer: func(_ *Pass, c ir.Customer) bool { return c.Budget < LowBudget },
		},
		{
			Name: "high_value_book", Tag: ir.TagHighValue, Kind: ir.KindBook,
			Book: func(_ *Pass, b ir.Book) bool { return b.Price > HighValuePrice },
		},
		{
			Name: "low_stock_book", Tag: ir.TagLowStock, Kind: ir.KindBook,
			Book: func(p *Pass, b ir.Book) bool { return p.Inventory(b.InventoryID).Quantity < LowStockQuantity },
		},
		{
			Name: "overstocked_book", Tag: ir.TagOverstocked, Kind: ir.KindBook,
			Book: func(p *Pass, b ir.Book) bool { return p.Inventory(b.InventoryID).Quantity > OverstockQuantity },
		},
		{
			Name: "active_customer", Tag: ir.TagActive, Kind: ir.KindCustomer,
			Customer: func(_ *Pass, c ir.Customer) bool { return len(c.Purchases) > 0 },
		},
		{
			Name: "requires_restock", Tag: ir.TagRequiresRestock, Kind: ir.KindInventory,
			Inventory: func(_ *Pass, inv ir.Inventory) bool { return inv.Quantity <= inv.Threshold },
		},
		{
			Name: "discount_eligible_customer", Tag: ir.TagDiscountEligible, Kind: ir.KindCustomer,
			Customer: func(p *Pass, c ir.Customer) bool {
				return p.Tagged(ir.KindCustomer, c.ID, ir.TagPremium) && p.Tagged(ir.KindCustomer, c.ID, ir.TagActive)
			},
		},
		{
			Name: "high_performing_employee", Tag: ir.TagHighPerforming, Kind: ir.KindEmployee,
			Employee: func(p *Pass, e ir.Employee) bool {
				return slices.ContainsFunc(e.Manages, func(invID string) bool {
					return p.Tagged(ir.KindInventory, invID, ir.TagRequiresRestock) && p.Inventory(invID).Quantity > 0
				})
			},
		},
	}
}

// Classify evaluates rules against snap and returns the resulting tags.
// Every entity in snap appears in the result, possibly with no tags.
func Classify(snap ir.Snapshot, rules []Rule) ir.Classification {
	p := &Pass{
		snap:        snap,
		inventories: make(map[string]ir.Inventory, len(snap.Inventories)),
		result:      ir.NewClassification(),
	}
	for _, inv := range snap.Inventories {
		p.inventories[inv.ID] = inv
		p.result.Inventories[inv.ID] = nil
	}
	for _, c := range snap.Customers {
		p.result.Customers[c.ID] = nil
	}
	for _, e := range snap.Employees {
		p.result.Employees[e.ID] = nil
	}
	for _, b := range snap.Books {
		p.result.Books[b.ID] = nil
	}

	for _, r := range rules {
		r.apply(p)
	}
	return p.result
}

func (r Rule) apply(p *Pass) {
	tag := func(byID map[string][]ir.Tag, id string) {
		if !ir.HasTag(byID[id], r.Tag) {
			byID[id] = append(byID[id], r.Tag)
		}
	}
	switch r.Kind {
	case ir.KindCustomer:
		for _, c := range p.snap.Customers {
			if r.Customer(p, c) {
				tag(p.result.Customers, c.ID)
			}
		}
	case ir.KindEmployee:
		for _, e := range p.snap.Employees {
			if r.Employee(p, e) {
				tag(p.result.Employees, e.ID)
			}
		}
	case ir.KindBook:
		for _, b := range p.snap.Books {
			if r.Book(p, b) {
				tag(p.result.Books, b.ID)
			}
		}
	case ir.KindInventory:
		for _, inv := range p.snap.Inventories {
			if r.Inventory(p, inv) {
				tag(p.result.Inventories, inv.ID)
			}
		}
	}
}

package entity

import (
	"slices"

	"github.com/roach88/storesim/internal/ir"
)

// Customer returns a copy of the customer with the given id.
func (s *Store) Customer(id string) (ir.Customer, bool) {
	c, ok := s.customers[id]
	if !ok {
		return ir.Customer{}, false
	}
	return copyCustomer(c), true
}

// Employee returns a copy of the employee with the given id.
func (s *Store) Employee(id string) (ir.Employee, bool) {
	e, ok := s.employees[id]
	if !ok {
		return ir.Employee{}, false
	}
	return copyEmployee(e), true
}

// Book returns a copy of the book with the given id.
func (s *Store) Book(id string) (ir.Book, bool) {
	b, ok := s.books[id]
	if !ok {
		return ir.Book{}, false
	}
	return copyBook(b), true
}

// Inventory returns a copy of the inventory with the given id.
func (s *Store) Inventory(id string) (ir.Inventory, bool) {
	inv, ok := s.inventories[id]
	if !ok {
		return ir.Inventory{}, false
	}
	return copyInventory(inv), true
}

// InventoryOf returns a copy of the inventory owned by bookID.
func (s *Store) InventoryOf(bookID string) (ir.Inventory, bool) {
	b, ok := s.books[bookID]
	if !ok {
		return ir.Inventory{}, false
	}
	return s.Inventory(b.InventoryID)
}

// Customers lists customers in creation order.
func (s *Store) Customers() []ir.Customer {
	out := make([]ir.Customer, 0, len(s.customerOrder))
	for _, id := range s.customerOrder {
		out = append(out, copyCustomer(s.customers[id]))
	}
	return out
}

// Employees lists employees in creation order.
func (s *Store) Employees() []ir.Employee {
	out := make([]ir.Employee, 0, len(s.employeeOrder))
	for _, id := range s.employeeOrder {
		out = append(out, copyEmployee(s.employees[id]))
	}
	return out
}

// Books lists books in creation order.
func (s *Store) Books() []ir.Book {
	out := make([]ir.Book, 0, len(s.bookOrder))
	for _, id := range s.bookOrder {
		out = append(out, copyBook(s.books[id]))
	}
	return out
}

// Inventories lists inventories in creation order.
func (s *Store) Inventories() []ir.Inventory {
	out := make([]ir.Inventory, 0, len(s.inventoryOrder))
	for _, id := range s.inventoryOrder {
		out = append(out, copyInventory(s.inventories[id]))
	}
	return out
}

// Transactions returns the transaction log in append order.
func (s *Store) Transactions() []ir.Transaction {
	return slices.Clone(s.transactions)
}

// TransactionCount returns the number of recorded transactions.
func (s *Store) TransactionCount() int {
	return len(s.transactions)
}

// TagCounts counts entities carrying each tag. Every tag is present in
// the result, with zero when unused.
func (s *Store) TagCounts() map[ir.Tag]int {
	counts := make(map[ir.Tag]int, len(ir.AllTags()))
	for _, t := range ir.AllTags() {
		counts[t] = 0
	}
	add := func(tags []ir.Tag) {
		for _, t := range tags {
			counts[t]++
		}
	}
	for _, c := range s.customers {
		add(c.Tags)
	}
	for _, e := range s.employees {
		add(e.Tags)
	}
	for _, b := range s.books {
		add(b.Tags)
	}
	for _, inv := range s.inventories {
		add(inv.Tags)
	}
	return counts
}

// Snapshot returns an immutable copy of all entities and relations.
func (s *Store) Snapshot(step int64) ir.Snapshot {
	return ir.Snapshot{
		Step:         step,
		Customers:    s.Customers(),
		Employees:    s.Employees(),
		Books:        s.Books(),
		Inventories:  s.Inventories(),
		Transactions: s.Transactions(),
	}
}

func copyCustomer(c *ir.Customer) ir.Customer {
	out := *c
	out.Purchases = slices.Clone(c.Purchases)
	out.Tags = slices.Clone(c.Tags)
	return out
}

func copyEmployee(e *ir.Employee) ir.Employee {
	out := *e
	out.Manages = slices.Clone(e.Manages)
	out.Tags = slices.Clone(e.Tags)
	return out
}

func copyBook(b *ir.Book) ir.Book {
	out := *b
	out.Tags = slices.Clone(b.Tags)
	return out
}

func copyInventory(inv *ir.Inventory) ir.Inventory {
	out := *inv
	out.Tags = slices.Clone(inv.Tags)
	return out
}

package engine

import (
	"fmt"

	"github.com/roach88/storesim/internal/ir"
)

// CatalogEntry describes one title in the store's catalog.
type CatalogEntry struct {
	Title  string
	Author string
	Genre  string
	Price  ir.Cents
}

// StaffEntry is one (name, role) pair in the employee pool.
type StaffEntry struct {
	Name string
	Role string
}

// CustomerNames is the pool customer names are drawn from, cycling.
var CustomerNames = []string{
	"Alice Johnson", "Bob Wilson", "Carol Smith", "David Brown", "Emma Davis",
	"Frank Miller", "Grace Taylor", "Henry Garcia", "Ivy Martinez", "Jack Rodriguez",
}

// Staff is the pool employees are drawn from, cycling.
var Staff = []StaffEntry{
	{Name: "Sarah Manager", Role: "Store Manager"},
	{Name: "Mike Associate", Role: "Sales Associate"},
	{Name: "Lisa Clerk", Role: "Inventory Clerk"},
}

// Catalog is the ten-title catalog books are drawn from, cycling.
var Catalog = []CatalogEntry{
	{Title: "The Great Adventure", Author: "John Smith", Genre: "Adventure", Price: 2499},
	{Title: "Mystery of the Lost City", Author: "Jane Doe", Genre: "Mystery", Price: 1999},
	{Title: "Science and Wonder", Author: "Dr. Alan Brown", Genre: "Science", Price: 3499},
	{Title: "Fantasy Realms", Author: "Sarah Wilson", Genre: "Fantasy", Price: 2299},
	{Title: "Modern Philosophy", Author: "Prof. David Lee", Genre: "Philosophy", Price: 2999},
	{Title: "Art Through the Ages", Author: "Maria Garcia", Genre: "Art", Price: 3999},
	{Title: "Digital Revolution", Author: "Tech Expert", Genre: "Technology", Price: 2799},
	{Title: "Classic Literature", Author: "Various Authors", Genre: "Literature", Price: 1699},
	{Title: "Space Exploration", Author: "NASA Scientists", Genre: "Science", Price: 3199},
	{Title: "Psychology Today", Author: "Dr. Emma Clark", Genre: "Psychology", Price: 2599},
}

// CustomerName returns the i-th customer name. Past the end of the pool
// names repeat with a numeric suffix: "Alice Johnson 2".
func CustomerName(i int) string {
	name := CustomerNames[i%len(CustomerNames)]
	if i >= len(CustomerNames) {
		name = fmt.Sprintf("%s %d", name, i/len(CustomerNames)+1)
	}
	return name
}

// StaffMember returns the i-th employee, suffixed like CustomerName.
func StaffMember(i int) StaffEntry {
	s := Staff[i%len(Staff)]
	if i >= len(Staff) {
		s.Name = fmt.Sprintf("%s %d", s.Name, i/len(Staff)+1)
	}
	return s
}

// CatalogBook returns the i-th catalog entry. Past the end of the catalog
// titles repeat as volumes: "The Great Adventure Vol 2".
func CatalogBook(i int) CatalogEntry {
	b := Catalog[i%len(Catalog)]
	if i >= len(Catalog) {
		b.Title = fmt.Sprintf("%s Vol %d", b.Title, i/len(Catalog)+1)
	}
	return b
}

// Entity ids share one numbering sequence across kinds: customers first,
// then employees, then books.
func customerID(i int) string           { return fmt.Sprintf("customer_%d", i) }
func employeeID(p Params, i int) string { return fmt.Sprintf("employee_%d", p.Customers+i) }
func bookID(p Params, i int) string {
	return fmt.Sprintf("book_%d", p.Customers+p.Employees+i)
}

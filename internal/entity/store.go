package entity

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/roach88/storesim/internal/ir"
)

// Initial stock ranges for CreateBook, inclusive.
const (
	MinInitialStock     = 15
	MaxInitialStock     = 35
	MinRestockThreshold = 3
	MaxRestockThreshold = 8

	// InitialScore is the starting satisfaction and performance score.
	InitialScore = 50
)

// Store holds customers, employees, books, inventories and transactions.
// Enumeration order is creation order.
type Store struct {
	rng  *rand.Rand
	now  func() time.Time
	step func() int64

	customers   map[string]*ir.Customer
	employees   map[string]*ir.Employee
	books       map[string]*ir.Book
	inventories map[string]*ir.Inventory

	customerOrder  []string
	employeeOrder  []string
	bookOrder      []string
	inventoryOrder []string

	transactions []ir.Transaction
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the wall-clock source for transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithStepSource sets the function reporting the current simulation step,
// recorded on each transaction.
func WithStepSource(step func() int64) Option {
	return func(s *Store) {
		s.step = step
	}
}

// New creates an empty store. rng draws the initial stock of books
// created with CreateBook.
func New(rng *rand.Rand, opts ...Option) *Store {
	s := &Store{
		rng:         rng,
		now:         time.Now,
		step:        func() int64 { return 0 },
		customers:   make(map[string]*ir.Customer),
		employees:   make(map[string]*ir.Employee),
		books:       make(map[string]*ir.Book),
		inventories: make(map[string]*ir.Inventory),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InventoryID returns the id of the inventory paired with bookID.
func InventoryID(bookID string) string {
	return bookID + "_inventory"
}

// CreateCustomer adds a customer with satisfaction at InitialScore.
func (s *Store) CreateCustomer(id, name string, budget ir.Cents) error {
	if _, exists := s.customers[id]; exists {
		return &DuplicateIDError{Kind: ir.KindCustomer, ID: id}
	}
	if budget < 0 {
		return fmt.Errorf("customer %q budget %s: %w", id, budget, ErrInvalidAmount)
	}
	s.customers[id] = &ir.Customer{
		ID:           id,
		Name:         name,
		Budget:       budget,
		Satisfaction: InitialScore,
	}
	s.customerOrder = append(s.customerOrder, id)
	return nil
}

// CreateEmployee adds an employee with performance at InitialScore.
func (s *Store) CreateEmployee(id, name, role string) error {
	if _, exists := s.employees[id]; exists {
		return &DuplicateIDError{Kind: ir.KindEmployee, ID: id}
	}
	s.employees[id] = &ir.Employee{
		ID:          id,
		Name:        name,
		Role:        role,
		Performance: InitialScore,
	}
	s.employeeOrder = append(s.employeeOrder, id)
	return nil
}

// CreateBook adds a book and its inventory. Initial quantity and restock
// threshold are drawn from the store's generator.
func (s *Store) CreateBook(id, title string, price ir.Cents, author, genre string) error {
	if _, exists := s.books[id]; exists {
		return &DuplicateIDError{Kind: ir.KindBook, ID: id}
	}
	quantity := MinInitialStock + s.rng.Intn(MaxInitialStock-MinInitialStock+1)
	threshold := MinRestockThreshold + s.rng.Intn(MaxRestockThreshold-MinRestockThreshold+1)
	return s.CreateBookWithStock(id, title, price, author, genre, quantity, threshold)
}

// CreateBookWithStock adds a book and its inventory with explicit stock.
func (s *Store) CreateBookWithStock(id, title string, price ir.Cents, author, genre string, quantity, threshold int) error {
	if _, exists := s.books[id]; exists {
		return &DuplicateIDError{Kind: ir.KindBook, ID: id}
	}
	invID := InventoryID(id)
	if _, exists := s.inventories[invID]; exists {
		return &DuplicateIDError{Kind: ir.KindInventory, ID: invID}
	}
	if price <= 0 {
		return fmt.Errorf("book %q price %s: %w", id, price, ErrInvalidAmount)
	}
	if quantity < 0 || threshold < 0 {
		return fmt.Errorf("book %q stock %d/%d: %w", id, quantity, threshold, ErrInvalidAmount)
	}

	s.books[id] = &ir.Book{
		ID:          id,
		Title:       title,
		Author:      author,
		Genre:       genre,
		Price:       price,
		BasePrice:   price,
		InventoryID: invID,
	}
	s.inventories[invID] = &ir.Inventory{
		ID:        invID,
		BookID:    id,
		Quantity:  quantity,
		Threshold: threshold,
	}
	s.bookOrder = append(s.bookOrder, id)
	s.inventoryOrder = append(s.inventoryOrder, invID)
	return nil
}

// AssignManager records that employeeID manages bookID's inventory.
// Assigning the same pair twice is a no-op.
func (s *Store) AssignManager(employeeID, bookID string) error {
	e, ok := s.employees[employeeID]
	if !ok {
		return &NotFoundError{Kind: ir.KindEmployee, ID: employeeID}
	}
	b, ok := s.books[bookID]
	if !ok {
		return &NotFoundError{Kind: ir.KindBook, ID: bookID}
	}
	if !slices.Contains(e.Manages, b.InventoryID) {
		e.Manages = append(e.Manages, b.InventoryID)
	}
	return nil
}

// Purchase sells one copy of bookID to customerID. It succeeds only when
// the book is in stock and the customer can afford the current price; on
// success it debits the budget, decrements stock, records the purchase
// and appends a Transaction. On an expected rejection it changes nothing
// and returns ok=false with a nil error. An error means an unknown id.
func (s *Store) Purchase(customerID, bookID string) (ir.Transaction, bool, error) {
	c, ok := s.customers[customerID]
	if !ok {
		return ir.Transaction{}, false, &NotFoundError{Kind: ir.KindCustomer, ID: customerID}
	}
	b, ok := s.books[bookID]
	if !ok {
		return ir.Transaction{}, false, &NotFoundError{Kind: ir.KindBook, ID: bookID}
	}
	inv := s.inventories[b.InventoryID]

	if inv.Quantity <= 0 || c.Budget < b.Price {
		return ir.Transaction{}, false, nil
	}

	inv.Quantity--
	c.Budget -= b.Price
	c.Purchases = append(c.Purchases, b.ID)
	txn := ir.Transaction{
		Seq:        int64(len(s.transactions)) + 1,
		CustomerID: c.ID,
		BookID:     b.ID,
		Amount:     b.Price,
		Step:       s.step(),
		Timestamp:  s.now(),
	}
	s.transactions = append(s.transactions, txn)
	return txn, true, nil
}

// Restock adds amount units to an inventory.
func (s *Store) Restock(inventoryID string, amount int) error {
	inv, ok := s.inventories[inventoryID]
	if !ok {
		return &NotFoundError{Kind: ir.KindInventory, ID: inventoryID}
	}
	if amount <= 0 {
		return fmt.Errorf("restock %q by %d: %w", inventoryID, amount, ErrInvalidAmount)
	}
	inv.Quantity += amount
	return nil
}

// AdjustPrice sets a book's current price. Bounds relative to the base
// price are the caller's responsibility.
func (s *Store) AdjustPrice(bookID string, price ir.Cents) error {
	b, ok := s.books[bookID]
	if !ok {
		return &NotFoundError{Kind: ir.KindBook, ID: bookID}
	}
	if price <= 0 {
		return fmt.Errorf("book %q price %s: %w", bookID, price, ErrInvalidAmount)
	}
	b.Price = price
	return nil
}

// AdjustSatisfaction adds delta to a customer's satisfaction, clamped to
// [0,100], and returns the new score.
func (s *Store) AdjustSatisfaction(customerID string, delta int) (int, error) {
	c, ok := s.customers[customerID]
	if !ok {
		return 0, &NotFoundError{Kind: ir.KindCustomer, ID: customerID}
	}
	c.Satisfaction = clampScore(c.Satisfaction + delta)
	return c.Satisfaction, nil
}

// AdjustPerformance adds delta to an employee's performance, clamped to
// [0,100], and returns the new score.
func (s *Store) AdjustPerformance(employeeID string, delta int) (int, error) {
	e, ok := s.employees[employeeID]
	if !ok {
		return 0, &NotFoundError{Kind: ir.KindEmployee, ID: employeeID}
	}
	e.Performance = clampScore(e.Performance + delta)
	return e.Performance, nil
}

// CreditRestock increments an employee's completed restock count.
func (s *Store) CreditRestock(employeeID string) error {
	e, ok := s.employees[employeeID]
	if !ok {
		return &NotFoundError{Kind: ir.KindEmployee, ID: employeeID}
	}
	e.Restocks++
	return nil
}

// ApplyClassification replaces every entity's tag set with the one in c.
// Entities absent from c end up with no tags.
func (s *Store) ApplyClassification(c ir.Classification) {
	for id, cust := range s.customers {
		cust.Tags = ir.SortTags(c.Customers[id])
	}
	for id, e := range s.employees {
		e.Tags = ir.SortTags(c.Employees[id])
	}
	for id, b := range s.books {
		b.Tags = ir.SortTags(c.Books[id])
	}
	for id, inv := range s.inventories {
		inv.Tags = ir.SortTags(c.Inventories[id])
	}
}

func clampScore(v int) int {
	return max(0, min(100, v))
}

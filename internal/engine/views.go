package engine

import (
	"github.com/roach88/storesim/internal/bus"
	"github.com/roach88/storesim/internal/ir"
)

// CustomerView is the display row for a customer.
type CustomerView struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Budget          ir.Cents `json:"budget"`
	Satisfaction    int      `json:"satisfaction"`
	PurchasedTitles []string `json:"purchased_titles"`
	Tags            []ir.Tag `json:"tags"`
}

// EmployeeView is the display row for an employee.
type EmployeeView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Restocks    int      `json:"restocks"`
	Performance int      `json:"performance"`
	Tags        []ir.Tag `json:"tags"`
}

// BookView is the display row for a book. Tags include its inventory's.
type BookView struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Genre  string   `json:"genre"`
	Price  ir.Cents `json:"price"`
	Stock  int      `json:"stock"`
	Tags   []ir.Tag `json:"tags"`
}

// TransactionView is the display row for a transaction.
type TransactionView struct {
	Seq      int64    `json:"seq"`
	Customer string   `json:"customer"`
	Book     string   `json:"book"`
	Amount   ir.Cents `json:"amount"`
	Step     int64    `json:"step"`
}

// Params returns the parameters the simulation was built with.
func (s *Simulation) Params() Params { return s.params }

// Seed returns the seed in use, resolved if Params.Seed was 0.
func (s *Simulation) Seed() int64 { return s.seed }

// State returns the lifecycle state.
func (s *Simulation) State() State { return s.state }

// StepCount returns the number of completed steps.
func (s *Simulation) StepCount() int64 { return s.step }

// TotalRevenue returns the sum of all purchase amounts.
func (s *Simulation) TotalRevenue() ir.Cents { return s.totals.revenue }

// TotalTransactions returns the number of successful purchases.
func (s *Simulation) TotalTransactions() int { return s.totals.transactions }

// TotalRestocks returns the number of completed restocks.
func (s *Simulation) TotalRestocks() int { return s.totals.restocks }

// AvgCustomerSatisfaction returns mean satisfaction in [0,100], or 0 with
// no customers.
func (s *Simulation) AvgCustomerSatisfaction() float64 { return s.totals.avgSatisfaction }

// AvgEmployeePerformance returns mean performance in [0,100], or 0 with no
// employees.
func (s *Simulation) AvgEmployeePerformance() float64 { return s.totals.avgPerformance }

// ClassificationCounts returns the number of entities carrying each tag.
func (s *Simulation) ClassificationCounts() map[ir.Tag]int { return s.store.TagCounts() }

// MessageStats returns aggregate message bus statistics.
func (s *Simulation) MessageStats() bus.Stats { return s.bus.Stats() }

// AgentCount returns the number of scheduled agents.
func (s *Simulation) AgentCount() int { return s.scheduler.Len() }

// Snapshot returns an immutable copy of all entities and relations.
func (s *Simulation) Snapshot() ir.Snapshot { return s.store.Snapshot(s.step) }

// SnapshotHash returns the content hash of the current snapshot.
func (s *Simulation) SnapshotHash() (string, error) { return ir.SnapshotHash(s.Snapshot()) }

// Customers lists customers with their purchased titles.
func (s *Simulation) Customers() []CustomerView {
	titles := s.titles()
	customers := s.store.Customers()
	out := make([]CustomerView, len(customers))
	for i, c := range customers {
		purchased := make([]string, len(c.Purchases))
		for j, id := range c.Purchases {
			purchased[j] = titles[id]
		}
		out[i] = CustomerView{
			ID:              c.ID,
			Name:            c.Name,
			Budget:          c.Budget,
			Satisfaction:    c.Satisfaction,
			PurchasedTitles: purchased,
			Tags:            c.Tags,
		}
	}
	return out
}

// Employees lists employees.
func (s *Simulation) Employees() []EmployeeView {
	employees := s.store.Employees()
	out := make([]EmployeeView, len(employees))
	for i, e := range employees {
		out[i] = EmployeeView{
			ID:          e.ID,
			Name:        e.Name,
			Role:        e.Role,
			Restocks:    e.Restocks,
			Performance: e.Performance,
			Tags:        e.Tags,
		}
	}
	return out
}

// Books lists books with their current stock.
func (s *Simulation) Books() []BookView {
	books := s.store.Books()
	out := make([]BookView, len(books))
	for i, b := range books {
		inv, _ := s.store.Inventory(b.InventoryID)
		out[i] = BookView{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
			Genre:  b.Genre,
			Price:  b.Price,
			Stock:  inv.Quantity,
			Tags:   ir.SortTags(append(b.Tags, inv.Tags...)),
		}
	}
	return out
}

// Transactions lists transactions with customer names and book titles.
func (s *Simulation) Transactions() []TransactionView {
	titles := s.titles()
	names := make(map[string]string)
	for _, c := range s.store.Customers() {
		names[c.ID] = c.Name
	}
	txns := s.store.Transactions()
	out := make([]TransactionView, len(txns))
	for i, t := range txns {
		out[i] = TransactionView{
			Seq:      t.Seq,
			Customer: names[t.CustomerID],
			Book:     titles[t.BookID],
			Amount:   t.Amount,
			Step:     t.Step,
		}
	}
	return out
}

func (s *Simulation) titles() map[string]string {
	titles := make(map[string]string)
	for _, b := range s.store.Books() {
		titles[b.ID] = b.Title
	}
	return titles
}

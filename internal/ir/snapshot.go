package ir

// Snapshot is an immutable copy of every entity and relation at one step.
type Snapshot struct {
	Step         int64         `json:"step"`
	Customers    []Customer    `json:"customers"`
	Employees    []Employee    `json:"employees"`
	Books        []Book        `json:"books"`
	Inventories  []Inventory   `json:"inventories"`
	Transactions []Transaction `json:"transactions"`
}

// Inventory returns the inventory with the given id.
func (s Snapshot) Inventory(id string) (Inventory, bool) {
	for _, inv := range s.Inventories {
		if inv.ID == id {
			return inv, true
		}
	}
	return Inventory{}, false
}

// Object converts the snapshot to its hashed form. Transaction timestamps
// are wall-clock values and are left out.
func (s Snapshot) Object() Object {
	customers := make(Array, len(s.Customers))
	for i, c := range s.Customers {
		customers[i] = Object{
			"id":           String(c.ID),
			"name":         String(c.Name),
			"budget":       Int(c.Budget),
			"satisfaction": Int(c.Satisfaction),
			"purchases":    StringArray(c.Purchases),
			"tags":         StringArray(c.Tags),
		}
	}
	employees := make(Array, len(s.Employees))
	for i, e := range s.Employees {
		employees[i] = Object{
			"id":          String(e.ID),
			"name":        String(e.Name),
			"role":        String(e.Role),
			"performance": Int(e.Performance),
			"restocks":    Int(e.Restocks),
			"manages":     StringArray(e.Manages),
			"tags":        StringArray(e.Tags),
		}
	}
	books := make(Array, len(s.Books))
	for i, b := range s.Books {
		books[i] = Object{
			"id":           String(b.ID),
			"title":        String(b.Title),
			"author":       String(b.Author),
			"genre":        String(b.Genre),
			"price":        Int(b.Price),
			"base_price":   Int(b.BasePrice),
			"inventory_id": String(b.InventoryID),
			"tags":         StringArray(b.Tags),
		}
	}
	inventories := make(Array, len(s.Inventories))
	for i, inv := range s.Inventories {
		inventories[i] = Object{
			"id":        String(inv.ID),
			"book_id":   String(inv.BookID),
			"quantity":  Int(inv.Quantity),
			"threshold": Int(inv.Threshold),
			"tags":      StringArray(inv.Tags),
		}
	}
	transactions := make(Array, len(s.Transactions))
	for i, t := range s.Transactions {
		transactions[i] = Object{
			"seq":         Int(t.Seq),
			"customer_id": String(t.CustomerID),
			"book_id":     String(t.BookID),
			"amount":      Int(t.Amount),
			"step":        Int(t.Step),
		}
	}
	return Object{
		"step":         Int(s.Step),
		"customers":    customers,
		"employees":    employees,
		"books":        books,
		"inventories":  inventories,
		"transactions": transactions,
	}
}

package ir

// Classification is the full tag assignment produced by one rule pass,
// keyed by entity id within each kind.
type Classification struct {
	Customers   map[string][]Tag `json:"customers"`
	Employees   map[string][]Tag `json:"employees"`
	Books       map[string][]Tag `json:"books"`
	Inventories map[string][]Tag `json:"inventories"`
}

// NewClassification returns an empty classification.
func NewClassification() Classification {
	return Classification{
		Customers:   make(map[string][]Tag),
		Employees:   make(map[string][]Tag),
		Books:       make(map[string][]Tag),
		Inventories: make(map[string][]Tag),
	}
}

// Of returns the tag map for kind, or nil for kinds that carry no tags.
func (c Classification) Of(kind EntityKind) map[string][]Tag {
	switch kind {
	case KindCustomer:
		return c.Customers
	case KindEmployee:
		return c.Employees
	case KindBook:
		return c.Books
	case KindInventory:
		return c.Inventories
	}
	return nil
}

// Counts returns the number of entities carrying each tag. Every tag is
// present in the result.
func (c Classification) Counts() map[Tag]int {
	counts := make(map[Tag]int, len(AllTags()))
	for _, t := range AllTags() {
		counts[t] = 0
	}
	for _, byID := range []map[string][]Tag{c.Customers, c.Employees, c.Books, c.Inventories} {
		for _, tags := range byID {
			for _, t := range tags {
				counts[t]++
			}
		}
	}
	return counts
}

package ir

import (
	"slices"
	"time"
)

// SystemID is the mailbox owned by the orchestrator.
const SystemID = "system"

// Tag is a derived classification label assigned by the rule engine.
type Tag string

const (
	TagPremium          Tag = "premium"
	TagLowBudget        Tag = "low_budget"
	TagHighValue        Tag = "high_value"
	TagLowStock         Tag = "low_stock"
	TagOverstocked      Tag = "overstocked"
	TagActive           Tag = "active"
	TagRequiresRestock  Tag = "requires_restock"
	TagDiscountEligible Tag = "discount_eligible"
	TagHighPerforming   Tag = "high_performing"
)

// AllTags lists every tag in rule order.
func AllTags() []Tag {
	return []Tag{
		TagPremium, TagLowBudget, TagHighValue, TagLowStock, TagOverstocked,
		TagActive, TagRequiresRestock, TagDiscountEligible, TagHighPerforming,
	}
}

// HasTag reports whether tags contains t.
func HasTag(tags []Tag, t Tag) bool {
	return slices.Contains(tags, t)
}

// SortTags returns a sorted, de-duplicated copy of tags.
func SortTags(tags []Tag) []Tag {
	out := slices.Clone(tags)
	slices.Sort(out)
	return slices.Compact(out)
}

// EntityKind names a kind of business record.
type EntityKind string

const (
	KindCustomer    EntityKind = "customer"
	KindEmployee    EntityKind = "employee"
	KindBook        EntityKind = "book"
	KindInventory   EntityKind = "inventory"
	KindTransaction EntityKind = "transaction"
)

// Customer is a shopper with a budget and a purchase history.
type Customer struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Budget       Cents    `json:"budget"`
	Satisfaction int      `json:"satisfaction"`
	Purchases    []string `json:"purchases"` // book ids, purchase order
	Tags         []Tag    `json:"tags"`
}

// Employee restocks inventories it manages or finds low.
type Employee struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Performance int      `json:"performance"`
	Restocks    int      `json:"restocks"`
	Manages     []string `json:"manages"` // inventory ids
	Tags        []Tag    `json:"tags"`
}

// Book is a catalog item. BasePrice never changes after creation.
type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Price       Cents  `json:"price"`
	BasePrice   Cents  `json:"base_price"`
	InventoryID string `json:"inventory_id"`
	Tags        []Tag  `json:"tags"`
}

// Inventory is the stock record owned by exactly one Book.
type Inventory struct {
	ID        string `json:"id"`
	BookID    string `json:"book_id"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
	Tags      []Tag  `json:"tags"`
}

// Transaction records one successful purchase. Seq is the store's
// append position starting at 1.
type Transaction struct {
	Seq        int64     `json:"seq"`
	CustomerID string    `json:"customer_id"`
	BookID     string    `json:"book_id"`
	Amount     Cents     `json:"amount"`
	Step       int64     `json:"step"`
	Timestamp  time.Time `json:"timestamp"`
}

// MessageType tags the intent of a bus message.
type MessageType string

const (
	MsgPurchaseComplete MessageType = "purchase_complete"
	MsgRestockComplete  MessageType = "restock_complete"
	MsgPriceChange      MessageType = "price_change"
	MsgDiscountOffer    MessageType = "discount_offer"
)

// Message is a bus message. Delivered flips once, when the receiver polls.
type Message struct {
	ID        int64       `json:"id"`
	Sender    string      `json:"sender"`
	Receiver  string      `json:"receiver"`
	Type      MessageType `json:"type"`
	Payload   Object      `json:"payload"`
	Step      int64       `json:"step"`
	CreatedAt time.Time   `json:"created_at"`
	Delivered bool        `json:"delivered"`
}

package agent

import (
	"context"
	"fmt"

	"github.com/roach88/storesim/internal/ir"
)

// Book pricing parameters. Percentages are of the current or base price.
const (
	RepriceProbability = 0.15
	LowStockBelow      = 5
	HighStockAbove     = 25

	RaisePercent   = 110
	RaiseCap       = 140
	DiscountPct    = 95
	DiscountFloor  = 75
	MinPriceChange = ir.Cents(1)
)

// Book reprices its catalog entry based on stock.
type Book struct {
	id string
}

// NewBook creates a pricing agent for the book entity id.
func NewBook(id string) *Book {
	return &Book{id: id}
}

func (b *Book) ID() string          { return b.id }
func (b *Book) Kind() ir.EntityKind { return ir.KindBook }

// Act drains the mailbox, then with RepriceProbability adjusts the price.
func (b *Book) Act(_ context.Context, env *Env) error {
	env.Bus.Poll(b.id)

	if !env.chance(RepriceProbability) {
		return nil
	}

	book, ok := env.Store.Book(b.id)
	if !ok {
		return fmt.Errorf("book %q missing from store", b.id)
	}
	inv, ok := env.Store.Inventory(book.InventoryID)
	if !ok {
		return fmt.Errorf("inventory %q missing from store", book.InventoryID)
	}

	newPrice, changed := Reprice(book.Price, book.BasePrice, inv.Quantity)
	if !changed {
		return nil
	}
	if err := env.Store.AdjustPrice(b.id, newPrice); err != nil {
		return err
	}
	env.broadcast(b.id, ir.MsgPriceChange, ir.Object{
		"book_id":   ir.String(b.id),
		"old_price": ir.Int(book.Price),
		"new_price": ir.Int(newPrice),
	})
	return nil
}

// Reprice returns the stock-driven price for a book and whether it moved
// by more than MinPriceChange. Low stock raises the price by 10% up to
// 1.4× base; high stock cuts it by 5% down to 0.75× base.
func Reprice(price, base ir.Cents, quantity int) (ir.Cents, bool) {
	var next ir.Cents
	switch {
	case quantity < LowStockBelow:
		next = min(price.Percent(RaisePercent), base.PercentFloor(RaiseCap))
	case quantity > HighStockAbove:
		next = max(price.Percent(DiscountPct), base.PercentCeil(DiscountFloor))
	default:
		return price, false
	}
	delta := next - price
	if delta < 0 {
		delta = -delta
	}
	if delta <= MinPriceChange {
		return price, false
	}
	return next, true
}

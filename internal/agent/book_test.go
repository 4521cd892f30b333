package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesim/internal/ir"
)

func TestReprice(t *testing.T) {
	tests := []struct {
		name    string
		price   ir.Cents
		base    ir.Cents
		qty     int
		want    ir.Cents
		changed bool
	}{
		{"low stock raises 10%", 2499, 2499, 4, 2749, true},
		{"raise capped at 1.4x base", 3300, 2499, 2, 3498, true},
		{"already at cap", 3498, 2499, 0, 3498, false},
		{"high stock cuts 5%", 2499, 2499, 26, 2374, true},
		{"cut floored at 0.75x base", 1950, 2499, 40, 1875, true},
		{"already at floor", 1875, 2499, 31, 1875, false},
		{"mid stock unchanged", 2499, 2499, 5, 2499, false},
		{"upper mid stock unchanged", 2499, 2499, 25, 2499, false},
		{"one cent move suppressed", 10, 10, 2, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Reprice(tt.price, tt.base, tt.qty)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
			if changed {
				assert.GreaterOrEqual(t, int64(got)*100, int64(tt.base)*DiscountFloor)
				assert.LessOrEqual(t, int64(got)*100, int64(tt.base)*RaiseCap)
			}
		})
	}
}

func TestBook_RaisesPriceAndBroadcasts(t *testing.T) {
	f := newFixture(t, scripted(0))
	b := f.book(t, "b1", ir.Dollars(24.99), 3, 5)
	f.customer(t, "c1", ir.Dollars(100))

	require.NoError(t, b.Act(context.Background(), f.env))

	book, _ := f.store.Book("b1")
	assert.Equal(t, ir.Cents(2749), book.Price)
	assert.Equal(t, ir.Dollars(24.99), book.BasePrice)

	log := f.bus.Log()
	require.Len(t, log, 2, "system and c1 each receive one copy")
	assert.Equal(t, ir.SystemID, log[0].Receiver)
	assert.Equal(t, "c1", log[1].Receiver)
	oldPrice, _ := log[1].Payload.GetInt("old_price")
	newPrice, _ := log[1].Payload.GetInt("new_price")
	assert.Equal(t, int64(2499), oldPrice)
	assert.Equal(t, int64(2749), newPrice)
}

func TestBook_MidStockNoBroadcast(t *testing.T) {
	f := newFixture(t, scripted(0))
	b := f.book(t, "b1", ir.Dollars(24.99), 15, 5)

	require.NoError(t, b.Act(context.Background(), f.env))

	book, _ := f.store.Book("b1")
	assert.Equal(t, ir.Dollars(24.99), book.Price)
	assert.Zero(t, f.bus.Stats().Total)
}

func TestBook_DrainsMailbox(t *testing.T) {
	f := newFixture(t, scripted(0.99))
	b := f.book(t, "b1", ir.Dollars(24.99), 3, 5)
	_, err := f.bus.Send("b2", "b1", ir.MsgPriceChange, nil)
	require.NoError(t, err)

	require.NoError(t, b.Act(context.Background(), f.env))

	assert.Zero(t, f.bus.Pending("b1"))
	book, _ := f.store.Book("b1")
	assert.Equal(t, ir.Dollars(24.99), book.Price)
}

package engine

import (
	"log/slog"

	"github.com/roach88/storesim/internal/bus"
	"github.com/roach88/storesim/internal/entity"
	"github.com/roach88/storesim/internal/ir"
)

// DeskOptions controls what the orchestrator does with the "system"
// mailbox it owns.
type DeskOptions struct {
	// DiscountOffers sends discount_offer to every discount_eligible
	// customer after each rule pass.
	DiscountOffers bool `json:"discount_offers"`

	// RelayPurchases drains the system mailbox after each agent pass and
	// forwards purchase_complete to the employee managing the book.
	RelayPurchases bool `json:"relay_purchases"`
}

// desk is the orchestrator's side of the bus.
type desk struct {
	opts   DeskOptions
	store  *entity.Store
	bus    *bus.Bus
	logger *slog.Logger
}

func newDesk(opts DeskOptions, st *entity.Store, b *bus.Bus, logger *slog.Logger) *desk {
	return &desk{opts: opts, store: st, bus: b, logger: logger}
}

func (d *desk) offerDiscounts(c ir.Classification) {
	if !d.opts.DiscountOffers {
		return
	}
	for _, cust := range d.store.Customers() {
		if !ir.HasTag(c.Customers[cust.ID], ir.TagDiscountEligible) {
			continue
		}
		d.send(cust.ID, ir.MsgDiscountOffer, ir.Object{"customer_id": ir.String(cust.ID)})
	}
}

func (d *desk) relayPurchases() {
	if !d.opts.RelayPurchases {
		return
	}
	for _, msg := range d.bus.Poll(ir.SystemID) {
		if msg.Type != ir.MsgPurchaseComplete {
			continue
		}
		bookID, _ := msg.Payload.GetString("book_id")
		if manager, ok := d.managerOf(bookID); ok {
			d.send(manager, ir.MsgPurchaseComplete, msg.Payload)
		}
	}
}

// managerOf returns the first employee, in creation order, managing the
// book's inventory.
func (d *desk) managerOf(bookID string) (string, bool) {
	inv, ok := d.store.InventoryOf(bookID)
	if !ok {
		return "", false
	}
	for _, e := range d.store.Employees() {
		for _, managed := range e.Manages {
			if managed == inv.ID {
				return e.ID, true
			}
		}
	}
	return "", false
}

func (d *desk) send(receiver string, typ ir.MessageType, payload ir.Object) {
	if _, err := d.bus.Send(ir.SystemID, receiver, typ, payload); err != nil {
		d.logger.Debug("desk message dropped", "receiver", receiver, "type", typ, "error", err)
	}
}

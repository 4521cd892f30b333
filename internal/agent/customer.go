package agent

import (
	"context"
	"fmt"

	"github.com/roach88/storesim/internal/ir"
)

// Customer behavior parameters.
const (
	CustomerActivity    = 0.60
	PurchaseProbability = 0.65
	MinInterest         = 2
	MaxInterest         = 5

	SatisfactionOnPurchase = 15
	SatisfactionOnDecline  = -5
	SatisfactionOnFailure  = -10
	SatisfactionOnDiscount = 5
)

// CustomerState is the customer's browsing state.
type CustomerState int

const (
	// Idle means no book is under consideration.
	Idle CustomerState = iota
	// Evaluating means a candidate book is held with an interest countdown.
	Evaluating
)

func (s CustomerState) String() string {
	if s == Evaluating {
		return "evaluating"
	}
	return "idle"
}

// Customer browses affordable books and eventually decides whether to buy.
type Customer struct {
	id       string
	state    CustomerState
	browsing string
	interest int
	browsed  map[string]bool
}

// NewCustomer creates an idle customer agent for the customer entity id.
func NewCustomer(id string) *Customer {
	return &Customer{id: id, browsed: make(map[string]bool)}
}

func (c *Customer) ID() string          { return c.id }
func (c *Customer) Kind() ir.EntityKind { return ir.KindCustomer }

// State returns the current state, the book under consideration and the
// remaining interest.
func (c *Customer) State() (CustomerState, string, int) {
	return c.state, c.browsing, c.interest
}

// Act handles pending messages, then with CustomerActivity probability
// either browses (idle) or advances the evaluation countdown.
func (c *Customer) Act(_ context.Context, env *Env) error {
	if err := c.handleMessages(env); err != nil {
		return err
	}
	if !env.chance(CustomerActivity) {
		return nil
	}
	if c.state == Idle {
		return c.browse(env)
	}
	return c.consider(env)
}

func (c *Customer) handleMessages(env *Env) error {
	for _, msg := range env.Bus.Poll(c.id) {
		switch msg.Type {
		case ir.MsgPriceChange:
			bookID, _ := msg.Payload.GetString("book_id")
			if c.state == Evaluating && bookID == c.browsing {
				c.interest = max(1, c.interest-1)
			}
		case ir.MsgDiscountOffer:
			if _, err := env.Store.AdjustSatisfaction(c.id, SatisfactionOnDiscount); err != nil {
				return err
			}
		}
	}
	return nil
}

// browse picks a uniformly random affordable book this customer has not
// browsed yet. Once every affordable book has been browsed, the history
// starts over.
func (c *Customer) browse(env *Env) error {
	self, ok := env.Store.Customer(c.id)
	if !ok {
		return fmt.Errorf("customer %q missing from store", c.id)
	}

	var affordable, fresh []string
	for _, b := range env.Store.Books() {
		if b.Price > self.Budget {
			continue
		}
		affordable = append(affordable, b.ID)
		if !c.browsed[b.ID] {
			fresh = append(fresh, b.ID)
		}
	}
	if len(affordable) == 0 {
		return nil
	}
	if len(fresh) == 0 {
		clear(c.browsed)
		fresh = affordable
	}

	c.browsing = fresh[env.Rand.Intn(len(fresh))]
	c.browsed[c.browsing] = true
	c.interest = intRange(env.Rand, MinInterest, MaxInterest)
	c.state = Evaluating
	return nil
}

func (c *Customer) consider(env *Env) error {
	c.interest--
	if c.interest > 0 {
		return nil
	}

	bookID := c.browsing
	c.state, c.browsing, c.interest = Idle, "", 0

	if !env.chance(PurchaseProbability) {
		_, err := env.Store.AdjustSatisfaction(c.id, SatisfactionOnDecline)
		return err
	}

	txn, ok, err := env.Store.Purchase(c.id, bookID)
	if err != nil {
		return err
	}
	if !ok {
		_, err := env.Store.AdjustSatisfaction(c.id, SatisfactionOnFailure)
		return err
	}

	if _, err := env.Store.AdjustSatisfaction(c.id, SatisfactionOnPurchase); err != nil {
		return err
	}
	env.Recorder.RecordPurchase(txn)
	env.notify(c.id, ir.SystemID, ir.MsgPurchaseComplete, ir.Object{
		"customer_id": ir.String(c.id),
		"book_id":     ir.String(txn.BookID),
		"amount":      ir.Int(txn.Amount),
	})
	return nil
}

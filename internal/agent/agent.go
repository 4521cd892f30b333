// Package agent implements the three simulated agent kinds.
//
// Each agent reads and writes the entity store and exchanges messages over
// the bus; agents never call each other. Act runs once per step. Mailbox
// messages are handled at the start of Act, before the main behavior.
package agent

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/roach88/storesim/internal/bus"
	"github.com/roach88/storesim/internal/entity"
	"github.com/roach88/storesim/internal/ir"
)

// Agent is the capability the scheduler drives.
type Agent interface {
	ID() string
	Kind() ir.EntityKind
	Act(ctx context.Context, env *Env) error
}

// Recorder receives bookkeeping for completed business operations. It is
// called before any notification is attempted.
type Recorder interface {
	RecordPurchase(txn ir.Transaction)
	RecordRestock(employeeID, inventoryID string, amount int)
}

// Env is everything an agent may touch during one activation.
type Env struct {
	Store    *entity.Store
	Bus      *bus.Bus
	Rand     *rand.Rand
	Logger   *slog.Logger
	Recorder Recorder
	Step     int64
}

// notify sends a message and swallows failure. Bookkeeping has already
// happened by the time this runs.
func (env *Env) notify(sender, receiver string, typ ir.MessageType, payload ir.Object) {
	if _, err := env.Bus.Send(sender, receiver, typ, payload); err != nil {
		env.Logger.Debug("notification dropped",
			"step", env.Step,
			"sender", sender,
			"receiver", receiver,
			"type", typ,
			"error", err)
	}
}

func (env *Env) broadcast(sender string, typ ir.MessageType, payload ir.Object) {
	if _, err := env.Bus.Broadcast(sender, typ, payload); err != nil {
		env.Logger.Debug("broadcast dropped",
			"step", env.Step,
			"sender", sender,
			"type", typ,
			"error", err)
	}
}

// chance reports whether a uniform draw falls below p.
func (env *Env) chance(p float64) bool {
	return env.Rand.Float64() < p
}

// intRange draws uniformly from [lo, hi].
func intRange(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

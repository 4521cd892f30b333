package bus

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/storesim/internal/ir"
)

// ErrClosed is returned by Send and Broadcast after Close.
var ErrClosed = errors.New("message bus closed")

// UnknownReceiverError is returned when sending to an id that was never
// registered. The message is not logged.
type UnknownReceiverError struct {
	Receiver string
}

func (e *UnknownReceiverError) Error() string {
	return fmt.Sprintf("unknown receiver %q", e.Receiver)
}

// Sequencer hands out strictly increasing message ids.
type Sequencer interface {
	Next() int64
}

type counter struct{ n int64 }

func (c *counter) Next() int64 {
	c.n++
	return c.n
}

// Bus routes messages between registered agents.
type Bus struct {
	seq  Sequencer
	now  func() time.Time
	step func() int64

	mailboxes map[string]*mailbox
	order     []string
	log       []*ir.Message
	closed    bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithSequencer sets the id source. The default starts at 1.
func WithSequencer(seq Sequencer) Option {
	return func(b *Bus) {
		b.seq = seq
	}
}

// WithClock sets the wall-clock source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		b.now = now
	}
}

// WithStepSource sets the function reporting the current simulation step.
func WithStepSource(step func() int64) Option {
	return func(b *Bus) {
		b.step = step
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		seq:       &counter{},
		now:       time.Now,
		step:      func() int64 { return 0 },
		mailboxes: make(map[string]*mailbox),
		log:       make([]*ir.Message, 0, 256),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register creates an empty mailbox for id. Registering twice is a no-op.
func (b *Bus) Register(id string) {
	if _, ok := b.mailboxes[id]; ok {
		return
	}
	b.mailboxes[id] = newMailbox()
	b.order = append(b.order, id)
}

// Registered reports whether id has a mailbox.
func (b *Bus) Registered(id string) bool {
	_, ok := b.mailboxes[id]
	return ok
}

// Send appends a message to the global log and to receiver's mailbox and
// returns its id.
func (b *Bus) Send(sender, receiver string, typ ir.MessageType, payload ir.Object) (int64, error) {
	if b.closed {
		return 0, ErrClosed
	}
	box, ok := b.mailboxes[receiver]
	if !ok {
		return 0, &UnknownReceiverError{Receiver: receiver}
	}
	msg := &ir.Message{
		ID:        b.seq.Next(),
		Sender:    sender,
		Receiver:  receiver,
		Type:      typ,
		Payload:   payload.Clone(),
		Step:      b.step(),
		CreatedAt: b.now(),
	}
	b.log = append(b.log, msg)
	box.push(msg)
	return msg.ID, nil
}

// Broadcast sends one message to every registered id except sender, in
// registration order, and returns the ids assigned.
func (b *Bus) Broadcast(sender string, typ ir.MessageType, payload ir.Object) ([]int64, error) {
	if b.closed {
		return nil, ErrClosed
	}
	ids := make([]int64, 0, len(b.order))
	for _, receiver := range b.order {
		if receiver == sender {
			continue
		}
		id, err := b.Send(sender, receiver, typ, payload)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Poll drains id's mailbox and returns its messages in delivery order,
// marking each as delivered. An immediate second Poll returns nothing.
// Polling an unregistered id returns nil.
func (b *Bus) Poll(id string) []ir.Message {
	box, ok := b.mailboxes[id]
	if !ok {
		return nil
	}
	drained := box.drain()
	if len(drained) == 0 {
		return nil
	}
	out := make([]ir.Message, len(drained))
	for i, msg := range drained {
		msg.Delivered = true
		out[i] = copyMessage(msg)
	}
	return out
}

// Pending returns the number of undelivered messages for id.
func (b *Bus) Pending(id string) int {
	if box, ok := b.mailboxes[id]; ok {
		return box.len()
	}
	return 0
}

// Log returns a copy of every message ever sent, in id order.
func (b *Bus) Log() []ir.Message {
	out := make([]ir.Message, len(b.log))
	for i, msg := range b.log {
		out[i] = copyMessage(msg)
	}
	return out
}

// Close rejects further sends. Pending messages can still be polled.
func (b *Bus) Close() {
	b.closed = true
}

func copyMessage(msg *ir.Message) ir.Message {
	out := *msg
	out.Payload = msg.Payload.Clone()
	return out
}

package bus

import "github.com/roach88/storesim/internal/ir"

// mailbox is a FIFO of pending messages for one receiver. Entries point
// into the global log so delivery flags stay in sync.
type mailbox struct {
	pending []*ir.Message
}

func newMailbox() *mailbox {
	return &mailbox{pending: make([]*ir.Message, 0, 8)}
}

func (m *mailbox) push(msg *ir.Message) {
	m.pending = append(m.pending, msg)
}

// drain removes and returns every pending message in insertion order.
func (m *mailbox) drain() []*ir.Message {
	if len(m.pending) == 0 {
		return nil
	}
	out := make([]*ir.Message, len(m.pending))
	copy(out, m.pending)

	// Clear slots so the backing array does not pin drained messages.
	clear(m.pending)
	m.pending = m.pending[:0]
	return out
}

func (m *mailbox) len() int {
	return len(m.pending)
}

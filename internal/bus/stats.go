package bus

import "github.com/roach88/storesim/internal/ir"

// Stats aggregates the global log.
type Stats struct {
	Total      int                    `json:"total"`
	Delivered  int                    `json:"delivered"`
	Pending    int                    `json:"pending"`
	Registered int                    `json:"registered"`
	ByType     map[ir.MessageType]int `json:"by_type"`
}

// Stats returns counts over every message ever sent.
func (b *Bus) Stats() Stats {
	s := Stats{
		Total:      len(b.log),
		Registered: len(b.mailboxes),
		ByType:     make(map[ir.MessageType]int),
	}
	for _, msg := range b.log {
		if msg.Delivered {
			s.Delivered++
		} else {
			s.Pending++
		}
		s.ByType[msg.Type]++
	}
	return s
}

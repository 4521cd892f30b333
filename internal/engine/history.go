package engine

import "github.com/roach88/storesim/internal/ir"

// Sample is one row of the per-step time series.
type Sample struct {
	Step            int64    `json:"step"`
	Revenue         ir.Cents `json:"revenue"`
	Transactions    int      `json:"transactions"`
	Restocks        int      `json:"restocks"`
	AvgSatisfaction float64  `json:"avg_satisfaction"`
	AvgPerformance  float64  `json:"avg_performance"`
	Premium         int      `json:"premium_customers"`
	Active          int      `json:"active_customers"`
	LowStock        int      `json:"low_stock_books"`
	Messages        int      `json:"total_messages"`
}

func (s *Simulation) sample() Sample {
	counts := s.store.TagCounts()
	return Sample{
		Step:            s.step,
		Revenue:         s.totals.revenue,
		Transactions:    s.totals.transactions,
		Restocks:        s.totals.restocks,
		AvgSatisfaction: s.totals.avgSatisfaction,
		AvgPerformance:  s.totals.avgPerformance,
		Premium:         counts[ir.TagPremium],
		Active:          counts[ir.TagActive],
		LowStock:        counts[ir.TagLowStock],
		Messages:        s.bus.Stats().Total,
	}
}

// History returns the samples recorded so far, one per step.
func (s *Simulation) History() []Sample {
	out := make([]Sample, len(s.history))
	copy(out, s.history)
	return out
}

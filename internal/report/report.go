// Package report summarizes a finished run as JSON or as text.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/roach88/storesim/internal/bus"
	"github.com/roach88/storesim/internal/engine"
	"github.com/roach88/storesim/internal/ir"
	"github.com/roach88/storesim/internal/store"
)

// Report is the exported summary of one run.
type Report struct {
	RunID          string          `json:"run_id,omitempty"`
	Seed           int64           `json:"seed"`
	Parameters     engine.Params   `json:"parameters"`
	Steps          int64           `json:"steps"`
	SnapshotHash   string          `json:"snapshot_hash"`
	Statistics     Statistics      `json:"statistics"`
	Classification map[ir.Tag]int  `json:"classification"`
	Messages       *bus.Stats      `json:"messages,omitempty"`
	TimeSeries     []engine.Sample `json:"time_series"`
}

// Statistics are the headline aggregates.
type Statistics struct {
	TotalRevenue      ir.Cents `json:"total_revenue"`
	TotalTransactions int      `json:"total_transactions"`
	TotalRestocks     int      `json:"total_restocks"`
	AvgSatisfaction   float64  `json:"avg_customer_satisfaction"`
	AvgPerformance    float64  `json:"avg_employee_performance"`
	RevenuePerStep    ir.Cents `json:"avg_revenue_per_step"`
}

// FromSimulation builds a report from a live simulation.
func FromSimulation(sim *engine.Simulation) (*Report, error) {
	hash, err := sim.SnapshotHash()
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	stats := sim.MessageStats()
	params := sim.Params()
	params.Seed = sim.Seed()
	return &Report{
		Seed:         sim.Seed(),
		Parameters:   params,
		Steps:        sim.StepCount(),
		SnapshotHash: hash,
		Statistics: Statistics{
			TotalRevenue:      sim.TotalRevenue(),
			TotalTransactions: sim.TotalTransactions(),
			TotalRestocks:     sim.TotalRestocks(),
			AvgSatisfaction:   sim.AvgCustomerSatisfaction(),
			AvgPerformance:    sim.AvgEmployeePerformance(),
			RevenuePerStep:    perStep(sim.TotalRevenue(), sim.StepCount()),
		},
		Classification: sim.ClassificationCounts(),
		Messages:       &stats,
		TimeSeries:     sim.History(),
	}, nil
}

// FromRun builds a report from a stored run. Stored runs keep only the
// per-step series, so classification counts come from the last sample and
// message statistics are omitted.
func FromRun(run store.Run, samples []engine.Sample) *Report {
	r := &Report{
		RunID:        run.ID,
		Seed:         run.Seed,
		Parameters:   run.Params,
		Steps:        run.Steps,
		SnapshotHash: run.SnapshotHash,
		Statistics: Statistics{
			TotalRevenue:      run.Revenue,
			TotalTransactions: run.Transactions,
			TotalRestocks:     run.Restocks,
			RevenuePerStep:    perStep(run.Revenue, run.Steps),
		},
		Classification: map[ir.Tag]int{},
		TimeSeries:     samples,
	}
	if n := len(samples); n > 0 {
		last := samples[n-1]
		r.Statistics.AvgSatisfaction = last.AvgSatisfaction
		r.Statistics.AvgPerformance = last.AvgPerformance
		r.Classification[ir.TagPremium] = last.Premium
		r.Classification[ir.TagActive] = last.Active
		r.Classification[ir.TagLowStock] = last.LowStock
	}
	return r
}

func perStep(revenue ir.Cents, steps int64) ir.Cents {
	if steps <= 0 {
		return 0
	}
	return revenue / ir.Cents(steps)
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes a human-readable summary.
func WriteText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := r.Parameters

	fmt.Fprintln(tw, "SIMULATION REPORT")
	if r.RunID != "" {
		fmt.Fprintf(tw, "  Run:\t%s\n", r.RunID)
	}
	fmt.Fprintf(tw, "  Seed:\t%d\n", r.Seed)
	fmt.Fprintf(tw, "  Steps:\t%s\n", humanize.Comma(r.Steps))
	fmt.Fprintf(tw, "  Population:\t%d customers, %d employees, %d books\n", p.Customers, p.Employees, p.Books)
	fmt.Fprintf(tw, "  Snapshot:\t%s\n", r.SnapshotHash)

	s := r.Statistics
	fmt.Fprintln(tw, "STATISTICS")
	fmt.Fprintf(tw, "  Revenue:\t%s\n", Money(s.TotalRevenue))
	fmt.Fprintf(tw, "  Avg revenue/step:\t%s\n", Money(s.RevenuePerStep))
	fmt.Fprintf(tw, "  Transactions:\t%s\n", humanize.Comma(int64(s.TotalTransactions)))
	fmt.Fprintf(tw, "  Restocks:\t%s\n", humanize.Comma(int64(s.TotalRestocks)))
	fmt.Fprintf(tw, "  Avg satisfaction:\t%s\n", humanize.FtoaWithDigits(s.AvgSatisfaction, 1))
	fmt.Fprintf(tw, "  Avg performance:\t%s\n", humanize.FtoaWithDigits(s.AvgPerformance, 1))

	fmt.Fprintln(tw, "CLASSIFICATION")
	for _, tag := range ir.AllTags() {
		if n, ok := r.Classification[tag]; ok {
			fmt.Fprintf(tw, "  %s:\t%d\n", tag, n)
		}
	}

	if m := r.Messages; m != nil {
		fmt.Fprintln(tw, "MESSAGES")
		fmt.Fprintf(tw, "  Total:\t%s\n", humanize.Comma(int64(m.Total)))
		fmt.Fprintf(tw, "  Delivered:\t%s\n", humanize.Comma(int64(m.Delivered)))
		fmt.Fprintf(tw, "  Pending:\t%s\n", humanize.Comma(int64(m.Pending)))
		for _, typ := range []ir.MessageType{ir.MsgPurchaseComplete, ir.MsgRestockComplete, ir.MsgPriceChange, ir.MsgDiscountOffer} {
			fmt.Fprintf(tw, "  %s:\t%s\n", typ, humanize.Comma(int64(m.ByType[typ])))
		}
	}
	return tw.Flush()
}

// Money formats cents with thousands separators: 123456 is "$1,234.56".
func Money(c ir.Cents) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(int64(c/100)), int64(c%100))
}

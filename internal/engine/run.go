package engine

import (
	"context"
	"log/slog"
)

// Run calls Step steps times, waiting on the step limiter before each step
// when one is configured. onStep, if non-nil, sees every report. Run stops
// early with a CANCELLED error when ctx is done.
func (s *Simulation) Run(ctx context.Context, steps int, onStep func(StepReport)) error {
	s.logger.Info("simulation starting", "steps", steps, "seed", s.seed)

	for i := 0; i < steps; i++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return s.cancelled(err)
			}
		}
		report, err := s.Step(ctx)
		if err != nil {
			return err
		}
		if onStep != nil {
			onStep(report)
		}
	}

	s.logger.Info("simulation complete",
		slog.Int64("steps", s.step),
		slog.String("revenue", s.totals.revenue.String()),
		slog.Int("transactions", s.totals.transactions),
		slog.Int("restocks", s.totals.restocks))
	return nil
}

func (s *Simulation) cancelled(err error) error {
	return &RuntimeError{Code: ErrCodeCancelled, Message: err.Error(), Step: s.step, Cause: err}
}

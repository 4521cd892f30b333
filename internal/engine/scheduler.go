package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/roach88/storesim/internal/agent"
)

// Scheduler activates every agent once per pass in a fresh uniformly
// random order.
type Scheduler struct {
	agents []agent.Agent
	rng    *rand.Rand
	logger *slog.Logger
}

// NewScheduler creates a scheduler drawing permutations from rng.
func NewScheduler(rng *rand.Rand, logger *slog.Logger) *Scheduler {
	return &Scheduler{rng: rng, logger: logger}
}

// Add appends an agent. Insertion order is the base order permutations
// are drawn over.
func (s *Scheduler) Add(a agent.Agent) {
	s.agents = append(s.agents, a)
}

// Len returns the number of scheduled agents.
func (s *Scheduler) Len() int {
	return len(s.agents)
}

// Pass activates each agent once in a random permutation and returns the
// faults it isolated, in activation order. It also returns the order used.
func (s *Scheduler) Pass(ctx context.Context, env *agent.Env) ([]string, []*RuntimeError) {
	order := slices.Clone(s.agents)
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	ids := make([]string, len(order))
	var faults []*RuntimeError
	for i, a := range order {
		ids[i] = a.ID()
		if fault := activate(ctx, a, env); fault != nil {
			s.logger.Warn("agent fault",
				"step", env.Step,
				"agent", a.ID(),
				"kind", a.Kind(),
				"error", fault.Message)
			faults = append(faults, fault)
		}
	}
	return ids, faults
}

// activate runs one agent, converting a returned error or a panic into an
// AGENT_FAULT.
func activate(ctx context.Context, a agent.Agent, env *agent.Env) (fault *RuntimeError) {
	defer func() {
		if r := recover(); r != nil {
			fault = NewAgentPanic(env.Step, a.ID(), r)
		}
	}()
	if err := a.Act(ctx, env); err != nil {
		return NewAgentFault(env.Step, a.ID(), err)
	}
	return nil
}

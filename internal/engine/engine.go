package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/roach88/storesim/internal/agent"
	"github.com/roach88/storesim/internal/bus"
	"github.com/roach88/storesim/internal/entity"
	"github.com/roach88/storesim/internal/ir"
	"github.com/roach88/storesim/internal/rules"
)

// DefaultRuleInterval is how many steps pass between rule engine runs.
const DefaultRuleInterval = 10

const tracerName = "github.com/roach88/storesim/internal/engine"

// Budget range for generated customers, inclusive.
const (
	MinCustomerBudget ir.Cents = 10000
	MaxCustomerBudget ir.Cents = 30000
)

// Params sizes and seeds a simulation.
type Params struct {
	Customers int   `json:"customers"`
	Employees int   `json:"employees"`
	Books     int   `json:"books"`
	Seed      int64 `json:"seed"` // 0 picks a time-based seed

	// RuleInterval is the step period of the rule engine. 0 means
	// DefaultRuleInterval.
	RuleInterval int `json:"rule_interval"`

	Desk DeskOptions `json:"desk"`
}

// State is the lifecycle state of a simulation.
type State string

const (
	StateCreated  State = "created"
	StateRunning  State = "running"
	StateFinished State = "finished"
)

// StepReport summarizes one Step.
type StepReport struct {
	Step       int64
	Classified bool
	Order      []string
	Faults     []*RuntimeError
}

// Simulation owns the store, bus, rule engine and agent population for one
// run. It is not safe for concurrent use: call Step from one goroutine and
// read accessors only between steps.
type Simulation struct {
	params Params
	seed   int64
	state  State
	step   int64

	rng       *rand.Rand
	clock     *Clock
	store     *entity.Store
	bus       *bus.Bus
	rules     *rules.Engine
	scheduler *Scheduler
	desk      *desk

	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
	limiter *rate.Limiter
	setup   func(*entity.Store, *bus.Bus) error
	ruleSet []rules.Rule

	totals  totals
	history []Sample
}

type totals struct {
	revenue         ir.Cents
	transactions    int
	restocks        int
	avgSatisfaction float64
	avgPerformance  float64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		s.logger = l
	}
}

// WithClock sets the wall-clock source for transaction and message
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Simulation) {
		s.now = now
	}
}

// WithTracer sets the tracer for step and rule pass spans. The default
// comes from the global otel provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Simulation) {
		s.tracer = t
	}
}

// WithStepDelay paces Run to at most one step per d. Zero disables pacing.
func WithStepDelay(d time.Duration) Option {
	return func(s *Simulation) {
		if d > 0 {
			s.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithRules replaces the classification rule table.
func WithRules(r []rules.Rule) Option {
	return func(s *Simulation) {
		s.ruleSet = r
	}
}

// WithSetup registers a hook that runs after the generated population is
// built. An error from the hook fails Initialize.
func WithSetup(fn func(*entity.Store, *bus.Bus) error) Option {
	return func(s *Simulation) {
		s.setup = fn
	}
}

// Initialize builds the store, bus and agent population described by p and
// registers every agent with the bus. Customers, employees and books are
// named from fixed pools, cycling with suffixes. Book j is managed by
// employee j mod Employees.
func Initialize(p Params, opts ...Option) (*Simulation, error) {
	if p.Customers < 0 || p.Employees < 0 || p.Books < 0 {
		return nil, NewSetupError(fmt.Errorf("negative population %d/%d/%d", p.Customers, p.Employees, p.Books))
	}
	if p.RuleInterval <= 0 {
		p.RuleInterval = DefaultRuleInterval
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Simulation{
		params: p,
		seed:   seed,
		state:  StateCreated,
		rng:    rand.New(rand.NewSource(seed)),
		clock:  NewClock(),
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = entity.New(s.rng, entity.WithClock(s.now), entity.WithStepSource(s.StepCount))
	s.bus = bus.New(bus.WithSequencer(s.clock), bus.WithClock(s.now), bus.WithStepSource(s.StepCount))
	s.rules = rules.NewEngine(s.ruleSet)
	s.scheduler = NewScheduler(s.rng, s.logger)
	s.desk = newDesk(p.Desk, s.store, s.bus, s.logger)

	s.bus.Register(ir.SystemID)
	if err := s.populate(); err != nil {
		return nil, NewSetupError(err)
	}
	if s.setup != nil {
		if err := s.setup(s.store, s.bus); err != nil {
			return nil, NewSetupError(err)
		}
	}

	s.refreshAggregates()
	s.logger.Debug("simulation initialized",
		"seed", seed,
		"customers", p.Customers,
		"employees", p.Employees,
		"books", p.Books,
		"agents", s.scheduler.Len())
	return s, nil
}

func (s *Simulation) populate() error {
	p := s.params
	for i := 0; i < p.Customers; i++ {
		id := customerID(i)
		budget := MinCustomerBudget + ir.Cents(s.rng.Int63n(int64(MaxCustomerBudget-MinCustomerBudget)+1))
		if err := s.store.CreateCustomer(id, CustomerName(i), budget); err != nil {
			return err
		}
		s.bus.Register(id)
		s.scheduler.Add(agent.NewCustomer(id))
	}
	for i := 0; i < p.Employees; i++ {
		id := employeeID(p, i)
		member := StaffMember(i)
		if err := s.store.CreateEmployee(id, member.Name, member.Role); err != nil {
			return err
		}
		s.bus.Register(id)
		s.scheduler.Add(agent.NewEmployee(id, s.rng))
	}
	for i := 0; i < p.Books; i++ {
		id := bookID(p, i)
		entry := CatalogBook(i)
		if err := s.store.CreateBook(id, entry.Title, entry.Price, entry.Author, entry.Genre); err != nil {
			return err
		}
		s.bus.Register(id)
		s.scheduler.Add(agent.NewBook(id))
		if p.Employees > 0 {
			if err := s.store.AssignManager(employeeID(p, i%p.Employees), id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Step advances the simulation by one unit. Agent faults are isolated and
// reported in the StepReport; the only errors are FINISHED after Finish
// and CANCELLED when ctx is already done.
func (s *Simulation) Step(ctx context.Context) (StepReport, error) {
	if s.state == StateFinished {
		return StepReport{}, &RuntimeError{Code: ErrCodeFinished, Message: "simulation finished", Step: s.step}
	}
	if err := ctx.Err(); err != nil {
		return StepReport{}, &RuntimeError{Code: ErrCodeCancelled, Message: err.Error(), Step: s.step, Cause: err}
	}
	s.state = StateRunning
	s.step++

	ctx, span := s.tracer.Start(ctx, "storesim.step", trace.WithAttributes(attribute.Int64("step", s.step)))
	defer span.End()

	report := StepReport{Step: s.step}
	if s.step%int64(s.params.RuleInterval) == 0 {
		s.classify(ctx)
		report.Classified = true
	}

	env := &agent.Env{
		Store:    s.store,
		Bus:      s.bus,
		Rand:     s.rng,
		Logger:   s.logger,
		Recorder: s,
		Step:     s.step,
	}
	report.Order, report.Faults = s.scheduler.Pass(ctx, env)
	s.desk.relayPurchases()

	s.refreshAggregates()
	s.history = append(s.history, s.sample())

	span.SetAttributes(attribute.Int("faults", len(report.Faults)))
	if len(report.Faults) > 0 {
		span.SetStatus(codes.Error, "agent faults")
	}
	s.logger.Debug("step complete",
		"step", s.step,
		"revenue", s.totals.revenue.String(),
		"transactions", s.totals.transactions,
		"faults", len(report.Faults))
	return report, nil
}

func (s *Simulation) classify(ctx context.Context) {
	_, span := s.tracer.Start(ctx, "storesim.classify")
	defer span.End()

	c := s.rules.Apply(s.store)
	counts := c.Counts()
	span.SetAttributes(
		attribute.Int("premium", counts[ir.TagPremium]),
		attribute.Int("low_stock", counts[ir.TagLowStock]),
		attribute.Int("requires_restock", counts[ir.TagRequiresRestock]))
	s.logger.Debug("classification pass", "step", s.step, "counts", counts)

	s.desk.offerDiscounts(c)
}

// Classify runs the rule engine immediately, outside the periodic schedule.
func (s *Simulation) Classify(ctx context.Context) ir.Classification {
	s.classify(ctx)
	return s.rules.Last()
}

// Finish ends the simulation. Further Step calls fail with FINISHED and
// the bus rejects new messages.
func (s *Simulation) Finish() {
	if s.state == StateFinished {
		return
	}
	s.state = StateFinished
	s.bus.Close()
	s.logger.Debug("simulation finished", "steps", s.step)
}

// RecordPurchase implements agent.Recorder.
func (s *Simulation) RecordPurchase(txn ir.Transaction) {
	s.totals.revenue += txn.Amount
	s.totals.transactions++
}

// RecordRestock implements agent.Recorder.
func (s *Simulation) RecordRestock(employeeID, inventoryID string, amount int) {
	s.totals.restocks++
}

func (s *Simulation) refreshAggregates() {
	customers := s.store.Customers()
	if len(customers) > 0 {
		sum := 0
		for _, c := range customers {
			sum += c.Satisfaction
		}
		s.totals.avgSatisfaction = float64(sum) / float64(len(customers))
	}
	employees := s.store.Employees()
	if len(employees) > 0 {
		sum := 0
		for _, e := range employees {
			sum += e.Performance
		}
		s.totals.avgPerformance = float64(sum) / float64(len(employees))
	}
}

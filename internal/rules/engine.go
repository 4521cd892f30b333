package rules

import (
	"github.com/roach88/storesim/internal/entity"
	"github.com/roach88/storesim/internal/ir"
)

// Engine applies a rule table to an entity store.
type Engine struct {
	rules []Rule
	last  ir.Classification
	runs  int
}

// NewEngine creates an engine over rules. A nil table means DefaultRules.
func NewEngine(rules []Rule) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules, last: ir.NewClassification()}
}

// Apply classifies the store's current state and replaces every entity's
// tags with the result.
func (e *Engine) Apply(s *entity.Store) ir.Classification {
	c := Classify(s.Snapshot(0), e.rules)
	s.ApplyClassification(c)
	e.last = c
	e.runs++
	return c
}

// Counts returns tag counts from the most recent pass. Every tag is
// present, with zero before the first pass.
func (e *Engine) Counts() map[ir.Tag]int {
	return e.last.Counts()
}

// Last returns the classification from the most recent pass.
func (e *Engine) Last() ir.Classification {
	return e.last
}

// Runs returns how many passes have been applied.
func (e *Engine) Runs() int {
	return e.runs
}

// Package engine drives the bookstore simulation.
//
// ARCHITECTURE:
//
// Single-Writer Step Loop:
// Every mutation of the entity store and message bus happens inside Step,
// called from one goroutine. Within a step agents run strictly one after
// another; only their order is randomized. This keeps a run reproducible
// under a fixed seed:
//   - One *rand.Rand seeds setup, activation order and every agent draw
//   - Entities and agents are enumerated in creation order, never map order
//   - Message ids come from the logical Clock, not wall time
//
// Step Flow:
//  1. Increment the step counter
//  2. Every RuleInterval steps, run the rule engine and send discount offers
//  3. Activate each agent once, in a fresh random permutation
//  4. Relay purchase notices from the system mailbox to managing employees
//  5. Refresh aggregates and append a history sample
//
// ERROR HANDLING:
// An agent that returns an error or panics is recorded as an AGENT_FAULT,
// logged, and skipped; the rest of the pass continues. Nothing an agent
// does can make Step fail.
package engine

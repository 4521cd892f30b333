package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run against the store, bus and rule engine.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Setup      Setup       `yaml:"setup"`
	Flow       []FlowStep  `yaml:"flow"`
	Assertions []Assertion `yaml:"assertions"`
}

// Setup declares the starting population.
type Setup struct {
	Customers []CustomerSpec `yaml:"customers,omitempty"`
	Employees []EmployeeSpec `yaml:"employees,omitempty"`
	Books     []BookSpec     `yaml:"books,omitempty"`

	// Mailboxes registers extra bus ids that are not entities.
	Mailboxes []string `yaml:"mailboxes,omitempty"`
}

// CustomerSpec declares a customer. Budget is in cents.
type CustomerSpec struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Budget int64  `yaml:"budget"`
}

// EmployeeSpec declares an employee and the books it manages.
type EmployeeSpec struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Role    string   `yaml:"role"`
	Manages []string `yaml:"manages,omitempty"`
}

// BookSpec declares a book with explicit stock. Price is in cents.
type BookSpec struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Author    string `yaml:"author,omitempty"`
	Genre     string `yaml:"genre,omitempty"`
	Price     int64  `yaml:"price"`
	Quantity  int    `yaml:"quantity"`
	Threshold int    `yaml:"threshold"`
}

// FlowStep is one operation with optional expectations.
type FlowStep struct {
	Op     string         `yaml:"op"`
	Args   map[string]any `yaml:"args,omitempty"`
	Expect *ExpectClause  `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Outcome is ok, rejected or error.
	Outcome string `yaml:"outcome"`

	// Result is a subset match against the step's result.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	Type string `yaml:"type"`

	// ID names the entity (budget, quantity, price, tags).
	ID string `yaml:"id,omitempty"`

	// Equals is the expected value (budget, quantity, price,
	// transaction_count).
	Equals *int64 `yaml:"equals,omitempty"`

	// Tags is the expected tag set (tags). Order does not matter.
	Tags []string `yaml:"tags,omitempty"`

	// Stats is a subset match on message statistics (message_stats).
	Stats map[string]int `yaml:"stats,omitempty"`
}

// Operation names.
const (
	OpPurchase    = "purchase"
	OpRestock     = "restock"
	OpAdjustPrice = "adjust_price"
	OpClassify    = "classify"
	OpSend        = "send"
	OpBroadcast   = "broadcast"
	OpPoll        = "poll"
)

// Assertion type constants.
const (
	AssertBudget           = "budget"
	AssertQuantity         = "quantity"
	AssertPrice            = "price"
	AssertTags             = "tags"
	AssertTransactionCount = "transaction_count"
	AssertMessageStats     = "message_stats"
)

var requiredArgs = map[string][]string{
	OpPurchase:    {"customer", "book"},
	OpRestock:     {"inventory", "amount"},
	OpAdjustPrice: {"book", "price"},
	OpClassify:    {},
	OpSend:        {"from", "to", "type"},
	OpBroadcast:   {"from", "type"},
	OpPoll:        {"mailbox"},
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, c := range s.Setup.Customers {
		if c.ID == "" {
			return fmt.Errorf("setup.customers[%d]: id is required", i)
		}
	}
	for i, e := range s.Setup.Employees {
		if e.ID == "" {
			return fmt.Errorf("setup.employees[%d]: id is required", i)
		}
	}
	for i, b := range s.Setup.Books {
		if b.ID == "" {
			return fmt.Errorf("setup.books[%d]: id is required", i)
		}
	}

	for i, step := range s.Flow {
		required, ok := requiredArgs[step.Op]
		if !ok {
			return fmt.Errorf("flow[%d]: unknown op %q", i, step.Op)
		}
		for _, arg := range required {
			if _, ok := step.Args[arg]; !ok {
				return fmt.Errorf("flow[%d]: %s requires arg %q", i, step.Op, arg)
			}
		}
		if step.Expect != nil {
			switch step.Expect.Outcome {
			case OutcomeOK, OutcomeRejected, OutcomeError:
			default:
				return fmt.Errorf("flow[%d].expect: outcome must be ok, rejected or error", i)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertBudget, AssertQuantity, AssertPrice:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
		if a.Equals == nil {
			return fmt.Errorf("assertions[%d]: equals is required for %s", index, a.Type)
		}
	case AssertTags:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for tags", index)
		}
	case AssertTransactionCount:
		if a.Equals == nil || *a.Equals < 0 {
			return fmt.Errorf("assertions[%d]: non-negative equals is required for transaction_count", index)
		}
	case AssertMessageStats:
		if len(a.Stats) == 0 {
			return fmt.Errorf("assertions[%d]: stats is required for message_stats", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

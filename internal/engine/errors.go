package engine

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeAgentFault marks an agent activation that returned an error
	// or panicked. It is logged and never escapes Step.
	ErrCodeAgentFault RuntimeErrorCode = "AGENT_FAULT"

	// ErrCodeSetupFailed marks a failure while building the population.
	ErrCodeSetupFailed RuntimeErrorCode = "SETUP_FAILED"

	// ErrCodeFinished is returned by Step after Finish.
	ErrCodeFinished RuntimeErrorCode = "FINISHED"

	// ErrCodeCancelled is returned when the caller's context ends a run.
	ErrCodeCancelled RuntimeErrorCode = "CANCELLED"
)

// RuntimeError is an error raised by the simulation engine.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string

	// Step is the step during which the error occurred, or 0 during setup.
	Step int64

	// AgentID identifies the faulting agent for AGENT_FAULT.
	AgentID string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.AgentID != "" {
		return fmt.Sprintf("%s: %s (step=%d, agent=%s)", e.Code, e.Message, e.Step, e.AgentID)
	}
	if e.Step > 0 {
		return fmt.Sprintf("%s: %s (step=%d)", e.Code, e.Message, e.Step)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause so errors.Is and errors.As see through.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// NewAgentFault wraps an error returned by an agent.
func NewAgentFault(step int64, agentID string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeAgentFault,
		Message: cause.Error(),
		Step:    step,
		AgentID: agentID,
		Cause:   cause,
	}
}

// NewAgentPanic records a recovered panic from an agent.
func NewAgentPanic(step int64, agentID string, recovered any) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeAgentFault,
		Message: fmt.Sprintf("panic: %v", recovered),
		Step:    step,
		AgentID: agentID,
	}
}

// NewSetupError wraps a population build failure.
func NewSetupError(cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeSetupFailed,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// IsAgentFault reports whether err is an AGENT_FAULT.
func IsAgentFault(err error) bool {
	return hasCode(err, ErrCodeAgentFault)
}

// IsFinished reports whether err was returned because the simulation has
// finished.
func IsFinished(err error) bool {
	return hasCode(err, ErrCodeFinished)
}

// IsCancelled reports whether err ended a run through context cancellation.
func IsCancelled(err error) bool {
	return hasCode(err, ErrCodeCancelled)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

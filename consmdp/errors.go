package consmdp

import "fmt"

// ErrorKind classifies the fatal conditions the core can raise. It mirrors
// the taxonomy of kinds (not types) used throughout the solver, selector
// and strategy packages, so callers can dispatch on Kind() rather than on
// Go type assertions.
type ErrorKind int

const (
	// InvalidModel is raised by builder validation and by Freeze when the
	// ConsMDP does not meet the structural invariants required to solve
	// it (missing actions, unnormalised distributions, non-existent
	// successors, negative consumption, zero-consumption cycles).
	InvalidModel ErrorKind = iota
	// NonTerminating is raised by a solver that detects it cannot make
	// progress because of a zero-consumption cycle that slipped past
	// eager validation (e.g. a caller solving against an unfrozen or
	// hand-built graph).
	NonTerminating
	// Cancelled is raised when a cooperative cancellation token fires
	// during a long-running fixed-point computation.
	Cancelled
	// Exhaustion is raised by a counter strategy when the current level
	// falls below the selector's minimum for the current state.
	Exhaustion
	// NoStrategy is raised at strategy construction when the selector
	// defines no action for the initial state and level: most commonly
	// the initial state's min-level is infinite, or the initial level is
	// below it.
	NoStrategy
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidModel:
		return "InvalidModel"
	case NonTerminating:
		return "NonTerminating"
	case Cancelled:
		return "Cancelled"
	case Exhaustion:
		return "Exhaustion"
	case NoStrategy:
		return "NoStrategy"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type raised by the consmdp package.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("consmdp: %s: %s", e.Kind, e.Msg)
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

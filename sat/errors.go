package sat

import "errors"

// Expected, recoverable error conditions (§7 "Transient conflict" is not
// among these: it is always absorbed by analyzeConflict and never
// escapes the solver). Invariant violations (programmer errors, e.g.
// mutating a frozen SharedContext) panic instead, matching the teacher's
// own log.Fatal-on-invariant-violation texture translated into a
// recoverable-by-the-caller idiom.
var (
	// ErrContextFrozen is returned when an operation that requires the
	// construction phase (§5) is attempted after Freeze.
	ErrContextFrozen = errors.New("sat: shared context is frozen")

	// ErrBelowRoot is returned when AddClause is called at a decision
	// level above the root level.
	ErrBelowRoot = errors.New("sat: clauses can only be added at the root level")

	// ErrUnknownVar is returned when an operation references a variable
	// id that was never allocated.
	ErrUnknownVar = errors.New("sat: unknown variable")
)

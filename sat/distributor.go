package sat

// Distributor is the opaque hook by which a Solver can share learnt
// clauses with sibling solvers working the same SharedContext, per
// §6.3's external interface surface. This package defines only the
// seam; no concrete multi-solver distributor ships here; a single
// Solver runs a complete, correct search with Distributor left nil.
type Distributor interface {
	// IsCandidate reports whether a learnt clause of the given LBD and
	// length is worth sharing at all, letting the distributor filter
	// out low-quality clauses before Publish is ever called.
	IsCandidate(lbd int, length int) bool

	// Publish offers a freshly learnt clause's literals to the
	// distributor. The Solver retains ownership of lits; an
	// implementation that wants to keep it must copy it.
	Publish(lits []Literal)

	// Receive returns the next externally learnt clause to integrate,
	// or ok=false if none is available right now. The Solver calls
	// this between decisions, never mid-propagation.
	Receive() (lits []Literal, ok bool)
}

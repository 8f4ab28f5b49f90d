package sat

// minimizeLevel is one priority level of a lexicographic multi-level
// pseudo-Boolean objective: a weighted sum of literals to be kept as
// small as possible, with earlier levels taking absolute precedence
// over later ones (§4.7/§4.9 "minimize"/optimization statements).
type minimizeLevel struct {
	lits    []Literal
	weights []int64
}

// MinimizeConstraint enforces, for one level at a time, that the
// weighted sum of true literals at that level stays strictly below a
// bound set by the search driver after each improving model is found
// (classic branch-and-bound). It implements PostPropagator (so it only
// tightens once ordinary propagation has reached a fixpoint, per §4.9)
// and is exposed as a Constraint through minimizeConstraintHandle (so
// its forced literals can be explained during conflict analysis).
//
// Only one level is ever bounded at a time: the search driver (the
// caller's optimization loop) calls Tighten with the next level and
// bound once the current level's value is pinned by the trail, which
// is what realizes lexicographic precedence without this constraint
// needing to reason about multiple levels simultaneously.
type MinimizeConstraint struct {
	levels []minimizeLevel

	active   int
	bound    int64
	hasBound bool

	// asConstraint adapts m to the Constraint interface for the
	// antecedent it hands out from Propagate/GenericAntecedent. A
	// *MinimizeConstraint cannot implement Constraint directly: Constraint
	// wants Propagate(s, p Literal), while this type's own Propagate(s)
	// is the PostPropagator-shaped fixpoint hook §4.9 calls for, and Go
	// cannot carry two methods named Propagate with different signatures
	// on the same type. minimizeConstraintHandle is the thin adapter that
	// resolves the clash; its own Propagate is never invoked (a minimize
	// bound is never registered as a generic watch).
	asConstraint Constraint
}

// NewMinimizeConstraint returns a MinimizeConstraint over the given
// levels, ordered from highest to lowest priority.
func NewMinimizeConstraint(levelLits [][]Literal, levelWeights [][]int64) *MinimizeConstraint {
	m := &MinimizeConstraint{}
	for i := range levelLits {
		m.levels = append(m.levels, minimizeLevel{
			lits:    append([]Literal(nil), levelLits[i]...),
			weights: append([]int64(nil), levelWeights[i]...),
		})
	}
	m.asConstraint = minimizeConstraintHandle{m}
	return m
}

// minimizeConstraintHandle adapts *MinimizeConstraint to Constraint (see
// the asConstraint field comment above). Embedding promotes Reason,
// Minimize, Simplify, Undo, Destroy, and Locked unchanged; only
// Propagate needs a distinct signature, supplied below.
type minimizeConstraintHandle struct {
	*MinimizeConstraint
}

// Propagate is unreachable: minimize bounds are only ever tightened via
// the PostPropagator hook, never through a generic watch list entry.
func (minimizeConstraintHandle) Propagate(s *Solver, p Literal) (bool, bool) {
	panic("sat: minimizeConstraintHandle.Propagate called; MinimizeConstraint never registers a generic watch")
}

// NumLevels returns the number of priority levels.
func (m *MinimizeConstraint) NumLevels() int { return len(m.levels) }

// ObjectiveValue returns the weighted sum of the literals at level that
// are true in the model found by the last successful Solve/Search call
// (Search cancels the trail back to the root before returning True).
func (m *MinimizeConstraint) ObjectiveValue(s *Solver, level int) int64 {
	model := s.Model()
	var sum int64
	for i, l := range m.levels[level].lits {
		if model[l.Var()] == Lift(l.IsPositive()) {
			sum += m.levels[level].weights[i]
		}
	}
	return sum
}

// Tighten switches the active bounded level to level and requires its
// weighted sum to be strictly less than bound on every subsequent
// Propagate call.
func (m *MinimizeConstraint) Tighten(level int, bound int64) {
	m.active = level
	m.bound = bound
	m.hasBound = true
}

// Relax disables bounding, letting the constraint's Propagate become a
// no-op; used when the search driver wants an unconstrained pass (e.g.
// while finding the first, pre-optimization model).
func (m *MinimizeConstraint) Relax() {
	m.hasBound = false
}

func (m *MinimizeConstraint) sums(s *Solver) (current, reachable int64) {
	lvl := m.levels[m.active]
	for i, l := range lvl.lits {
		switch s.value(l) {
		case True:
			current += lvl.weights[i]
			reachable += lvl.weights[i]
		case Unknown:
			reachable += lvl.weights[i]
		}
	}
	return current, reachable
}

// Propagate forces false every unassigned level literal whose weight
// alone would push the running sum to or past the bound, and reports a
// conflict if the bound is already violated.
func (m *MinimizeConstraint) Propagate(s *Solver) (ok bool, changed bool) {
	if !m.hasBound {
		return true, false
	}
	current, _ := m.sums(s)
	if current >= m.bound {
		s.conflCons = m.asConstraint
		s.conflLits = nil
		return false, false
	}

	slack := m.bound - 1 - current
	lvl := m.levels[m.active]
	for i, l := range lvl.lits {
		if s.value(l) != Unknown {
			continue
		}
		if lvl.weights[i] > slack {
			if !s.enqueue(l.Opposite(), GenericAntecedent(m.asConstraint)) {
				s.conflCons = m.asConstraint
				s.conflLits = nil
				return false, false
			}
			changed = true
		}
	}
	return true, changed
}

// Priority places minimize tightening after ordinary propagation and
// after the unfounded-set check, since it only ever prunes, never
// derives atoms the stable-model semantics requires.
func (m *MinimizeConstraint) Priority() int { return 100 }

// Reason appends the true literals whose weight justifies forcing p
// false (or, for a conflict, the set that already meets the bound).
//
// Like WeightConstraint.Reason (weight.go), Propagate recomputes its
// sums from the live assignment rather than an incremental per-level
// snapshot, so a literal forced earlier can otherwise end up citing a
// literal assigned later as part of its own justification, violating
// IN2 and stranding the First-UIP walk. The non-conflict branch below
// therefore filters against p's own trail position via beforeP; the
// ConflictLiteral case needs no such filter since a conflict is
// detected against the assignment as a whole, not at some earlier
// point in time.
func (m *MinimizeConstraint) Reason(s *Solver, p Literal, out []Literal) []Literal {
	lvl := m.levels[m.active]
	if p == ConflictLiteral {
		for _, l := range lvl.lits {
			if s.value(l) == True {
				out = append(out, l)
			}
		}
		return out
	}
	cutoff := s.TrailPosition(p)
	for _, l := range lvl.lits {
		if l == p || l.Opposite() == p {
			continue
		}
		if s.value(l) == True && beforeP(s, l, cutoff) {
			out = append(out, l)
		}
	}
	return out
}

// Minimize behaves like Reason.
func (m *MinimizeConstraint) Minimize(s *Solver, p Literal, out []Literal) []Literal {
	return m.Reason(s, p, out)
}

// Simplify never drops the constraint: its bound changes dynamically
// as the search driver improves the incumbent.
func (m *MinimizeConstraint) Simplify(s *Solver) bool { return false }

// Undo is a no-op: the bound is driver-managed, not trail-managed.
func (m *MinimizeConstraint) Undo(s *Solver, level int) {}

// Destroy is a no-op: MinimizeConstraint holds no watch-list registrations.
func (m *MinimizeConstraint) Destroy(s *Solver, detach bool) {}

// Locked always reports true while a bound is active: the constraint
// may still be the antecedent of a forced-false literal on the trail.
func (m *MinimizeConstraint) Locked(s *Solver) bool { return m.hasBound }

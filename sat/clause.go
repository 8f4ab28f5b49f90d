package sat

// Clause is an allocated, watched clause of four or more literals.
// Shorter clauses never reach this type: length 0/1 are handled
// directly by the caller (conflict/unit assignment), and length 2/3
// are folded into the short-implication graph (shortimpl.go) instead,
// per §4.3. literals[0] and literals[1] are always the two watched
// slots; Propagate is only ever called for a watched slot becoming
// false.
//
// Clause implements the full Constraint interface for uniformity (so
// e.g. Locked/Destroy can treat clauses and aggregates alike), but the
// solver's hot unit-propagation loop (Solver.propagateClauseWatches)
// calls clausePropagate directly rather than going through the
// interface, avoiding the vtable indirection §9 calls out.
type Clause struct {
	lits   []Literal
	score  constraintScore
	learnt bool

	// scanFrom caches the tail position the last successful watch swap
	// found its replacement at, so the next clausePropagate call resumes
	// the search there instead of rescanning from index 2 every time.
	// Grounded on yass's sat/clauses.go prevPos field (its own evolved
	// clause type, distinct from its DIMACS-solver's simpler one), which
	// wraps the scan around the tail in two passes ([scanFrom:] then
	// [2:scanFrom]) for the same amortized-cost reason.
	scanFrom int
}

// NewClause constructs a clause from lits against s's current
// assignment, routing it to the representation appropriate for its
// size (§4.3). It returns ok=false if adding the clause produces an
// immediate, unrecoverable conflict (e.g. a unit clause contradicting
// an existing root-level assignment). For lengths 2 and 3 it returns a
// nil *Clause even on success, since no object is allocated; callers
// must not assume a non-nil Clause whenever ok is true.
func NewClause(s *Solver, lits []Literal, learnt bool) (*Clause, bool) {
	lits = simplifyLiterals(s, lits)
	if lits == nil {
		// Already satisfied at the root; nothing to add.
		return nil, true
	}

	switch len(lits) {
	case 0:
		return nil, false
	case 1:
		return nil, s.enqueue(lits[0], DecisionAntecedent)
	case 2:
		return nil, s.attachBinary(lits[0], lits[1], learnt)
	case 3:
		return nil, s.attachTernary(lits[0], lits[1], lits[2], learnt)
	}

	c := &Clause{lits: append([]Literal(nil), lits...), learnt: learnt, scanFrom: 2}
	if learnt {
		lbd := s.computeLBD(c.lits)
		c.score = packScore(0, uint32(lbd))
	}

	// Pick the two watched slots. For a freshly learnt clause the
	// asserting literal (index 0, by analyzeConflict's convention) and
	// the literal with the highest decision level among the rest (the
	// "second watch") must be watched so the clause starts propagating
	// the asserting literal at the right backtrack level.
	if learnt {
		best, bestLevel := 1, s.litLevel(c.lits[1])
		for i := 2; i < len(c.lits); i++ {
			if lvl := s.litLevel(c.lits[i]); lvl > bestLevel {
				best, bestLevel = i, lvl
			}
		}
		c.lits[1], c.lits[best] = c.lits[best], c.lits[1]
	}

	s.watchClause(c.lits[0].Opposite(), clauseWatch{clause: c, guard: c.lits[1]})
	s.watchClause(c.lits[1].Opposite(), clauseWatch{clause: c, guard: c.lits[0]})
	if learnt {
		s.learnts = append(s.learnts, c)
	} else {
		s.clauses = append(s.clauses, c)
	}
	return c, true
}

// simplifyLiterals drops duplicate/root-falsified literals and reports
// tautology-or-satisfied clauses as nil. It returns the input lits slice
// (possibly shortened in place) for the ordinary, non-trivial case.
func simplifyLiterals(s *Solver, lits []Literal) []Literal {
	out := lits[:0]
	for _, l := range lits {
		if s.litLevel(l) == 0 {
			switch s.value(l) {
			case True:
				return nil // satisfied at the root, drop entirely
			case False:
				continue // falsified at the root, drop the literal
			}
		}
		dup := false
		for _, seen := range out {
			if seen == l {
				dup = true
				break
			}
			if Complementary(seen, l) {
				return nil // tautology
			}
		}
		if !dup {
			out = append(out, l)
		}
	}
	return out
}

// clausePropagate is the hot-path propagation routine invoked directly
// from Solver.propagateClauseWatches when one of c's watched literals
// (lits[0] or lits[1], passed as falseLit) becomes false. It
// returns keep=false when the watch entry (keyed on the clause's
// now-false literal) should be dropped from that literal's watch list
// because the clause moved its watch elsewhere, and ok=false on
// conflict.
func (c *Clause) clausePropagate(s *Solver, falseLit Literal) (ok bool, keep bool) {
	// Make lits[0] the literal that is NOT falseLit, so lits[1] is
	// always the slot we are trying to replace.
	if c.lits[0] == falseLit {
		c.lits[0], c.lits[1] = c.lits[1], c.lits[0]
	}
	if s.value(c.lits[0]) == True {
		// Already satisfied by the other watch; keep the watch as is.
		return true, true
	}
	if c.scanFrom < 2 || c.scanFrom > len(c.lits) {
		c.scanFrom = 2 // invalidated by a Strengthen/Simplify that shrank lits
	}
	for i := c.scanFrom; i < len(c.lits); i++ {
		if s.value(c.lits[i]) != False {
			c.scanFrom = i
			c.lits[1], c.lits[i] = c.lits[i], c.lits[1]
			s.watchClause(c.lits[1].Opposite(), clauseWatch{clause: c, guard: c.lits[0]})
			return true, false
		}
	}
	for i := 2; i < c.scanFrom; i++ {
		if s.value(c.lits[i]) != False {
			c.scanFrom = i
			c.lits[1], c.lits[i] = c.lits[i], c.lits[1]
			s.watchClause(c.lits[1].Opposite(), clauseWatch{clause: c, guard: c.lits[0]})
			return true, false
		}
	}
	// No replacement watch found: lits[0] is either unit or a conflict.
	if s.value(c.lits[0]) == False {
		return false, true
	}
	return s.enqueue(c.lits[0], GenericAntecedent(c)), true
}

// Propagate implements Constraint for uniformity; it delegates to
// clausePropagate with p's complement, the watched clause literal that
// p becoming true made false.
func (c *Clause) Propagate(s *Solver, p Literal) (bool, bool) {
	return c.clausePropagate(s, p.Opposite())
}

// Reason appends every clause literal other than p, negated (they are
// false, the reason set must contain the true literals that forced p).
func (c *Clause) Reason(s *Solver, p Literal, out []Literal) []Literal {
	for _, l := range c.lits {
		if l != p {
			out = append(out, l.Opposite())
		}
	}
	return out
}

// Minimize behaves like Reason; clauses have no exploratory-only variant.
func (c *Clause) Minimize(s *Solver, p Literal, out []Literal) []Literal {
	return c.Reason(s, p, out)
}

// Simplify reports whether c is satisfied at the root and can be
// dropped, and otherwise removes every literal falsified at the root
// by routing each removal through Strengthen (§4.3) rather than
// compacting c.lits by hand. Simplify is Strengthen's only caller.
func (c *Clause) Simplify(s *Solver) bool {
	if s.currentLevel() != s.rootLevel {
		return false
	}
	for _, l := range c.lits {
		if s.value(l) == True {
			return true
		}
	}
	for i := 0; i < len(c.lits); {
		l := c.lits[i]
		if s.value(l) != False {
			i++
			continue
		}
		_, needsDrop := c.Strengthen(s, l, true)
		if needsDrop {
			return true
		}
		// Strengthen moved the last literal into l's slot; re-examine
		// that same index rather than advancing past it.
	}
	return false
}

// Undo is a no-op: plain clauses register no per-level undo watches.
func (c *Clause) Undo(s *Solver, level int) {}

// Destroy detaches c from both of its watch lists when detach is true.
func (c *Clause) Destroy(s *Solver, detach bool) {
	if !detach {
		return
	}
	s.unwatchClause(c.lits[0].Opposite(), c)
	s.unwatchClause(c.lits[1].Opposite(), c)
}

// Locked reports whether c is currently the antecedent of lits[0]'s
// variable, and therefore must survive a learnt-database reduction.
func (c *Clause) Locked(s *Solver) bool {
	return s.isAntecedentOf(c.lits[0], c)
}

// Strengthen removes lit from c (called by Simplify at the root level).
// It reports needsDrop=true when c has been weakened to a single
// literal or less and must be removed from the clause database by the
// caller (a unit clause has no watched slots to maintain). allowTopLevel
// is accepted but not consulted.
func (c *Clause) Strengthen(s *Solver, lit Literal, allowTopLevel bool) (ok bool, needsDrop bool) {
	idx := -1
	for i, l := range c.lits {
		if l == lit {
			idx = i
			break
		}
	}
	if idx < 0 {
		return true, false
	}
	watched := idx < 2
	if watched {
		s.unwatchClause(c.lits[idx].Opposite(), c)
	}
	c.lits[idx] = c.lits[len(c.lits)-1]
	c.lits = c.lits[:len(c.lits)-1]
	if watched && len(c.lits) >= 2 {
		guard := c.lits[1-idx]
		s.watchClause(c.lits[idx].Opposite(), clauseWatch{clause: c, guard: guard})
	}
	return true, len(c.lits) <= 1
}

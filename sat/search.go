package sat

// SearchLimits bounds a single Search call the way yass's Search(
// nConflicts, nLearnts int) does, letting the caller drive an outer
// restart/rebudget loop (Solve, below, wraps this the same way yass's
// Solver.Solve does).
type SearchLimits struct {
	MaxConflicts int64 // <0 means unbounded
}

// analyzeConflict performs First-UIP resolution starting from the
// current conflict (set by propagateCore/the *Watches helpers),
// applies the configured clause minimization, and returns the learnt
// clause (asserting literal first) together with the backtrack level.
// Grounded directly on yass's analyze (internal/sat/solver.go),
// generalized to resolve through the tagged Antecedent union instead
// of a bare *Clause and to fold in on-the-fly self-subsuming
// resolution while walking the trail.
func (s *Solver) analyzeConflict() ([]Literal, int) {
	nImplicationPoints := 0

	s.tmpLearnt = append(s.tmpLearnt[:0], ConflictLiteral.bare()) // placeholder for the FUIP
	s.seenVar.Clear()
	s.otfsCandidates = s.otfsCandidates[:0]
	backtrackLevel := 0

	nextTrailIdx := len(s.trail) - 1
	p := ConflictLiteral

	s.tmpReason = s.tmpReason[:0]
	reasonBuf := s.conflictReason(s.tmpReason[:0])

	for {
		for _, q := range reasonBuf {
			v := q.Var()
			if s.level[v] == 0 {
				// Permanently assigned at the root: true under every
				// assignment the learnt clause will ever be evaluated
				// against, so it contributes nothing and is dropped here
				// rather than bloating the clause (matches yass's analyze,
				// which guards the same resolution step with
				// level(var(q)) > 0).
				continue
			}
			if s.seenVar.Contains(int(v)) {
				continue
			}
			s.seenVar.Add(int(v))
			s.order.BumpScore(v)

			if int(s.level[v]) == s.decisionLevel() {
				nImplicationPoints++
				continue
			}
			s.tmpLearnt = append(s.tmpLearnt, q.Opposite())
			if lvl := int(s.level[v]); lvl > backtrackLevel {
				backtrackLevel = lvl
			}
		}

		for {
			p = s.trail[nextTrailIdx]
			nextTrailIdx--
			if s.seenVar.Contains(int(p.Var())) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}

		ante := s.reason[p.Var()]
		s.otfsCheck(p, ante)
		s.tmpReason = s.tmpReason[:0]
		reasonBuf = ante.reasonLiterals(s, p, s.tmpReason)
	}

	s.tmpLearnt[0] = p.Opposite()

	learnt := s.ccMinimize(s.tmpLearnt)
	learnt = s.reverseArcStrengthen(learnt)
	return learnt, backtrackLevel
}

// reverseArcStrengthen applies §4.4's optional reverse-arc pass after
// ordinary minimization: a non-UIP literal Li is dropped if the
// short-implication graph already records a binary clause {¬Li, Lk}
// for some other literal Lk still in the clause (shortImpl.binary is
// keyed so that binary[Li.index()] holds exactly the literals Li
// directly implies, i.e. the Lk side of such a clause). Resolving the
// learnt clause against that binary clause on Li yields the clause
// minus Li plus Lk, and Lk is already present, so the resolvent
// subsumes the original and Li contributes nothing — "an inverse
// implication that would have produced [Li]'s complement", found and
// resolved away, tightening the clause by one literal. Runs strictly
// after ccMinimize, per the open question in DESIGN.md about their
// ordering.
func (s *Solver) reverseArcStrengthen(learnt []Literal) []Literal {
	if s.minMode == MinimizeNone || len(learnt) <= 2 {
		return learnt
	}

	out := learnt[:1]
	for _, l := range learnt[1:] {
		if !s.reverseArcRedundant(l, learnt) {
			out = append(out, l)
		}
	}
	return out
}

// reverseArcRedundant reports whether l can be dropped from learnt
// because l already directly implies some other literal of learnt.
func (s *Solver) reverseArcRedundant(l Literal, learnt []Literal) bool {
	for _, e := range s.shortImpl.binary[l.index()] {
		for _, other := range learnt {
			if other == e.lit && other != l {
				return true
			}
		}
	}
	return false
}

// otfsCheck implements the on-the-fly subsumption (OTFS) pass of §4.4:
// when resolving away p through a clause antecedent, every other
// variable already in the clause being resolved through might already
// be marked seen by earlier resolution steps. If so, the clause's
// literal set is (ignoring p) already a subset of the resolvent under
// construction, which means the resolvent subsumes it — the clause
// becomes redundant the moment the final learnt clause is asserted, and
// is queued in s.otfsCandidates for Search to destroy once analysis
// completes. Per the open question noted in the design docs, this
// check runs strictly before minimization touches the buffer (i.e.
// against the pre-minimization seen set), matching the reading that
// the source skips subsumption once minimization has already
// shortened the clause.
func (s *Solver) otfsCheck(p Literal, ante Antecedent) {
	if ante.tag != antGeneric {
		return
	}
	cl, ok := ante.cons.(*Clause)
	if !ok {
		return
	}
	for _, l := range cl.lits {
		if l.Var() == p.Var() {
			continue
		}
		if !s.seenVar.Contains(int(l.Var())) {
			return
		}
	}
	s.otfsCandidates = append(s.otfsCandidates, cl)
}

// ccMinimize shrinks a freshly derived learnt clause by dropping any
// literal whose negation is already implied by the literals that
// remain, per §4.4. MinimizeNone skips the pass entirely; MinimizeLocal
// only checks each literal's direct antecedent; MinimizeRecursive
// follows antecedent chains using the three-state epoch stamps so a
// literal deep in the implication graph can still be recognized as
// redundant.
func (s *Solver) ccMinimize(learnt []Literal) []Literal {
	if s.minMode == MinimizeNone || len(learnt) <= 1 {
		return learnt
	}

	s.stamps.Clear()
	for _, l := range learnt {
		s.stamps.Set(int(l.Var()), stampRemovable)
	}

	out := learnt[:1]
	for _, l := range learnt[1:] {
		if !s.litRedundant(l) {
			out = append(out, l)
		}
	}
	return out
}

// litRedundant reports whether l's assignment is already implied by
// the other literals in the learnt clause under construction, i.e.
// whether every literal in l's antecedent is either in the learnt
// clause already or is itself redundant by the same test.
func (s *Solver) litRedundant(l Literal) bool {
	ante := s.reason[l.Var()]
	if ante.IsNull() {
		return false
	}

	if s.minMode == MinimizeLocal {
		return s.localRedundant(l, ante)
	}
	return s.recursiveRedundant(l)
}

func (s *Solver) localRedundant(l Literal, ante Antecedent) bool {
	s.tmpReason = s.tmpReason[:0]
	for _, q := range ante.reasonLiterals(s, l, s.tmpReason) {
		if !s.seenVar.Contains(int(q.Var())) {
			return false
		}
	}
	return true
}

// recursiveRedundant runs an explicit-stack DFS (never recursive Go
// calls, matching §9's "no unbounded native-stack recursion" posture
// applied here as well as in the dependency-graph SCC search) over the
// antecedent graph rooted at l, using epochStamps to memoize poison/
// removable verdicts so shared sub-chains are only walked once.
type redundancyFrame struct {
	lit    Literal
	reason []Literal
	idx    int
}

func (s *Solver) recursiveRedundant(l Literal) bool {
	var stack []redundancyFrame
	start := s.reason[l.Var()].reasonLiterals(s, l, nil)
	stack = append(stack, redundancyFrame{lit: l, reason: start})

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.idx >= len(top.reason) {
			s.stamps.Set(int(top.lit.Var()), stampRemovable)
			stack = stack[:len(stack)-1]
			continue
		}
		q := top.reason[top.idx]
		top.idx++

		v := q.Var()
		if s.seenVar.Contains(int(v)) || s.stamps.Get(int(v)) == stampRemovable {
			continue
		}
		if s.level[v] == 0 {
			continue
		}
		if s.stamps.Get(int(v)) == stampPoison {
			s.markPoisonChain(stack)
			return false
		}

		qAnte := s.reason[v]
		if qAnte.IsNull() {
			s.markPoisonChain(stack)
			return false
		}
		stack = append(stack, redundancyFrame{lit: q, reason: qAnte.reasonLiterals(s, q, nil)})
	}
	return true
}

// markPoisonChain stamps every literal currently on the DFS stack as
// poison: none of them can be proven removable now that the walk has
// hit a non-redundant literal, and memoizing that verdict keeps a
// later call from re-walking the same sub-chain.
func (s *Solver) markPoisonChain(stack []redundancyFrame) {
	for _, f := range stack {
		s.stamps.Set(int(f.lit.Var()), stampPoison)
	}
}

// decide picks and assumes the next decision literal from VarOrder,
// returning false if no unassigned variable remains (the formula is
// satisfied).
func (s *Solver) decide() bool {
	for s.NumAssigns() < s.NumVariables()-1 { // -1: sentinel is always assigned
		l := s.order.NextDecision(s)
		if s.VarValue(l.Var()) != Unknown {
			continue
		}
		s.TotalDecisions++
		s.assume(l)
		return true
	}
	return false
}

// Search runs CDCL until the formula is decided SAT/UNSAT or limits.
// MaxConflicts is reached (in which case it returns Unknown and the
// caller, per yass's outer Solve loop, may call Search again with a
// larger budget after an implicit restart to the root level).
func (s *Solver) Search(limits SearchLimits) LBool {
	if s.unsat {
		return False
	}

	s.TotalRestarts++
	s.printSearchStats()
	conflictsThisSearch := int64(0)

	for {
		if s.interrupted() {
			return Unknown
		}
		if s.Propagate() {
			s.TotalConflicts++
			conflictsThisSearch++

			if s.decisionLevel() == s.rootLevel {
				s.unsat = true
				return False
			}

			learnt, backtrackLevel := s.analyzeConflict()
			if backtrackLevel < s.rootLevel {
				backtrackLevel = s.rootLevel
			}
			s.cancelUntil(backtrackLevel)

			c, ok := NewClause(s, learnt, true)
			if !ok {
				s.unsat = true
				return False
			}
			if c != nil {
				s.BumpClauseActivity(c)
				if s.dist != nil && s.dist.IsCandidate(s.computeLBD(c.lits), len(c.lits)) {
					s.dist.Publish(c.lits)
				}
			}
			if !s.enqueue(learnt[0], s.learntAntecedent(c, learnt)) {
				s.unsat = true
				return False
			}
			s.destroySubsumedClauses(c)

			s.order.DecayScores()
			continue
		}

		if limits.MaxConflicts >= 0 && conflictsThisSearch >= limits.MaxConflicts {
			s.cancelUntil(s.rootLevel)
			return Unknown
		}

		if s.decisionLevel() == s.rootLevel {
			if !s.Simplify() {
				return False
			}
		}

		if s.TotalConflicts >= s.reduceNext && len(s.learnts) > 0 {
			s.ReduceDB()
			s.DecayClauseActivity()
			s.reduceInc += s.reduceGrowth
			s.reduceNext = s.TotalConflicts + s.reduceInc
			s.printSearchStats()
		}

		if lits, ok := s.drainDistributor(); ok {
			_ = lits
		}

		if !s.decide() {
			s.saveModel()
			s.cancelUntil(s.rootLevel)
			return True
		}
	}
}

// Solve drives Search with a conflict budget that grows by 10% after
// every round that returns Unknown, mirroring yass's own outer Solve
// loop (internal/sat/solver.go): RestartBase seeds the first round's
// budget, and each restart gives the search a larger window before the
// next one. Search itself cancels back to the root level on every
// Unknown/True return, so each round starts from a clean slate with
// the decision heuristic's bumped activities carried over.
func (s *Solver) Solve() LBool {
	budget := int64(s.restartBase)
	if budget <= 0 {
		budget = 100
	}
	status := Unknown
	for status == Unknown {
		status = s.Search(SearchLimits{MaxConflicts: budget})
		if s.interrupted() {
			break
		}
		budget += budget / 10
	}
	return status
}

// learntAntecedent returns the antecedent to use when enqueueing the
// asserting literal of a freshly learnt clause: a real Antecedent
// referencing c when one was allocated (length >= 4), or the
// appropriate short-implication antecedent otherwise. NewClause has
// already attached the short-implication edges in that case, so the
// antecedent here only needs to match what analyzeConflict resolved
// against; a generic antecedent pointing at nothing is never correct,
// so length 2/3 learnt clauses reconstruct their own binary/ternary
// antecedent directly from the learnt literal set.
func (s *Solver) learntAntecedent(c *Clause, learnt []Literal) Antecedent {
	switch len(learnt) {
	case 1:
		return DecisionAntecedent
	case 2:
		return BinaryAntecedent(learnt[1].Opposite())
	case 3:
		return TernaryAntecedent(learnt[1].Opposite(), learnt[2].Opposite())
	default:
		return GenericAntecedent(c)
	}
}

// destroySubsumedClauses drops every clause analyzeConflict flagged as
// on-the-fly subsumed by the clause just learnt (which, per OTFS, never
// fires against the learnt clause itself, so skipping `keep` is safe).
// A candidate that backtracking already unlocked is removed from
// whichever of clauses/learnts holds it; one still locked (still an
// antecedent after backjumping, which can happen when the resolved
// literal sat at or below the backtrack level) is left alone rather
// than violating IN5.
func (s *Solver) destroySubsumedClauses(keep *Clause) {
	for _, cl := range s.otfsCandidates {
		if cl == keep || cl.Locked(s) {
			continue
		}
		cl.Destroy(s, true)
		s.clauses = removeClause(s.clauses, cl)
		s.learnts = removeClause(s.learnts, cl)
	}
	s.otfsCandidates = s.otfsCandidates[:0]
}

func removeClause(cs []*Clause, target *Clause) []*Clause {
	for i, c := range cs {
		if c == target {
			return append(cs[:i], cs[i+1:]...)
		}
	}
	return cs
}

func (s *Solver) drainDistributor() ([]Literal, bool) {
	if s.dist == nil {
		return nil, false
	}
	lits, ok := s.dist.Receive()
	if !ok {
		return nil, false
	}
	if _, added := NewClause(s, lits, true); !added {
		s.unsat = true
	}
	return lits, true
}

func (s *Solver) saveModel() {
	model := make([]LBool, s.NumVariables())
	for v := range model {
		model[v] = s.VarValue(Var(v))
	}
	s.model = model
}

package sat

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Solver is a single CDCL search attached to a (possibly shared)
// SharedContext. Its layout and the shape of its core loop are
// grounded directly on yass's internal/sat/solver.go, generalized
// along three axes the spec calls for: a tagged Antecedent instead of
// a bare *Clause reason, a second (generic) watch list for aggregates
// sitting alongside the clause hot path, and a post-propagator chain
// run to fixpoint after every unit-propagation pass.
type Solver struct {
	ctx *SharedContext

	// Clause database.
	clauses    []*Clause
	learnts    []*Clause
	aggregates []Constraint // static weight/minimize constraints

	// Variable ordering.
	order    *VarOrder
	varDecay float64

	// Watch lists, indexed by Literal.index().
	watchersClause  [][]clauseWatch
	watchersGeneric [][]Constraint
	undoWatches     [][]Constraint // indexed by decision level

	// Short-implication graph (private, forked from ctx at Attach).
	shortImpl *shortImplications

	// Assignment state.
	assign   []LBool // indexed by Literal.index()
	level    []int32 // indexed by Var
	reason   []Antecedent
	trailPos []int32 // indexed by Var; trail index of its current assignment, -1 if unassigned
	trail    []Literal
	trailLim []int // trail index where decision level i+1 begins

	propHead int // next trail index to propagate

	// Post-propagators, sorted by priority ascending.
	postProps []PostPropagator

	// Root-level conflict.
	unsat bool

	rootLevel int

	// Search statistics.
	TotalConflicts int64
	TotalRestarts  int64
	TotalDecisions int64

	// Conflict scratch (exactly one of cons/lits is populated).
	conflCons Constraint
	conflLits []Literal

	// Shared by operations that need an O(1)-clearable variable set.
	seenVar *resetSet
	stamps  *epochStamps
	lbdSeen *resetSet

	tmpLearnt []Literal
	tmpReason []Literal

	// otfsCandidates collects, per analyzeConflict call, every clause
	// antecedent visited while walking the trail whose literal set
	// (minus the resolved variable) was already a subset of the
	// resolvent under construction (§4.4 on-the-fly subsumption). It is
	// drained and destroyed by Search right after the corresponding
	// learnt clause is added.
	otfsCandidates []*Clause

	reduceStrategy ReduceStrategy
	minMode        MinimizationMode
	restartBase    int

	// Reduction schedule (§4.6): reduceNext is the conflict count at
	// which the next ReduceDB runs; reduceInc arithmetically widens
	// the interval after each reduction, by reduceGrowth each time.
	reduceBase   int64
	reduceGrowth int64
	reduceInc    int64
	reduceNext   int64

	interruptFlag int32 // set via atomic, checked between decisions

	dist Distributor

	model []LBool

	trace bool
}

// NewSolver returns a Solver ready to Attach to ctx.
func NewSolver(ctx *SharedContext, opts Options) *Solver {
	s := &Solver{
		ctx:             ctx,
		varDecay:        opts.VarDecay,
		order:           NewVarOrder(opts.VarDecay, opts.PhaseSaving),
		shortImpl:       newShortImplications(),
		seenVar:         &resetSet{},
		stamps:          &epochStamps{},
		lbdSeen:         &resetSet{},
		reduceStrategy:  opts.ReduceStrategy,
		minMode:         opts.CCMinimization,
		restartBase:     opts.RestartBase,
		reduceBase:      opts.ReduceBase,
		reduceGrowth:    opts.ReduceGrowth,
		reduceInc:       opts.ReduceBase,
		reduceNext:      opts.ReduceBase,
		trace:           opts.Trace,
	}
	return s
}

// printSearchStats writes one trace line (restarts, conflicts, decisions,
// learnt-DB size) to os.Stderr, mirroring yass's printSearchStats; a
// no-op unless Options.Trace was set.
func (s *Solver) printSearchStats() {
	if !s.trace {
		return
	}
	fmt.Fprintf(os.Stderr, "c restarts=%d conflicts=%d decisions=%d learnts=%d\n",
		s.TotalRestarts, s.TotalConflicts, s.TotalDecisions, len(s.learnts))
}

// Attach grows the solver to ctx's current size and materializes every
// raw clause and aggregate ctx holds. ctx must already be frozen. It
// always returns nil: a construction-time conflict that makes the
// problem trivially unsatisfiable marks the solver unsat instead, and
// Solve then immediately reports False through the ordinary search API.
func (s *Solver) Attach() error {
	if !s.ctx.Frozen() {
		panic("sat: Attach called on an unfrozen SharedContext")
	}
	s.initSentinel()
	n := s.ctx.NumVars()
	for v := 1; v < n; v++ {
		info := s.ctx.varInfo[v]
		s.growOneVar(info.PreferTrue)
	}

	for _, rc := range s.ctx.rawClauses {
		if _, ok := NewClause(s, rc.lits, false); !ok {
			s.unsat = true
		}
	}
	for _, agg := range s.ctx.rawAggregates {
		c := newWeightConstraint(s, agg.head, agg.lits, agg.weights, agg.bound)
		if c == nil {
			continue
		}
		s.aggregates = append(s.aggregates, c)
	}
	for _, lit := range s.ctx.compute {
		if !s.enqueue(lit, DecisionAntecedent) {
			s.unsat = true
		}
	}
	if s.unsat {
		return nil
	}
	if conflict := s.Propagate(); conflict {
		s.unsat = true
	}
	return nil
}

// initSentinel allocates storage for the permanently-true sentinel
// variable 0, including its VarOrder slot: VarOrder.AddVar assigns
// internal slots densely from 0 in call order, so Var 0 must claim slot
// 0 here or every later growOneVar call (which registers Var v via its
// v-th AddVar call) would end up one slot ahead of the Var it actually
// describes. The sentinel is never offered to VarOrder as a decision
// candidate: its value is never Unknown, so NextDecision's Unknown
// check skips it the one time it could ever be popped.
func (s *Solver) initSentinel() {
	s.level = append(s.level, 0)
	s.reason = append(s.reason, DecisionAntecedent)
	s.trailPos = append(s.trailPos, -1)
	s.assign = append(s.assign, True, False) // [PositiveLiteral(0), NegativeLiteral(0)]
	s.watchersClause = append(s.watchersClause, nil, nil)
	s.watchersGeneric = append(s.watchersGeneric, nil, nil)
	s.shortImpl.grow(2)
	s.seenVar.Grow(1)
	s.stamps.Grow(1)
	s.lbdSeen.Grow(1)
	s.order.AddVar(0, false)
}

// growOneVar allocates storage for one freshly attached real variable
// and registers it with the decision heuristic.
func (s *Solver) growOneVar(preferTrue bool) Var {
	v := Var(len(s.level))
	s.level = append(s.level, -1)
	s.reason = append(s.reason, DecisionAntecedent)
	s.trailPos = append(s.trailPos, -1)
	s.assign = append(s.assign, Unknown, Unknown)
	s.watchersClause = append(s.watchersClause, nil, nil)
	s.watchersGeneric = append(s.watchersGeneric, nil, nil)
	s.shortImpl.grow(2 * (int(v) + 1))
	s.seenVar.Grow(int(v) + 1)
	s.stamps.Grow(int(v) + 1)
	s.lbdSeen.Grow(int(v) + 1)
	s.order.AddVar(0, preferTrue)
	return v
}

// NumVariables returns the number of allocated variables, including
// the sentinel.
func (s *Solver) NumVariables() int { return len(s.level) }

// NumAssigns returns the number of literals currently on the trail.
func (s *Solver) NumAssigns() int { return len(s.trail) }

// NumLearnts returns the number of allocated learnt clauses (length >= 4).
func (s *Solver) NumLearnts() int { return len(s.learnts) }

func (s *Solver) decisionLevel() int { return len(s.trailLim) }

func (s *Solver) currentLevel() int { return s.decisionLevel() }

// VarValue returns the current value of v.
func (s *Solver) VarValue(v Var) LBool {
	return s.assign[PositiveLiteral(v).index()]
}

func (s *Solver) value(l Literal) LBool {
	return s.assign[l.index()]
}

// TrailPosition returns the trail index at which l's variable was most
// recently assigned, or -1 if it is currently unassigned. Constraints
// whose Reason recomputes from the live assignment (rather than
// recording an incremental snapshot) use this to honor IN2 (a reason
// may only cite literals assigned strictly before the literal being
// explained).
func (s *Solver) TrailPosition(l Literal) int32 {
	return s.trailPos[l.Var()]
}

func (s *Solver) litLevel(l Literal) int32 {
	return s.level[l.Var()]
}

// Unsat reports whether the problem was found unsatisfiable at the
// root level, either during construction or search.
func (s *Solver) Unsat() bool { return s.unsat }

// Model returns the satisfying assignment found by the last successful
// Search call, indexed by Var (index 0 unused).
func (s *Solver) Model() []LBool { return s.model }

// --- watch list management -------------------------------------------------

func (s *Solver) watchClause(l Literal, w clauseWatch) {
	s.watchersClause[l.index()] = append(s.watchersClause[l.index()], w)
}

func (s *Solver) unwatchClause(l Literal, c *Clause) {
	ws := s.watchersClause[l.index()]
	j := 0
	for i := range ws {
		if ws[i].clause != c {
			ws[j] = ws[i]
			j++
		}
	}
	s.watchersClause[l.index()] = ws[:j]
}

func (s *Solver) watchGeneric(l Literal, c Constraint) {
	s.watchersGeneric[l.index()] = append(s.watchersGeneric[l.index()], c)
}

func (s *Solver) unwatchGeneric(l Literal, c Constraint) {
	ws := s.watchersGeneric[l.index()]
	j := 0
	for i := range ws {
		if ws[i] != c {
			ws[j] = ws[i]
			j++
		}
	}
	s.watchersGeneric[l.index()] = ws[:j]
}

// addUndo registers c to be notified when level is unwound.
func (s *Solver) addUndo(level int, c Constraint) {
	for len(s.undoWatches) <= level {
		s.undoWatches = append(s.undoWatches, nil)
	}
	s.undoWatches[level] = append(s.undoWatches[level], c)
}

func (s *Solver) isAntecedentOf(l Literal, c Constraint) bool {
	if s.value(l) != True {
		return false
	}
	ante := s.reason[l.Var()]
	return ante.tag == antGeneric && ante.cons == c
}

// AddPostPropagator registers pp, keeping the chain sorted by
// ascending priority (§4.9: lower priority runs first).
func (s *Solver) AddPostPropagator(pp PostPropagator) {
	i := len(s.postProps)
	s.postProps = append(s.postProps, pp)
	for i > 0 && s.postProps[i-1].Priority() > pp.Priority() {
		s.postProps[i-1], s.postProps[i] = s.postProps[i], s.postProps[i-1]
		i--
	}
}

// SetDistributor attaches the clause-sharing hook used by sibling
// solvers (§6.3). A nil Distributor (the default) disables sharing.
func (s *Solver) SetDistributor(d Distributor) {
	s.dist = d
}

// Interrupt asynchronously requests that an in-progress Search return
// at its next opportunity. Safe to call from another goroutine.
func (s *Solver) Interrupt() {
	atomic.StoreInt32(&s.interruptFlag, 1)
}

func (s *Solver) interrupted() bool {
	return atomic.LoadInt32(&s.interruptFlag) != 0
}

// --- short-implication attachment --------------------------------------

func (s *Solver) attachBinary(a, b Literal, learnt bool) bool {
	s.shortImpl.addBinary(a.Opposite(), b)
	s.shortImpl.addBinary(b.Opposite(), a)
	va, vb := s.value(a), s.value(b)
	if va == False && vb == False {
		s.conflCons = nil
		s.conflLits = append(s.conflLits[:0], a.Opposite(), b.Opposite())
		return false
	}
	if va == False {
		return s.enqueue(b, BinaryAntecedent(a.Opposite()))
	}
	if vb == False {
		return s.enqueue(a, BinaryAntecedent(b.Opposite()))
	}
	return true
}

func (s *Solver) attachTernary(a, b, c Literal, learnt bool) bool {
	s.shortImpl.addTernary(a.Opposite(), b, c)
	s.shortImpl.addTernary(b.Opposite(), a, c)
	s.shortImpl.addTernary(c.Opposite(), a, b)

	va, vb, vc := s.value(a), s.value(b), s.value(c)
	nFalse := 0
	if va == False {
		nFalse++
	}
	if vb == False {
		nFalse++
	}
	if vc == False {
		nFalse++
	}
	switch {
	case nFalse == 3:
		s.conflCons = nil
		s.conflLits = append(s.conflLits[:0], a.Opposite(), b.Opposite(), c.Opposite())
		return false
	case nFalse == 2:
		switch {
		case va != False:
			return s.enqueue(a, TernaryAntecedent(b.Opposite(), c.Opposite()))
		case vb != False:
			return s.enqueue(b, TernaryAntecedent(a.Opposite(), c.Opposite()))
		default:
			return s.enqueue(c, TernaryAntecedent(a.Opposite(), b.Opposite()))
		}
	}
	return true
}

// --- assignment ----------------------------------------------------------

// enqueue assigns l true with the given antecedent, failing if l is
// already false.
func (s *Solver) enqueue(l Literal, ante Antecedent) bool {
	switch s.value(l) {
	case False:
		return false
	case True:
		return true
	default:
		s.assign[l.index()] = True
		s.assign[l.Opposite().index()] = False
		s.level[l.Var()] = int32(s.decisionLevel())
		s.reason[l.Var()] = ante
		s.trailPos[l.Var()] = int32(len(s.trail))
		s.trail = append(s.trail, l)
		return true
	}
}

// assume pushes a fresh decision level and enqueues l as a decision.
func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	return s.enqueue(l, DecisionAntecedent)
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.Var()
	lastVal := s.VarValue(v)
	s.order.Reinsert(v, lastVal)
	s.assign[l.index()] = Unknown
	s.assign[l.Opposite().index()] = Unknown
	s.reason[v] = DecisionAntecedent
	s.level[v] = -1
	s.trailPos[v] = -1
	s.trail = s.trail[:len(s.trail)-1]
}

func (s *Solver) cancel() {
	lvl := s.decisionLevel()
	if lvl < len(s.undoWatches) {
		for _, c := range s.undoWatches[lvl] {
			c.Undo(s, lvl)
		}
		s.undoWatches[lvl] = s.undoWatches[lvl][:0]
	}
	n := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; n != 0; n-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
	s.propHead = len(s.trail)
}

// --- propagation -----------------------------------------------------------

// Propagate drives unit propagation (short implications, then the
// clause hot path, then the generic watch list) to a fixpoint, and on
// success runs the post-propagator chain, repeating until nothing more
// is derived. It returns true if a conflict was detected.
func (s *Solver) Propagate() bool {
	for {
		if s.propagateCore() {
			return true
		}
		if len(s.postProps) == 0 {
			return false
		}
		progressed := false
		for _, pp := range s.postProps {
			head := len(s.trail)
			ok, changed := pp.Propagate(s)
			if !ok {
				return true
			}
			if changed || len(s.trail) != head {
				progressed = true
			}
		}
		if !progressed {
			return false
		}
	}
}

// propagateCore runs the short-implication graph and watched-clause
// passes to a fixpoint; it does not invoke post-propagators.
func (s *Solver) propagateCore() bool {
	for s.propHead < len(s.trail) {
		p := s.trail[s.propHead]
		s.propHead++

		if !s.propagateShort(p) {
			return true
		}
		if !s.propagateClauseWatches(p) {
			return true
		}
		if !s.propagateGenericWatches(p) {
			return true
		}
	}
	return false
}

func (s *Solver) propagateShort(p Literal) bool {
	for _, e := range s.shortImpl.binary[p.index()] {
		switch s.value(e.lit) {
		case False:
			s.conflCons = nil
			s.conflLits = append(s.conflLits[:0], p, e.lit.Opposite())
			return false
		case Unknown:
			s.enqueue(e.lit, BinaryAntecedent(p))
		}
	}
	for _, e := range s.shortImpl.ternary[p.index()] {
		vq, vr := s.value(e.q), s.value(e.r)
		switch {
		case vq == False && vr == False:
			s.conflCons = nil
			s.conflLits = append(s.conflLits[:0], p, e.q.Opposite(), e.r.Opposite())
			return false
		case vq == False && vr == Unknown:
			s.enqueue(e.r, TernaryAntecedent(p, e.q.Opposite()))
		case vr == False && vq == Unknown:
			s.enqueue(e.q, TernaryAntecedent(p, e.r.Opposite()))
		}
	}
	return true
}

func (s *Solver) propagateClauseWatches(p Literal) bool {
	ws := s.watchersClause[p.index()]
	j := 0
	for i := 0; i < len(ws); i++ {
		w := ws[i]
		if s.value(w.guard) == True {
			ws[j] = w
			j++
			continue
		}
		ok, keep := w.clause.clausePropagate(s, p.Opposite())
		if !ok {
			ws[j] = w
			j++
			s.watchersClause[p.index()] = append(ws[:j], ws[i+1:]...)
			s.conflCons = w.clause
			s.conflLits = nil
			return false
		}
		if keep {
			ws[j] = w
			j++
		}
	}
	s.watchersClause[p.index()] = ws[:j]
	return true
}

func (s *Solver) propagateGenericWatches(p Literal) bool {
	ws := s.watchersGeneric[p.index()]
	j := 0
	for i := 0; i < len(ws); i++ {
		c := ws[i]
		ok, keep := c.Propagate(s, p)
		if !ok {
			ws[j] = c
			j++
			s.watchersGeneric[p.index()] = append(ws[:j], ws[i+1:]...)
			s.conflCons = c
			s.conflLits = nil
			return false
		}
		if keep {
			ws[j] = c
			j++
		}
	}
	s.watchersGeneric[p.index()] = ws[:j]
	return true
}

// conflictReason appends the literals that make up the current
// conflict (set by propagateCore/the *Watches helpers) to out.
func (s *Solver) conflictReason(out []Literal) []Literal {
	if s.conflCons != nil {
		return s.conflCons.Reason(s, ConflictLiteral, out)
	}
	return append(out, s.conflLits...)
}

func (s *Solver) conflictMinimizeSet(out []Literal) []Literal {
	if s.conflCons != nil {
		return s.conflCons.Minimize(s, ConflictLiteral, out)
	}
	return append(out, s.conflLits...)
}

// --- clause/aggregate database management ---------------------------------

// AddClause adds a static clause at the root level.
func (s *Solver) AddClause(lits []Literal) error {
	if s.decisionLevel() != s.rootLevel {
		return ErrBelowRoot
	}
	c, ok := NewClause(s, lits, false)
	if c != nil {
		s.clauses = append(s.clauses, c)
	}
	if !ok {
		s.unsat = true
	}
	return nil
}

// Simplify drops root-satisfied clauses from both databases. Only
// valid at the root level.
func (s *Solver) Simplify() bool {
	if s.decisionLevel() != s.rootLevel {
		panic("sat: Simplify called below the root level")
	}
	if s.unsat || s.Propagate() {
		s.unsat = true
		return false
	}
	s.simplifyClauses(&s.learnts)
	s.simplifyClauses(&s.clauses)
	return true
}

func (s *Solver) simplifyClauses(cs *[]*Clause) {
	clauses := *cs
	j := 0
	for i := range clauses {
		if clauses[i].Simplify(s) {
			clauses[i].Destroy(s, true)
		} else {
			clauses[j] = clauses[i]
			j++
		}
	}
	*cs = clauses[:j]
}

// BumpClauseActivity increases c's activity score by one, saturating
// instead of overflowing the packed field. The increment itself goes
// through atomic.AddUint32 on the raw word (§3/§9: the packed score
// "must... admit atomic bump") even though today's single-solver core
// never contends on it; the packed activity bitfield is the low 22
// bits, so a plain +1 can never carry into the adjacent lbd/flag bits.
func (s *Solver) BumpClauseActivity(c *Clause) {
	if c.score.activity() >= scoreActivityMask {
		return
	}
	atomic.AddUint32((*uint32)(&c.score), 1)
}

// DecayClauseActivity halves every learnt clause's activity. Called
// periodically (once per reduceDB pass) rather than via a continuously
// inflated bump increment: the packed constraintScore field is a small
// fixed-width integer, not a float, so the classic MiniSat rescaling
// trick does not apply here and a simple halving schedule plays the
// same "forget old activity" role; Search invokes it once after each
// ReduceDB call.
func (s *Solver) DecayClauseActivity() {
	for _, c := range s.learnts {
		c.score = c.score.withActivity(c.score.activity() / 2)
	}
}

// computeLBD returns the number of distinct decision levels among lits
// (§3/§4.4), used both to score freshly learnt clauses and to decide
// whether a clause is "glue" (LBD <= 2) during reduction.
func (s *Solver) computeLBD(lits []Literal) int {
	s.lbdSeen.Clear()
	n := 0
	for _, l := range lits {
		lvl := int(s.litLevel(l))
		if lvl < 0 {
			continue
		}
		if !s.lbdSeen.Contains(lvl) {
			s.lbdSeen.Add(lvl)
			n++
		}
	}
	return n
}

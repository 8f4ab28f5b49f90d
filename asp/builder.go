package asp

import (
	"fmt"
	"sort"

	"github.com/rhartert/gocasp/sat"
)

// Builder accepts a stream of normalized ground rules from the (out of
// scope) grounder and compiles them into a sat.SharedContext: atom and
// body interning, equivalence/completion preprocessing (§4.9), Clark
// completion clause and weight-constraint emission, and the SCC-marked
// dependency graph an UnfoundedSetCheck post-propagator needs.
//
// Grounded on gokando's bipartite subgoal/dependency bookkeeping
// (SubgoalEntry/depAdj in slg_engine.go — reused here for the atom/body
// shape, not its WFS evaluation) and on xDarkicex-logic's
// SATPreprocessor fixpoint-loop shape (preprocessor.go: `for changed &&
// rounds < limit`), there being no teacher-repo precedent (yass never
// sees rules at all).
type Builder struct {
	ctx *sat.SharedContext

	atoms []atomNode // index 0 unused; atomID is 1-based
	ext   map[AtomID]atomID

	bodies     []bodyNode
	bodyByHash map[uint64][]bodyID

	names map[AtomID]string

	computeRaw []computeAssumption

	minLevels     map[int]*minLevelBuilder
	minPriorities []int

	frozenExternal map[AtomID]bool

	ended bool
	step  int // incremental step counter, bumped by Update

	dep      *DependencyGraph
	minimize *sat.MinimizeConstraint
}

type computeAssumption struct {
	atom AtomID
	sign bool
}

type minLevelBuilder struct {
	lits    []sat.Literal
	weights []int64
}

// NewBuilder returns a Builder that will emit into ctx. ctx must be
// unfrozen; EndProgram freezes it.
func NewBuilder(ctx *sat.SharedContext) *Builder {
	return &Builder{
		ctx:            ctx,
		atoms:          make([]atomNode, 1), // sentinel slot
		ext:            map[AtomID]atomID{},
		bodyByHash:     map[uint64][]bodyID{},
		names:          map[AtomID]string{},
		minLevels:      map[int]*minLevelBuilder{},
		frozenExternal: map[AtomID]bool{},
	}
}

// internAtom returns the internal atomID for external id a, allocating
// a fresh sat.Var (and atomNode) the first time a is seen.
func (b *Builder) internAtom(a AtomID) atomID {
	if id, ok := b.ext[a]; ok {
		return id
	}
	if b.ended {
		panic("asp: AddRule referenced a new atom after EndProgram")
	}
	id := atomID(len(b.atoms))
	v := b.ctx.AddVariable(sat.VarAtom)
	b.atoms = append(b.atoms, atomNode{var_: v, eq: id, value: sat.Unknown, bodyAlias: noBodyAlias})
	b.ext[a] = id
	return id
}

// find returns the equivalence-class representative of id, path
// compressing as it walks (§4.9 "equivalence detection").
func (b *Builder) find(id atomID) atomID {
	for b.atoms[id].eq != id {
		b.atoms[id].eq = b.atoms[b.atoms[id].eq].eq
		id = b.atoms[id].eq
	}
	return id
}

// union merges b's class into a's, keeping a's var as the surviving
// representative (atoms are merged in AddRule discovery order, so the
// lowest-numbered/earliest-seen atom is always kept — deterministic
// and good enough; nothing in §4.9 requires a specific choice of
// survivor).
func (b *Builder) union(a, c atomID) {
	ra, rc := b.find(a), b.find(c)
	if ra == rc {
		return
	}
	b.atoms[rc].eq = ra
	b.atoms[rc].eliminated = true
}

// AddRule intakes one ground rule (§6.1/§4.9). Minimize rules carry no
// head; Cardinality rules get an implicit weight of 1 per literal.
func (b *Builder) AddRule(r Rule) error {
	if b.ended {
		panic("asp: AddRule called after EndProgram")
	}

	switch r.Kind {
	case Minimize:
		return b.addMinimize(r)
	case Basic, Choice, Cardinality, Weight:
		return b.addHeadedRule(r)
	default:
		return fmt.Errorf("asp: unknown rule kind %d", r.Kind)
	}
}

func (b *Builder) addHeadedRule(r Rule) error {
	heads := make([]atomID, len(r.Head))
	for i, h := range r.Head {
		id := b.internAtom(h)
		if b.atoms[id].emitted {
			panic("asp: rule defines an atom already compiled by a previous EndProgram; freeze it and derive further support through a new atom instead")
		}
		heads[i] = id
	}

	bn := bodyNode{heads: heads, choice: r.Kind == Choice}
	switch r.Kind {
	case Cardinality, Weight:
		bn.kind = bodyWeight
		bn.bound = r.Bound
		for _, wl := range r.Body {
			id := b.internAtom(wl.Lit.Atom)
			w := wl.Weight
			if r.Kind == Cardinality {
				w = 1
			}
			if wl.Lit.Negative {
				bn.neg = append(bn.neg, id)
				bn.negWeights = append(bn.negWeights, w)
			} else {
				bn.pos = append(bn.pos, id)
				bn.posWeights = append(bn.posWeights, w)
			}
		}
	default:
		for _, wl := range r.Body {
			id := b.internAtom(wl.Lit.Atom)
			if wl.Lit.Negative {
				bn.neg = append(bn.neg, id)
			} else {
				bn.pos = append(bn.pos, id)
			}
		}
	}

	bid := b.internBody(bn)
	for _, h := range heads {
		b.atoms[h].defs = append(b.atoms[h].defs, bid)
	}
	return nil
}

func (b *Builder) addMinimize(r Rule) error {
	lb, ok := b.minLevels[r.Priority]
	if !ok {
		lb = &minLevelBuilder{}
		b.minLevels[r.Priority] = lb
		b.minPriorities = append(b.minPriorities, r.Priority)
	}
	for _, wl := range r.Body {
		id := b.internAtom(wl.Lit.Atom)
		v := b.atoms[id].var_
		lit := sat.PositiveLiteral(v)
		if wl.Lit.Negative {
			lit = sat.NegativeLiteral(v)
		}
		lb.lits = append(lb.lits, lit)
		lb.weights = append(lb.weights, wl.Weight)
	}
	return nil
}

// SetAtomName records a's printable name (§6.1), forwarded verbatim to
// the shared context's symbol table once a's variable exists.
func (b *Builder) SetAtomName(a AtomID, name string) {
	b.names[a] = name
}

// SetCompute adds `a` (or `not a` if sign is false) to the top-level
// assumption set (§6.1).
func (b *Builder) SetCompute(a AtomID, sign bool) {
	b.computeRaw = append(b.computeRaw, computeAssumption{atom: a, sign: sign})
}

// Freeze marks a as surviving to the next incremental step (§4.9
// "update"/§6.1 `freeze`).
func (b *Builder) Freeze(a AtomID) {
	b.frozenExternal[a] = true
}

// Unfreeze undoes a prior Freeze.
func (b *Builder) Unfreeze(a AtomID) {
	delete(b.frozenExternal, a)
}

// DependencyGraph returns the SCC-marked atom/body graph built by the
// last EndProgram/Update call, or nil before the first one.
func (b *Builder) DependencyGraph() *DependencyGraph {
	return b.dep
}

// EndProgram runs preprocessing to fixpoint, emits completion clauses
// and weight constraints into the shared context, computes the SCC
// dependency graph, and freezes the context (§4.9, §6.1 `end_program`).
func (b *Builder) EndProgram() error {
	if b.ended {
		panic("asp: EndProgram called twice")
	}
	b.preprocess()
	b.dep = b.buildDependencyGraph()
	if err := b.emit(); err != nil {
		return err
	}
	for atom, name := range b.names {
		id := b.find(b.internAtom(atom))
		b.ctx.SetAtomName(b.atoms[id].var_, name)
	}
	for _, c := range b.computeRaw {
		id := b.find(b.internAtom(c.atom))
		v := b.atoms[id].var_
		lit := sat.PositiveLiteral(v)
		if !c.sign {
			lit = sat.NegativeLiteral(v)
		}
		b.ctx.SetCompute(lit)
	}
	for a := range b.frozenExternal {
		id := b.find(b.internAtom(a))
		b.ctx.SetFrozenVar(b.atoms[id].var_, true)
	}
	if err := b.emitMinimize(); err != nil {
		return err
	}
	b.ended = true
	b.ctx.Freeze()
	return nil
}

func (b *Builder) emitMinimize() error {
	if len(b.minPriorities) == 0 {
		return nil
	}
	sort.Ints(b.minPriorities)
	var litLevels [][]sat.Literal
	var weightLevels [][]int64
	for _, p := range b.minPriorities {
		lvl := b.minLevels[p]
		litLevels = append(litLevels, lvl.lits)
		weightLevels = append(weightLevels, lvl.weights)
	}
	b.minimize = sat.NewMinimizeConstraint(litLevels, weightLevels)
	return nil
}

// minimize holds the compiled multi-level objective, if any Minimize
// rules were added. Exported via Minimize().
func (b *Builder) Minimize() *sat.MinimizeConstraint { return b.minimize }


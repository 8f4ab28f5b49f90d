package sat

// VarType tags what role a variable plays in the originating logic
// program (§3 "Variable info"). The solver itself never branches on
// this tag; it exists for callers (the asp package, symbol tables,
// projection/enumeration) to inspect.
type VarType uint8

const (
	VarPlain VarType = iota
	VarAtom
	VarBody
	VarHybrid
)

// VarInfo carries the per-variable metadata of §3: its type tag, a
// heuristic-preferred sign, and the eliminated/frozen/project flags.
type VarInfo struct {
	Type       VarType
	PreferTrue bool
	Eliminated bool
	Frozen     bool
	Project    bool
}

// rawClause is a not-yet-materialized static clause: a set of literals
// recorded against the shared context before any Solver attaches. It is
// turned into either a Clause (length >= 4) or short-implication graph
// entries (length 2 or 3) independently by every attaching Solver,
// since that construction needs a concrete assignment to evaluate
// literal values against (see SharedContext doc comment below).
type rawClause struct {
	lits []Literal
}

// SharedContext is the problem-level state §5 describes as shared
// across (potential) sibling solvers: variables, static clauses/
// aggregates, and the symbol table. It has two phases: while unfrozen,
// exactly one goroutine may mutate it (adding variables, clauses,
// names); Freeze ends that phase. Once frozen, SharedContext is
// immutable and may be read concurrently by any number of attaching
// Solvers.
//
// Clauses are stored here only as raw literal lists (rawClause), not as
// instantiated Clause objects: building a Clause (or a short-implication
// entry) requires evaluating each literal's current value, which in
// turn requires a concrete assignment — something that does not exist
// until a Solver attaches. Each Solver therefore privately materializes
// its own Clause objects, watch lists, and short-implication graph from
// these raw lists at Attach time (see Solver.Attach), which is also
// what keeps per-solver learning entirely private as §5 requires.
type SharedContext struct {
	varInfo []VarInfo
	symbols map[Var]string

	rawClauses    []rawClause
	rawAggregates []aggregateSpec

	compute []Literal // top-level assumption set from SetCompute

	frozen bool
}

// NewSharedContext returns an empty, unfrozen SharedContext with the
// sentinel variable already allocated.
func NewSharedContext() *SharedContext {
	ctx := &SharedContext{
		symbols: map[Var]string{},
	}
	// Variable 0 is the permanently-true sentinel; it is never returned
	// by AddVariable.
	ctx.varInfo = append(ctx.varInfo, VarInfo{})
	return ctx
}

// NumVars returns the number of allocated variables, including the
// sentinel.
func (ctx *SharedContext) NumVars() int {
	return len(ctx.varInfo)
}

// AddVariable grows the context with a new variable of the given type.
// It panics if the context is frozen (§5: "exactly one thread mutates
// the context... no solver may be attached").
func (ctx *SharedContext) AddVariable(t VarType) Var {
	if ctx.frozen {
		panic("sat: AddVariable called on a frozen SharedContext")
	}
	v := Var(len(ctx.varInfo))
	ctx.varInfo = append(ctx.varInfo, VarInfo{Type: t})
	return v
}

// VarInfo returns the metadata for v.
func (ctx *SharedContext) VarInfo(v Var) VarInfo {
	return ctx.varInfo[v]
}

// SetPreferredSign sets the heuristic-preferred sign for v.
func (ctx *SharedContext) SetPreferredSign(v Var, preferTrue bool) {
	if ctx.frozen {
		panic("sat: SetPreferredSign called on a frozen SharedContext")
	}
	ctx.varInfo[v].PreferTrue = preferTrue
}

// SetFrozenVar marks v as frozen (kept across simplification).
func (ctx *SharedContext) SetFrozenVar(v Var, frozen bool) {
	ctx.varInfo[v].Frozen = frozen
}

// SetProject marks v as relevant to projection-based enumeration.
func (ctx *SharedContext) SetProject(v Var, project bool) {
	ctx.varInfo[v].Project = project
}

// AddClause records a static clause. Returns ErrContextFrozen if the
// context is no longer accepting new problem-construction state, or
// ErrUnknownVar if lits references a variable never returned by
// AddVariable.
func (ctx *SharedContext) AddClause(lits []Literal) error {
	if ctx.frozen {
		return ErrContextFrozen
	}
	if !ctx.litsKnown(lits) {
		return ErrUnknownVar
	}
	cp := append([]Literal(nil), lits...)
	ctx.rawClauses = append(ctx.rawClauses, rawClause{lits: cp})
	return nil
}

// AddWeightConstraint records a static weight/cardinality constraint
// spec: head is forced true once the sum of true-literal weights
// reaches bound (§4.7).
func (ctx *SharedContext) AddWeightConstraint(head Literal, lits []Literal, weights []int64, bound int64) error {
	if ctx.frozen {
		return ErrContextFrozen
	}
	if !ctx.litKnown(head) || !ctx.litsKnown(lits) {
		return ErrUnknownVar
	}
	ctx.rawAggregates = append(ctx.rawAggregates, aggregateSpec{
		head:    head,
		lits:    append([]Literal(nil), lits...),
		weights: append([]int64(nil), weights...),
		bound:   bound,
	})
	return nil
}

// litKnown reports whether l's variable was allocated by AddVariable
// (or is the sentinel).
func (ctx *SharedContext) litKnown(l Literal) bool {
	return int(l.Var()) < len(ctx.varInfo)
}

func (ctx *SharedContext) litsKnown(lits []Literal) bool {
	for _, l := range lits {
		if !ctx.litKnown(l) {
			return false
		}
	}
	return true
}

// SetAtomName records a printable name for v in the symbol table.
func (ctx *SharedContext) SetAtomName(v Var, name string) {
	ctx.symbols[v] = name
}

// AtomName returns the printable name for v, if any.
func (ctx *SharedContext) AtomName(v Var) (string, bool) {
	name, ok := ctx.symbols[v]
	return name, ok
}

// SetCompute adds lit to the top-level assumption set.
func (ctx *SharedContext) SetCompute(lit Literal) {
	ctx.compute = append(ctx.compute, lit)
}

// Freeze ends the construction phase. Once frozen, the context is
// immutable and may be attached to by any number of Solvers.
func (ctx *SharedContext) Freeze() {
	ctx.frozen = true
}

// Frozen reports whether the context has been frozen.
func (ctx *SharedContext) Frozen() bool {
	return ctx.frozen
}

// Unfreeze reopens the construction phase. It exists solely for the
// incremental builder protocol (§4.9 "update"): once every Solver from
// the previous step has finished reading this context (the caller's
// responsibility — §5's single-mutator discipline applies again once
// this returns), a fresh round of AddVariable/AddClause/AddWeightConstraint
// calls may run before the next Freeze.
func (ctx *SharedContext) Unfreeze() {
	ctx.frozen = false
}

// aggregateSpec is the not-yet-materialized form of a weight/cardinality
// constraint, mirroring rawClause's role for Clause.
type aggregateSpec struct {
	head    Literal
	lits    []Literal
	weights []int64
	bound   int64
}

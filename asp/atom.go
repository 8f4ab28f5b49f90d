package asp

import "github.com/rhartert/gocasp/sat"

// atomNode is the builder's internal record for one ground atom: the
// solver variable it compiles to, the bodies that define it, and the
// bookkeeping the preprocessor and SCC pass need (§3 "Dependency
// graph", §4.9).
type atomNode struct {
	var_ sat.Var

	// defs lists the (interned) bodies whose head includes this atom.
	// "defining bodies" per §3.
	defs []bodyID

	// posDeps/negDeps are reconstructed on demand from body goal lists
	// (§9: "back-edges... recomputed from body goal lists on demand");
	// the SCC pass builds them freshly rather than maintaining them
	// incrementally through every equivalence merge.

	eq atomID // union-find parent; eq == self once resolved as a root

	value      sat.LBool // root-level value once known (preprocessing)
	eliminated bool      // true after being merged into another atom
	inSCC      bool      // marked true by the SCC pass; drives UnfoundedSetCheck
	frozen     bool      // survives across an incremental Update
	name       string

	// bodyAlias is the body this atom was found equivalent to (§4.9
	// point 2, "atom<->body"), or noBodyAlias if none. When set, var_
	// already equals bodies[bodyAlias].var_ and the atom's own
	// completion disjunction is skipped at emission time.
	bodyAlias bodyID

	// emitted guards against re-emitting this atom's completion clause
	// on a later EndProgram call after Update: a step only ever adds
	// bodies/atoms, so anything already compiled into the shared
	// context must stay that way rather than being re-asserted.
	emitted bool
}

// noBodyAlias marks an atomNode.bodyAlias as unset.
const noBodyAlias bodyID = -1

type atomID int32

// bodyKind distinguishes how a body's truth is compiled: a plain
// conjunction (Basic/Choice bodies) gets Clark-completion clauses; a
// Cardinality/Weight body gets a single sat.WeightConstraint instead
// (§4.9: "Weight/cardinality bodies are emitted as a single weight
// constraint, not as expanded clauses").
type bodyKind uint8

const (
	bodyNormal bodyKind = iota
	bodyWeight
)

// bodyNode is the builder's internal record for one interned body: its
// subgoals (split into positive/negative per §3) and the heads it
// supports.
type bodyNode struct {
	kind bodyKind

	pos []atomID // positive subgoals
	neg []atomID // negative subgoals

	// posWeights/negWeights carry each weight/cardinality subgoal's
	// weight aligned to its position in pos/neg respectively (cardinality/
	// weight bodies only): sat.WeightConstraint reasons over signed
	// literals directly, so unlike clasp's own WeightRule encoding this
	// builder does not need to reject negative weight-body subgoals. Kept
	// split rather than a single pos-then-neg slice so intake never has
	// to reorder weights to match the pos/neg split performed on the fly
	// as subgoals are classified by sign.
	posWeights []int64
	negWeights []int64
	bound      int64

	heads []atomID // atoms this body defines (possibly shared, choice)
	choice bool     // true if heads come from a Choice rule (no mutual exclusion)

	var_ sat.Var // the body's own solver variable ("B" in §4.9's clauses)

	eliminated bool
	value      sat.LBool

	// hash is the structural hash used to detect syntactically
	// identical bodies at intern time (§4.9 "bodies with identical
	// normalized content are shared").
	hash uint64

	// emitted mirrors atomNode.emitted: set once this body's clauses or
	// weight constraint have been compiled into the shared context, so
	// a later Update/EndProgram round never re-asserts them.
	emitted bool
}

type bodyID int32

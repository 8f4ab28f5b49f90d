package asp

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rhartert/gocasp/sat"
)

// UnfoundedSetCheck is the post-propagator of §4.8/§4.9 that rejects
// models the Clark completion alone would wrongly accept: a positive
// dependency cycle (`a :- b. b :- a.` with no other support) lets the
// completion's biconditionals admit {a,b} as well as {}, but only {} is
// a stable model, because neither atom has a non-circular
// justification (§8 scenario 4).
//
// Source-pointer maintenance (§4.8 "detects maximal unfounded sets
// using source-pointer maintenance") is realized here as: on every
// post-propagation round, recompute which SCC-marked atoms still have
// an externally justified defining body ("source"), collect the atoms
// that don't into one maximal unfounded set per fixpoint round, and add
// the corresponding loop-nogood clause through the ordinary clause
// machinery (sat.NewClause) rather than forcing atoms directly — this
// keeps the check a plain Constraint-free PostPropagator: once a loop
// nogood's external bodies are known false, ordinary unit propagation
// forces the loop's atoms false and explains it the same way any other
// clause would (§4.8's "forces the offending atoms false with generated
// loop-nogood clauses as reason").
//
// This recomputes sourcing from scratch every round instead of
// incrementally patching per-atom source pointers across backtracks
// (clasp's own approach); see DESIGN.md for why that tradeoff was made
// here.
type UnfoundedSetCheck struct {
	dep *DependencyGraph

	sccAtoms []atomID // every atom the dependency graph marked inSCC

	sourced []bool // scratch, indexed by atomID
	added   map[string]bool
}

// NewUnfoundedSetCheck returns a post-propagator over dep's SCC-marked
// atoms. It must be attached (sat.Solver.AddPostPropagator) after the
// builder that produced dep has run EndProgram.
func NewUnfoundedSetCheck(dep *DependencyGraph) *UnfoundedSetCheck {
	u := &UnfoundedSetCheck{dep: dep, added: map[string]bool{}}
	for id := 1; id < len(dep.b.atoms); id++ {
		if dep.b.atoms[id].inSCC {
			u.sccAtoms = append(u.sccAtoms, atomID(id))
		}
	}
	u.sourced = make([]bool, len(dep.b.atoms))
	return u
}

// Priority runs after ordinary clause/aggregate propagation but before
// minimize tightening (sat.MinimizeConstraint's priority 100): a model
// candidate's stability is a prerequisite the objective shouldn't
// tighten around, so unfounded-set rejection has to settle first
// (§4.9).
func (u *UnfoundedSetCheck) Priority() int { return 50 }

// Propagate recomputes sourcing for every SCC atom, and for each
// maximal set of currently-true, now-unsourced atoms, adds the loop
// nogood clause that will force them false once their external bodies
// are decided false.
func (u *UnfoundedSetCheck) Propagate(s *sat.Solver) (ok bool, changed bool) {
	if len(u.sccAtoms) == 0 {
		return true, false
	}

	for _, a := range u.sccAtoms {
		u.sourced[a] = false
	}

	// Fixpoint: an atom is sourced once some defining body is true and
	// every positive subgoal of that body is either outside the SCC or
	// already sourced.
	for progress := true; progress; {
		progress = false
		for _, a := range u.sccAtoms {
			if u.sourced[a] || s.VarValue(u.dep.b.atoms[a].var_) != sat.True {
				continue
			}
			if u.hasSource(s, a) {
				u.sourced[a] = true
				progress = true
			}
		}
	}

	var unfounded []atomID
	for _, a := range u.sccAtoms {
		if s.VarValue(u.dep.b.atoms[a].var_) == sat.True && !u.sourced[a] {
			unfounded = append(unfounded, a)
		}
	}
	if len(unfounded) == 0 {
		return true, false
	}

	extBodies := u.externalBodies(s, unfounded)
	sig := loopSignature(unfounded, extBodies)
	if u.added[sig] {
		return true, false
	}
	u.added[sig] = true

	lits := make([]sat.Literal, 0, len(unfounded)+len(extBodies))
	for _, a := range unfounded {
		lits = append(lits, sat.NegativeLiteral(u.dep.b.atoms[a].var_))
	}
	for _, bid := range extBodies {
		lits = append(lits, sat.PositiveLiteral(u.dep.b.bodies[bid].var_))
	}

	if _, ok := sat.NewClause(s, lits, true); !ok {
		return false, false
	}
	return true, true
}

// hasSource reports whether atom a has a currently-true defining body
// whose positive subgoals are all either outside the SCC or already
// marked sourced.
func (u *UnfoundedSetCheck) hasSource(s *sat.Solver, a atomID) bool {
	for _, bid := range u.dep.DefiningBodies(a) {
		bn := &u.dep.b.bodies[bid]
		if s.VarValue(bn.var_) != sat.True {
			continue
		}
		external := true
		for _, p := range bn.pos {
			r := u.dep.b.find(p)
			if u.dep.b.atoms[r].inSCC && !u.sourced[r] {
				external = false
				break
			}
		}
		if external {
			return true
		}
	}
	return false
}

// externalBodies collects, for every atom in an unfounded set, the
// defining bodies that are NOT purely dependent on that same set
// (i.e. have at least one positive subgoal outside it) — the
// candidates that could still legitimately justify the loop later,
// which is what the generated clause leaves open (§4.8's "loop-nogood
// clauses").
func (u *UnfoundedSetCheck) externalBodies(s *sat.Solver, unfounded []atomID) []bodyID {
	inSet := map[atomID]bool{}
	for _, a := range unfounded {
		inSet[a] = true
	}

	seen := map[bodyID]bool{}
	var out []bodyID
	for _, a := range unfounded {
		for _, bid := range u.dep.DefiningBodies(a) {
			if seen[bid] {
				continue
			}
			bn := &u.dep.b.bodies[bid]
			purelyInternal := true
			for _, p := range bn.pos {
				if !inSet[u.dep.b.find(p)] {
					purelyInternal = false
					break
				}
			}
			if len(bn.pos) == 0 {
				purelyInternal = false
			}
			if !purelyInternal {
				seen[bid] = true
				out = append(out, bid)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func loopSignature(unfounded []atomID, ext []bodyID) string {
	sorted := append([]atomID(nil), unfounded...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var sb strings.Builder
	for _, a := range sorted {
		sb.WriteString("a")
		sb.WriteString(strconv.Itoa(int(a)))
		sb.WriteByte(',')
	}
	for _, b := range ext {
		sb.WriteString("b")
		sb.WriteString(strconv.Itoa(int(b)))
		sb.WriteByte(',')
	}
	return sb.String()
}

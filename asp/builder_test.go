package asp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rhartert/gocasp/sat"
)

// This test suite realizes the six concrete scenarios as end-to-end
// checks over Builder/sat.Solver, in the same spirit as yass's own
// TestSolveAll: build a program, solve it (possibly enumerating every
// model via the solve-and-block pattern), and compare the resulting
// model set against the expected one with cmp.Equal.

const falseAtom AtomID = 1_000_000

func addIntegrityConstraint(b *Builder, body []WeightedLit) {
	if err := b.AddRule(Rule{Kind: Basic, Head: []AtomID{falseAtom}, Body: body}); err != nil {
		panic(err)
	}
}

func mustAddRule(t *testing.T, b *Builder, r Rule) {
	t.Helper()
	if err := b.AddRule(r); err != nil {
		t.Fatalf("AddRule(%+v) = %v, want nil", r, err)
	}
}

// solveAllModels enumerates every model of s restricted to vars,
// mirroring yass's own solveAll (yass_test.go): repeatedly Solve, then
// block the model just found by forbidding its exact assignment over
// vars before solving again.
func solveAllModels(t *testing.T, s *sat.Solver, vars []sat.Var) [][]bool {
	t.Helper()
	var models [][]bool
	for {
		status := s.Solve()
		if status != sat.True {
			break
		}
		model := s.Model()
		row := make([]bool, len(vars))
		blocker := make([]sat.Literal, len(vars))
		for i, v := range vars {
			row[i] = model[v] == sat.True
			if row[i] {
				blocker[i] = sat.NegativeLiteral(v)
			} else {
				blocker[i] = sat.PositiveLiteral(v)
			}
		}
		models = append(models, row)
		if err := s.AddClause(blocker); err != nil {
			t.Fatalf("AddClause(%v) = %v, want nil", blocker, err)
		}
	}
	return models
}

func toString(model []bool) string {
	s := make([]byte, 0, len(model))
	for _, b := range model {
		if b {
			s = append(s, 1)
		} else {
			s = append(s, 0)
		}
	}
	return string(s)
}

func toSet(models [][]bool) map[string]struct{} {
	set := map[string]struct{}{}
	for _, m := range models {
		set[toString(m)] = struct{}{}
	}
	return set
}

func hole(pigeon, h int) AtomID    { return AtomID(10*pigeon + h) }
func covered(pigeon int) AtomID    { return AtomID(100 + pigeon) }

// TestPigeonhole_Unsat realizes §8 scenario 1: 3 pigeons cannot occupy
// 2 holes one pigeon per hole.
func TestPigeonhole_Unsat(t *testing.T) {
	ctx := sat.NewSharedContext()
	b := NewBuilder(ctx)

	for p := 1; p <= 3; p++ {
		for h := 1; h <= 2; h++ {
			mustAddRule(t, b, Rule{Kind: Choice, Head: []AtomID{hole(p, h)}})
		}
	}
	for h := 1; h <= 2; h++ {
		for p := 1; p <= 3; p++ {
			for q := p + 1; q <= 3; q++ {
				addIntegrityConstraint(b, []WeightedLit{
					{Lit: PosLit(hole(p, h))},
					{Lit: PosLit(hole(q, h))},
				})
			}
		}
	}
	for p := 1; p <= 3; p++ {
		mustAddRule(t, b, Rule{
			Kind:  Cardinality,
			Head:  []AtomID{covered(p)},
			Body:  []WeightedLit{{Lit: PosLit(hole(p, 1))}, {Lit: PosLit(hole(p, 2))}},
			Bound: 1,
		})
		addIntegrityConstraint(b, []WeightedLit{{Lit: NegLit(covered(p))}})
	}
	b.SetCompute(falseAtom, false)

	if err := b.EndProgram(); err != nil {
		t.Fatalf("EndProgram() = %v, want nil", err)
	}

	s := sat.NewSolver(ctx, sat.DefaultOptions())
	if err := s.Attach(); err != nil {
		t.Fatalf("Attach() = %v, want nil", err)
	}
	status := s.Solve()
	if status != sat.False || !s.Unsat() {
		t.Fatalf("pigeonhole 3-into-2: Solve() = %v (Unsat()=%v), want False/true", status, s.Unsat())
	}
}

// TestChoiceEnumeration_FourModels realizes §8 scenario 2.
func TestChoiceEnumeration_FourModels(t *testing.T) {
	ctx := sat.NewSharedContext()
	b := NewBuilder(ctx)

	const a, bAtom AtomID = 1, 2
	mustAddRule(t, b, Rule{Kind: Choice, Head: []AtomID{a, bAtom}})

	if err := b.EndProgram(); err != nil {
		t.Fatalf("EndProgram() = %v, want nil", err)
	}

	s := sat.NewSolver(ctx, sat.DefaultOptions())
	if err := s.Attach(); err != nil {
		t.Fatalf("Attach() = %v, want nil", err)
	}

	va, _ := b.Var(a)
	vb, _ := b.Var(bAtom)
	got := solveAllModels(t, s, []sat.Var{va, vb})

	want := [][]bool{{false, false}, {true, false}, {false, true}, {true, true}}
	if len(got) != len(want) {
		t.Errorf("got %d models, want %d", len(got), len(want))
	}
	if !cmp.Equal(toSet(got), toSet(want)) {
		t.Errorf("model set mismatch: got %v, want %v", toSet(got), toSet(want))
	}
}

// TestTightProgram_UniqueModel realizes §8 scenario 3.
func TestTightProgram_UniqueModel(t *testing.T) {
	ctx := sat.NewSharedContext()
	b := NewBuilder(ctx)

	const a, bAtom, c AtomID = 1, 2, 3
	mustAddRule(t, b, Rule{Kind: Basic, Head: []AtomID{a}, Body: []WeightedLit{{Lit: PosLit(bAtom)}}})
	mustAddRule(t, b, Rule{Kind: Basic, Head: []AtomID{bAtom}, Body: []WeightedLit{{Lit: PosLit(c)}}})
	mustAddRule(t, b, Rule{Kind: Basic, Head: []AtomID{c}})

	if err := b.EndProgram(); err != nil {
		t.Fatalf("EndProgram() = %v, want nil", err)
	}

	s := sat.NewSolver(ctx, sat.DefaultOptions())
	if err := s.Attach(); err != nil {
		t.Fatalf("Attach() = %v, want nil", err)
	}

	va, _ := b.Var(a)
	vb, _ := b.Var(bAtom)
	vc, _ := b.Var(c)
	got := solveAllModels(t, s, []sat.Var{va, vb, vc})

	want := [][]bool{{true, true, true}}
	if !cmp.Equal(toSet(got), toSet(want)) {
		t.Errorf("model set mismatch: got %v, want %v", toSet(got), toSet(want))
	}
}

// TestNonTightProgram_RejectsUnfoundedModel realizes §8 scenario 4: the
// completion alone admits {} and {a,b}, but only {} is stable.
func TestNonTightProgram_RejectsUnfoundedModel(t *testing.T) {
	ctx := sat.NewSharedContext()
	b := NewBuilder(ctx)

	const a, bAtom AtomID = 1, 2
	mustAddRule(t, b, Rule{Kind: Basic, Head: []AtomID{a}, Body: []WeightedLit{{Lit: PosLit(bAtom)}}})
	mustAddRule(t, b, Rule{Kind: Basic, Head: []AtomID{bAtom}, Body: []WeightedLit{{Lit: PosLit(a)}}})

	if err := b.EndProgram(); err != nil {
		t.Fatalf("EndProgram() = %v, want nil", err)
	}

	s := sat.NewSolver(ctx, sat.DefaultOptions())
	s.AddPostPropagator(NewUnfoundedSetCheck(b.DependencyGraph()))
	if err := s.Attach(); err != nil {
		t.Fatalf("Attach() = %v, want nil", err)
	}

	va, _ := b.Var(a)
	vb, _ := b.Var(bAtom)
	got := solveAllModels(t, s, []sat.Var{va, vb})

	want := [][]bool{{false, false}}
	if !cmp.Equal(toSet(got), toSet(want)) {
		t.Errorf("model set mismatch: got %v, want %v (unfounded-set check should reject {a,b})", toSet(got), toSet(want))
	}
}

// TestWeightRulePropagation_ForcesHeadAtRoot realizes §8 scenario 5:
// a must become true from unit propagation alone, with no decision.
func TestWeightRulePropagation_ForcesHeadAtRoot(t *testing.T) {
	ctx := sat.NewSharedContext()
	b := NewBuilder(ctx)

	const x, y, z, a AtomID = 1, 2, 3, 4
	mustAddRule(t, b, Rule{Kind: Basic, Head: []AtomID{x}})
	mustAddRule(t, b, Rule{Kind: Basic, Head: []AtomID{y}})
	mustAddRule(t, b, Rule{
		Kind: Weight,
		Head: []AtomID{a},
		Body: []WeightedLit{
			{Lit: PosLit(x), Weight: 2},
			{Lit: PosLit(y), Weight: 2},
			{Lit: PosLit(z), Weight: 2},
		},
		Bound: 3,
	})

	if err := b.EndProgram(); err != nil {
		t.Fatalf("EndProgram() = %v, want nil", err)
	}

	s := sat.NewSolver(ctx, sat.DefaultOptions())
	if err := s.Attach(); err != nil {
		t.Fatalf("Attach() = %v, want nil", err)
	}

	va, _ := b.Var(a)
	if got := s.VarValue(va); got != sat.True {
		t.Errorf("VarValue(a) = %v after Attach, want True (forced by root-level unit propagation)", got)
	}
}

// TestMinimize_OptimalCostZero realizes §8 scenario 6: branch-and-bound
// over the compiled MinimizeConstraint converges to the empty model.
func TestMinimize_OptimalCostZero(t *testing.T) {
	ctx := sat.NewSharedContext()
	b := NewBuilder(ctx)

	const a, bAtom, c AtomID = 1, 2, 3
	mustAddRule(t, b, Rule{Kind: Choice, Head: []AtomID{a, bAtom, c}})
	mustAddRule(t, b, Rule{Kind: Minimize, Body: []WeightedLit{{Lit: PosLit(a), Weight: 1}}, Priority: 1})
	mustAddRule(t, b, Rule{Kind: Minimize, Body: []WeightedLit{{Lit: PosLit(bAtom), Weight: 2}}, Priority: 1})
	mustAddRule(t, b, Rule{Kind: Minimize, Body: []WeightedLit{{Lit: PosLit(c), Weight: 3}}, Priority: 1})

	if err := b.EndProgram(); err != nil {
		t.Fatalf("EndProgram() = %v, want nil", err)
	}

	s := sat.NewSolver(ctx, sat.DefaultOptions())
	m := b.Minimize()
	if m == nil {
		t.Fatalf("Minimize() = nil, want a compiled objective")
	}
	s.AddPostPropagator(m)
	if err := s.Attach(); err != nil {
		t.Fatalf("Attach() = %v, want nil", err)
	}

	var best int64 = -1
	for {
		status := s.Solve()
		if status != sat.True {
			break
		}
		best = m.ObjectiveValue(s, 0)
		m.Tighten(0, best)
	}

	if best != 0 {
		t.Errorf("optimal cost = %d, want 0", best)
	}
}

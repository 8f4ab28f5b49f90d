package sat

import "testing"

func newTestSolver(t *testing.T, nVars int) (*SharedContext, []Var) {
	t.Helper()
	ctx := NewSharedContext()
	vars := make([]Var, nVars)
	for i := range vars {
		vars[i] = ctx.AddVariable(VarPlain)
	}
	return ctx, vars
}

func mustAddClause(t *testing.T, ctx *SharedContext, lits ...Literal) {
	t.Helper()
	if err := ctx.AddClause(lits); err != nil {
		t.Fatalf("AddClause(%v) = %v, want nil", lits, err)
	}
}

func attach(t *testing.T, ctx *SharedContext) *Solver {
	t.Helper()
	ctx.Freeze()
	s := NewSolver(ctx, DefaultOptions())
	if err := s.Attach(); err != nil {
		t.Fatalf("Attach() = %v, want nil", err)
	}
	return s
}

func TestSolver_UnitPropagationAtRoot(t *testing.T) {
	ctx, vars := newTestSolver(t, 2)
	a, b := vars[0], vars[1]

	// a. a -> b (as a clause -a v b).
	mustAddClause(t, ctx, PositiveLiteral(a))
	mustAddClause(t, ctx, NegativeLiteral(a), PositiveLiteral(b))

	s := attach(t, ctx)
	if s.Unsat() {
		t.Fatalf("Unsat() = true, want false")
	}
	if got := s.VarValue(a); got != True {
		t.Errorf("VarValue(a) = %v, want True", got)
	}
	if got := s.VarValue(b); got != True {
		t.Errorf("VarValue(b) = %v, want True", got)
	}
}

func TestSolver_RootConflictIsUnsat(t *testing.T) {
	ctx, vars := newTestSolver(t, 1)
	a := vars[0]

	mustAddClause(t, ctx, PositiveLiteral(a))
	mustAddClause(t, ctx, NegativeLiteral(a))

	s := attach(t, ctx)
	if !s.Unsat() {
		t.Fatalf("Unsat() = false, want true")
	}
}

func TestSolver_SearchFindsSatisfyingModel(t *testing.T) {
	// (a v b) & (-a v b) & (a v -b): forces a=true, b=true.
	ctx, vars := newTestSolver(t, 2)
	a, b := vars[0], vars[1]

	mustAddClause(t, ctx, PositiveLiteral(a), PositiveLiteral(b))
	mustAddClause(t, ctx, NegativeLiteral(a), PositiveLiteral(b))
	mustAddClause(t, ctx, PositiveLiteral(a), NegativeLiteral(b))

	s := attach(t, ctx)
	result := s.Search(SearchLimits{MaxConflicts: -1})
	if result != True {
		t.Fatalf("Search() = %v, want True", result)
	}
	model := s.Model()
	if model[a] != True || model[b] != True {
		t.Errorf("model = {a: %v, b: %v}, want {a: True, b: True}", model[a], model[b])
	}
}

func TestSolver_SearchFindsUnsat(t *testing.T) {
	// (a v b) & (a v -b) & (-a v b) & (-a v -b): unsatisfiable once propagated and conflict-analyzed.
	ctx, vars := newTestSolver(t, 2)
	a, b := vars[0], vars[1]

	mustAddClause(t, ctx, PositiveLiteral(a), PositiveLiteral(b))
	mustAddClause(t, ctx, PositiveLiteral(a), NegativeLiteral(b))
	mustAddClause(t, ctx, NegativeLiteral(a), PositiveLiteral(b))
	mustAddClause(t, ctx, NegativeLiteral(a), NegativeLiteral(b))

	s := attach(t, ctx)
	result := s.Search(SearchLimits{MaxConflicts: -1})
	if result != False {
		t.Fatalf("Search() = %v, want False", result)
	}
	if !s.Unsat() {
		t.Errorf("Unsat() = false after a False search result, want true")
	}
}

func TestSolver_LongClauseForcesUnitWhenAllButOneFalse(t *testing.T) {
	ctx, vars := newTestSolver(t, 4)
	a, b, c, d := vars[0], vars[1], vars[2], vars[3]

	// a v b v c v d, with -b, -c, -d asserted: d... wait a must become true.
	mustAddClause(t, ctx, PositiveLiteral(a), PositiveLiteral(b), PositiveLiteral(c), PositiveLiteral(d))
	mustAddClause(t, ctx, NegativeLiteral(b))
	mustAddClause(t, ctx, NegativeLiteral(c))
	mustAddClause(t, ctx, NegativeLiteral(d))

	s := attach(t, ctx)
	if got := s.VarValue(a); got != True {
		t.Errorf("VarValue(a) = %v, want True", got)
	}
}

func TestSolver_TernaryShortImplicationPropagates(t *testing.T) {
	ctx, vars := newTestSolver(t, 3)
	a, b, c := vars[0], vars[1], vars[2]

	mustAddClause(t, ctx, PositiveLiteral(a), PositiveLiteral(b), PositiveLiteral(c))
	mustAddClause(t, ctx, NegativeLiteral(a))
	mustAddClause(t, ctx, NegativeLiteral(b))

	s := attach(t, ctx)
	if got := s.VarValue(c); got != True {
		t.Errorf("VarValue(c) = %v, want True (forced by the ternary clause)", got)
	}
}

func TestReduceDB_KeepsLockedAndGlueClauses(t *testing.T) {
	ctx, vars := newTestSolver(t, 6)
	// Build a chain of 4-literal clauses so conflict analysis actually
	// allocates Clause objects (length >= 4) to exercise ReduceDB on.
	for i := 0; i+3 < len(vars); i++ {
		mustAddClause(t, ctx,
			PositiveLiteral(vars[i]), PositiveLiteral(vars[i+1]),
			PositiveLiteral(vars[i+2]), PositiveLiteral(vars[i+3]))
	}
	s := attach(t, ctx)
	s.Search(SearchLimits{MaxConflicts: -1})

	for _, strat := range []ReduceStrategy{ReduceLinear, ReduceHeap, ReduceFullSort} {
		s.reduceStrategy = strat
		locked := map[*Clause]bool{}
		for _, c := range s.learnts {
			if c.Locked(s) {
				locked[c] = true
			}
		}
		before := len(s.learnts)
		s.ReduceDB()
		if len(s.learnts) > before {
			t.Errorf("strategy %v grew the learnt DB from %d to %d", strat, before, len(s.learnts))
		}
		for c := range locked {
			found := false
			for _, kept := range s.learnts {
				if kept == c {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("strategy %v destroyed a locked clause", strat)
			}
		}
	}
}

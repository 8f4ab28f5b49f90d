package sat

import (
	"sort"

	"github.com/rhartert/yagh"
)

// ReduceStrategy selects which of the three interchangeable learnt-
// database reduction algorithms a Solver uses. All three apply the
// same policy (keep the better half by quality, drop the rest unless
// locked or glue, LBD <= 2) and differ only in how they get there; §9
// calls for them to be swappable without touching the policy itself.
type ReduceStrategy uint8

const (
	// ReduceLinear sorts the learnt database once by (lbd, activity)
	// and drops the worse half except locked and glue clauses,
	// grounded on yass's ReduceDB (internal/sat/solver.go) extended
	// with an LBD primary key and the glue-clause carve-out.
	ReduceLinear ReduceStrategy = iota
	// ReduceHeap selects the worst half using a yagh binary heap
	// instead of a full sort, trading a larger constant for better
	// asymptotics on large learnt databases.
	ReduceHeap
	// ReduceFullSort stable-sorts the entire learnt database by
	// (lbd, activity) and keeps the better half; the simplest and
	// slowest of the three.
	ReduceFullSort
)

// clauseRank orders learnt clauses the same way regardless of which
// reduction algorithm is in use: lower LBD first (glue clauses are
// never candidates for removal), then lower activity.
func clauseRank(c *Clause) (lbd, activity uint32) {
	return c.score.lbd(), c.score.activity()
}

func clauseWorseThan(a, b *Clause) bool {
	al, aa := clauseRank(a)
	bl, ba := clauseRank(b)
	if al != bl {
		return al > bl
	}
	return aa < ba
}

// ReduceDB halves the learnt clause database, keeping locked clauses
// (currently serving as an antecedent) and clauses with LBD <= 2
// ("glue" clauses) regardless of activity, and dispatches to the
// configured ReduceStrategy for the rest.
func (s *Solver) ReduceDB() {
	switch s.reduceStrategy {
	case ReduceHeap:
		s.reduceHeap()
	case ReduceFullSort:
		s.reduceFullSort()
	default:
		s.reduceLinear()
	}
}

func (s *Solver) keepClause(c *Clause) bool {
	if c.Locked(s) {
		return true
	}
	return c.score.lbd() <= 2
}

// reduceLinear mirrors yass's ReduceDB: sort once by activity, drop
// the worse half that isn't locked, keeping a fixed threshold for the
// rest. LBD is folded into the comparator as the primary key instead
// of yass's pure activity order, since §4.4 treats low LBD as a
// stronger survival signal than raw bump count.
func (s *Solver) reduceLinear() {
	learnts := s.learnts
	sort.Slice(learnts, func(i, j int) bool {
		return clauseWorseThan(learnts[i], learnts[j])
	})

	half := len(learnts) / 2
	j := 0
	for i := 0; i < half; i++ {
		if s.keepClause(learnts[i]) {
			learnts[j] = learnts[i]
			j++
		} else {
			learnts[i].Destroy(s, true)
		}
	}
	for i := half; i < len(learnts); i++ {
		learnts[j] = learnts[i]
		j++
	}
	s.learnts = learnts[:j]
}

// reduceFullSort stable-sorts the entire database by (lbd, activity)
// and keeps the better half (plus anything locked or glue), the most
// conservative of the three strategies.
func (s *Solver) reduceFullSort() {
	learnts := append([]*Clause(nil), s.learnts...)
	sort.SliceStable(learnts, func(i, j int) bool {
		return clauseWorseThan(learnts[j], learnts[i])
	})

	keep := len(learnts) / 2
	out := learnts[:0:0]
	for i, c := range learnts {
		if i < keep || s.keepClause(c) {
			out = append(out, c)
		} else {
			c.Destroy(s, true)
		}
	}
	s.learnts = out
}

// rankKey packs (lbd, activity) into a single float64 so worseness can
// be compared as a plain ordering, higher meaning worse (higher LBD
// first, then lower activity, as in clauseWorseThan).
func rankKey(c *Clause) float64 {
	lbd, activity := clauseRank(c)
	return float64(lbd)*(1<<24) - float64(activity)
}

// reduceHeap selects the worst half for removal using the same yagh
// binary heap VarOrder uses for decision selection (heuristic.go),
// here keyed by index into s.learnts with the negated rankKey as
// priority so repeated Pop calls drain clauses worst-first, exactly
// the way VarOrder drains variables best-first from a negated score.
func (s *Solver) reduceHeap() {
	n := len(s.learnts)
	if n == 0 {
		return
	}

	h := yagh.New[float64](0)
	h.GrowBy(n)
	candidates := 0
	for i, c := range s.learnts {
		if s.keepClause(c) {
			continue
		}
		h.Put(i, -rankKey(c))
		candidates++
	}

	budget := n / 2
	removing := make(map[int]bool, budget)
	for len(removing) < budget && candidates > 0 {
		next, ok := h.Pop()
		if !ok {
			break
		}
		removing[next.Elem] = true
		candidates--
	}

	j := 0
	for i, c := range s.learnts {
		if removing[i] {
			c.Destroy(s, true)
			continue
		}
		s.learnts[j] = c
		j++
	}
	s.learnts = s.learnts[:j]
}

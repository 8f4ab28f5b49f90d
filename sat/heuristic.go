package sat

import (
	"github.com/rhartert/yagh"
)

// VarOrder maintains the VSIDS-style order in which unassigned
// variables are offered to the search as decisions. Grounded directly
// on yass's internal/sat/ordering.go, adapted from a bare int variable
// id to this package's Var type. The binary heap (github.com/rhartert/
// yagh) breaks ties on insertion order, which here coincides with the
// order variables were added to the SharedContext.
type VarOrder struct {
	order *yagh.IntMap[float64]

	scores     []float64 // in [0, 1e100)
	scoreInc   float64
	scoreDecay float64

	phases      []LBool
	phaseSaving bool
}

// NewVarOrder returns an empty VarOrder. decay is the per-conflict
// activity decay factor (typically ~0.95); phaseSaving enables
// remembering each variable's last assigned value across backtracks.
func NewVarOrder(decay float64, phaseSaving bool) *VarOrder {
	return &VarOrder{
		order:       yagh.New[float64](0),
		scoreInc:    1,
		scoreDecay:  decay,
		phaseSaving: phaseSaving,
	}
}

// AddVar registers a freshly allocated variable with the given initial
// score and preferred phase.
func (vo *VarOrder) AddVar(initScore float64, initPhase bool) {
	v := len(vo.phases)
	vo.scores = append(vo.scores, initScore)
	vo.phases = append(vo.phases, Lift(initPhase))
	vo.order.GrowBy(1)
	vo.order.Put(v, -initScore)
}

// Reinsert returns v to the pool of decision candidates, e.g. after it
// is unassigned by a backtrack. val is the value v held just before
// being unassigned, used for phase saving.
func (vo *VarOrder) Reinsert(v Var, val LBool) {
	if vo.phaseSaving {
		vo.phases[v] = val
	}
	vo.order.Put(int(v), -vo.scores[v])
}

// DecayScores shrinks the effective weight of past activity bumps by
// inflating the increment applied to future bumps, a la MiniSat/yass.
func (vo *VarOrder) DecayScores() {
	vo.scoreInc /= vo.scoreDecay
	if vo.scoreInc > 1e100 {
		vo.rescale()
	}
}

// BumpScore increases v's activity score, rescaling every score (and
// the increment) if v's score would otherwise overflow the working
// range.
func (vo *VarOrder) BumpScore(v Var) {
	newScore := vo.scores[v] + vo.scoreInc
	vo.scores[v] = newScore
	if vo.order.Contains(int(v)) {
		vo.order.Put(int(v), -newScore)
	}
	if newScore > 1e100 {
		vo.rescale()
	}
}

// NextDecision pops the highest-activity unassigned variable and
// returns it as a literal oriented by its saved (or default) phase.
func (vo *VarOrder) NextDecision(s *Solver) Literal {
	for {
		next, ok := vo.order.Pop()
		if !ok {
			panic("sat: no unassigned variable left for decision")
		}
		v := Var(next.Elem)
		if s.VarValue(v) != Unknown {
			continue
		}
		switch vo.phases[v] {
		case False:
			return NegativeLiteral(v)
		default:
			return PositiveLiteral(v)
		}
	}
}

func (vo *VarOrder) rescale() {
	vo.scoreInc *= 1e-100
	for v, sc := range vo.scores {
		newScore := sc * 1e-100
		vo.scores[v] = newScore
		if vo.order.Contains(v) {
			vo.order.Put(v, -newScore)
		}
	}
}

package sat

import "fmt"

// Var is a dense variable id in [0..N). Variable 0 is reserved by
// SharedContext as the permanently-true sentinel and is never returned
// by AddVariable.
type Var int32

// SentinelVar is the permanently-true sentinel variable, id 0.
const SentinelVar Var = 0

// Literal packs a variable id, its sign, and one caller-owned scratch
// flag bit: id<<2 | sign<<1 | flag. sign=0 means positive. The flag bit
// carries no semantic meaning to the solver itself, and the solver does
// not use it: conflict analysis marks variables through the seenVar set
// in solver.go instead.
type Literal int32

const (
	litFlagBit  = 1
	litSignBit  = 2
	litIDShift  = 2
)

// PositiveLiteral returns the positive literal of v.
func PositiveLiteral(v Var) Literal {
	return Literal(v) << litIDShift
}

// NegativeLiteral returns the negative literal of v.
func NegativeLiteral(v Var) Literal {
	return Literal(v)<<litIDShift | litSignBit
}

// SentinelLiteral is the literal that is always true: the positive
// literal of SentinelVar.
var SentinelLiteral = PositiveLiteral(SentinelVar)

// Var returns the variable this literal refers to.
func (l Literal) Var() Var {
	return Var(l >> litIDShift)
}

// IsPositive reports whether l is the positive literal of its variable.
func (l Literal) IsPositive() bool {
	return l&litSignBit == 0
}

// Opposite returns the complementary literal: same variable, same
// scratch flag, opposite sign.
func (l Literal) Opposite() Literal {
	return l ^ litSignBit
}

// ScratchFlag returns the caller-owned scratch bit. It has no meaning
// to the solver and is preserved across Opposite.
func (l Literal) ScratchFlag() bool {
	return l&litFlagBit != 0
}

// WithScratchFlag returns l with its scratch bit set to v.
func (l Literal) WithScratchFlag(v bool) Literal {
	if v {
		return l | litFlagBit
	}
	return l &^ litFlagBit
}

// bare returns l with its scratch flag cleared, i.e. the canonical form
// used to index assignment/watch slices (the flag bit must never be
// allowed to alias two logically identical literals to different slots).
func (l Literal) bare() Literal {
	return l &^ litFlagBit
}

// index returns a dense, flag-independent slot number in [0, 2N) used to
// index per-literal slices (assignment values, watch lists, short
// implications). Two literals that differ only in their scratch flag
// always map to the same index.
func (l Literal) index() int {
	sign := 0
	if !l.IsPositive() {
		sign = 1
	}
	return int(l.Var())*2 + sign
}

func (l Literal) String() string {
	if l.IsPositive() {
		return fmt.Sprintf("%d", l.Var())
	}
	return fmt.Sprintf("-%d", l.Var())
}

// Complementary reports whether a and b are the same variable with
// opposite signs (scratch flag ignored).
func Complementary(a, b Literal) bool {
	return a.bare()^litSignBit == b.bare()
}

package sat

// antKind tags the four antecedent variants of §3: null (decision or
// assumption), binary/ternary (short-implication edges, no allocated
// object), and generic (ask the owning Constraint).
type antKind uint8

const (
	antNull antKind = iota
	antBinary
	antTernary
	antGeneric
)

// Antecedent is the tagged-union justification for an assigned literal.
// Binary and ternary antecedents store the already-true literal(s) whose
// short-implication edge forced the assignment, so Reason never needs to
// materialize a Clause object for them (§4.3 "short clauses... have no
// individual antecedent object"). Generic antecedents defer to the
// owning Constraint, which is the only case that pays virtual-dispatch
// cost (§9 "the hot path must not pay vtable cost").
type Antecedent struct {
	tag  antKind
	l1   Literal
	l2   Literal
	cons Constraint
}

// DecisionAntecedent is the null antecedent of a decision or assumption.
var DecisionAntecedent = Antecedent{tag: antNull}

// BinaryAntecedent returns the antecedent for a literal forced true
// because `cause` (already true) and a stored binary implication
// cause ⇒ lit apply.
func BinaryAntecedent(cause Literal) Antecedent {
	return Antecedent{tag: antBinary, l1: cause}
}

// TernaryAntecedent returns the antecedent for a literal forced true
// because cause1 and cause2 (both already true) and a stored ternary
// implication cause1 ∧ cause2 ⇒ lit apply.
func TernaryAntecedent(cause1, cause2 Literal) Antecedent {
	return Antecedent{tag: antTernary, l1: cause1, l2: cause2}
}

// GenericAntecedent returns the antecedent deferring to c's Reason method.
func GenericAntecedent(c Constraint) Antecedent {
	return Antecedent{tag: antGeneric, cons: c}
}

// IsNull reports whether a is a decision/assumption antecedent.
func (a Antecedent) IsNull() bool {
	return a.tag == antNull
}

// Constraint returns the generic constraint behind a, or nil.
func (a Antecedent) Constraint() Constraint {
	return a.cons
}

// reasonLiterals appends to out the set of currently-true literals whose
// conjunction justifies p (p's antecedent is a). Matches the convention
// used throughout the solver: a reason set is always reported as the
// literals that are true, not the clause literals that are false (so
// callers can resolve on them directly without re-negating).
func (a Antecedent) reasonLiterals(s *Solver, p Literal, out []Literal) []Literal {
	switch a.tag {
	case antNull:
		return out
	case antBinary:
		return append(out, a.l1)
	case antTernary:
		return append(out, a.l1, a.l2)
	case antGeneric:
		return a.cons.Reason(s, p, out)
	default:
		return out
	}
}

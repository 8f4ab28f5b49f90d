package asp

import "github.com/rhartert/gocasp/sat"

// emit compiles every surviving atom and body into the shared context:
// Clark completion clauses for atoms and bodyNormal bodies, a single
// sat.WeightConstraint per bodyWeight body (§4.9's emission rules).
func (b *Builder) emit() error {
	for bid := range b.bodies {
		if err := b.emitBody(bodyID(bid)); err != nil {
			return err
		}
	}
	for id := 1; id < len(b.atoms); id++ {
		if err := b.emitAtom(atomID(id)); err != nil {
			return err
		}
	}
	return nil
}

// emitAtom emits ¬a ∨ B1 ∨ ... ∨ Bk for atom a's surviving defining
// bodies (§4.9: "one clause ¬a ∨ B1 ∨ … ∨ Bk where Bi are ... a's
// defining bodies"). An atom with no surviving defining bodies can
// never be derived true and gets the unit clause ¬a instead. An atom
// aliased onto a body's variable (§4.9 point 2) needs no clause of its
// own: its var_ already is the body's var_, whose Tseitin clauses
// already constrain it.
func (b *Builder) emitAtom(id atomID) error {
	a := &b.atoms[id]
	if a.eliminated || b.find(id) != id || a.emitted {
		return nil
	}
	if a.bodyAlias != noBodyAlias {
		return nil
	}
	a.emitted = true

	defs := liveDefs(b, a.defs)
	lits := make([]sat.Literal, 0, len(defs)+1)
	lits = append(lits, sat.NegativeLiteral(a.var_))
	for _, d := range defs {
		lits = append(lits, sat.PositiveLiteral(b.bodies[d].var_))
	}
	return b.ctx.AddClause(lits)
}

// emitBody emits bn's own completion clauses: for a non-choice body,
// ¬B ∨ a for every head atom a, plus the Tseitin AND encoding of
// B ↔ l1 ∧ ... ∧ ln over its subgoals. A bodyWeight node instead
// becomes one sat.WeightConstraint with head B plus ¬B ∨ a for every
// head atom a (emitWeightBody, §4.7/§4.9).
func (b *Builder) emitBody(bid bodyID) error {
	bn := &b.bodies[bid]
	if bn.eliminated || bn.emitted {
		return nil
	}
	bn.emitted = true

	if bn.kind == bodyWeight {
		return b.emitWeightBody(bid)
	}

	bodyVar := bn.var_
	bodyPos := sat.PositiveLiteral(bodyVar)
	bodyNeg := sat.NegativeLiteral(bodyVar)

	if !bn.choice {
		for _, h := range liveHeads(b, bn.heads) {
			if err := b.ctx.AddClause([]sat.Literal{bodyNeg, sat.PositiveLiteral(b.atoms[h].var_)}); err != nil {
				return err
			}
		}
	}

	backward := make([]sat.Literal, 0, len(bn.pos)+len(bn.neg)+1)
	backward = append(backward, bodyPos)
	for _, p := range bn.pos {
		l := b.subgoalLiteral(p, false)
		if err := b.ctx.AddClause([]sat.Literal{bodyNeg, l}); err != nil {
			return err
		}
		backward = append(backward, l.Opposite())
	}
	for _, n := range bn.neg {
		l := b.subgoalLiteral(n, true)
		if err := b.ctx.AddClause([]sat.Literal{bodyNeg, l}); err != nil {
			return err
		}
		backward = append(backward, l.Opposite())
	}
	return b.ctx.AddClause(backward)
}

// emitWeightBody compiles a cardinality/weight body into one
// sat.WeightConstraint whose head is the body variable B (`head becomes
// true once the weighted sum of true body literals reaches bound`,
// §4.7), plus the clause ¬B ∨ a for every head atom a. RuleKind
// makes Choice and Cardinality/Weight mutually exclusive at intake
// (addHeadedRule never sets both bn.choice and bn.kind==bodyWeight), so
// every head here gets the forward `¬B ∨ a` implication unconditionally.
func (b *Builder) emitWeightBody(bid bodyID) error {
	bn := &b.bodies[bid]
	lits := make([]sat.Literal, 0, len(bn.pos)+len(bn.neg))
	weights := make([]int64, 0, len(bn.pos)+len(bn.neg))
	for i, p := range bn.pos {
		lits = append(lits, b.subgoalLiteral(p, false))
		weights = append(weights, bn.posWeights[i])
	}
	for i, n := range bn.neg {
		lits = append(lits, b.subgoalLiteral(n, true))
		weights = append(weights, bn.negWeights[i])
	}
	bodyPos := sat.PositiveLiteral(bn.var_)
	if err := b.ctx.AddWeightConstraint(bodyPos, lits, weights, bn.bound); err != nil {
		return err
	}
	for _, h := range liveHeads(b, bn.heads) {
		if err := b.ctx.AddClause([]sat.Literal{sat.NegativeLiteral(bn.var_), sat.PositiveLiteral(b.atoms[h].var_)}); err != nil {
			return err
		}
	}
	return nil
}

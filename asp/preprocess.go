package asp

import "github.com/rhartert/gocasp/sat"

// maxPreprocessRounds bounds the simplify/equivalence/head fixpoint
// loop the way xDarkicex-logic's SATPreprocessor bounds its own
// unit-propagation/subsumption loop ("for changed && rounds < 10",
// preprocessor.go) — a correctness backstop against an ill-formed
// input cycling the passes forever, not a tuning knob the interface
// exposes.
const maxPreprocessRounds = 64

// preprocess runs three of §4.9's passes to a fixpoint (there is no
// backpropagation pass): simplify bodies
// (apply the current equivalence representative, drop tautologous
// non-aggregate bodies), detect new equivalences, and simplify heads
// (drop self-blocking choice heads), then rebuilds every atom's
// defining-body list from the surviving bodies before returning.
func (b *Builder) preprocess() {
	for round := 0; round < maxPreprocessRounds; round++ {
		changed := b.simplifyBodies()
		if b.detectEquivalences() {
			changed = true
		}
		if b.simplifyHeads() {
			changed = true
		}
		if !changed {
			break
		}
	}
	b.rebuildDefs()
}

// simplifyBodies substitutes every subgoal by its current equivalence
// representative and drops (marks eliminated) any non-aggregate body
// that now contains both p and ¬p (§4.9 point 1).
func (b *Builder) simplifyBodies() bool {
	changed := false
	for i := range b.bodies {
		bn := &b.bodies[i]
		if bn.eliminated || bn.emitted {
			// Already compiled into the shared context by a previous
			// EndProgram call; its clauses can't be retracted, so its
			// subgoals and liveness are frozen as of that step.
			continue
		}
		if resolveInPlace(b, bn.pos) {
			changed = true
		}
		if resolveInPlace(b, bn.neg) {
			changed = true
		}
		switch bn.kind {
		case bodyNormal:
			if hasCommonAtom(bn.pos, bn.neg) {
				bn.eliminated = true
				bn.value = sat.False
				changed = true
			}
		case bodyWeight:
			if adjustWeightBound(bn) {
				changed = true
			}
		}
	}
	return changed
}

// adjustWeightBound implements §4.9 point 1's aggregate branch: a
// weight/cardinality body that lists the same atom on both sides
// (p with weight w1 among pos, ¬p with weight w2 among neg) is not
// dropped as false the way a plain conjunctive body would be, since p
// and ¬p being complementary only fixes their combined contribution,
// not the body's overall truth. Exactly one of the two literals holds
// at any time, so min(w1, w2) is always contributed; it is folded
// into bound and the pair is collapsed to a single residual literal
// (on the heavier side) carrying the weight difference, or dropped
// entirely when w1 == w2.
func adjustWeightBound(bn *bodyNode) bool {
	negIdx := make(map[atomID]int, len(bn.neg))
	for i, a := range bn.neg {
		negIdx[a] = i
	}

	dropPos := map[int]bool{}
	dropNeg := map[int]bool{}
	changed := false

	for i, a := range bn.pos {
		j, ok := negIdx[a]
		if !ok || dropNeg[j] {
			continue
		}
		w1, w2 := bn.posWeights[i], bn.negWeights[j]
		guaranteed := w1
		if w2 < guaranteed {
			guaranteed = w2
		}
		bn.bound -= guaranteed
		changed = true
		switch {
		case w1 > w2:
			bn.posWeights[i] = w1 - w2
			dropNeg[j] = true
		case w2 > w1:
			bn.negWeights[j] = w2 - w1
			dropPos[i] = true
		default:
			dropPos[i] = true
			dropNeg[j] = true
		}
	}

	if !changed {
		return false
	}

	pos, posWeights := bn.pos[:0], bn.posWeights[:0]
	for i, a := range bn.pos {
		if dropPos[i] {
			continue
		}
		pos = append(pos, a)
		posWeights = append(posWeights, bn.posWeights[i])
	}
	bn.pos, bn.posWeights = pos, posWeights

	neg, negWeights := bn.neg[:0], bn.negWeights[:0]
	for j, a := range bn.neg {
		if dropNeg[j] {
			continue
		}
		neg = append(neg, a)
		negWeights = append(negWeights, bn.negWeights[j])
	}
	bn.neg, bn.negWeights = neg, negWeights

	return true
}

func resolveInPlace(b *Builder, ids []atomID) bool {
	changed := false
	for i, id := range ids {
		r := b.find(id)
		if r != id {
			ids[i] = r
			changed = true
		}
	}
	return changed
}

func hasCommonAtom(pos, neg []atomID) bool {
	for _, p := range pos {
		for _, n := range neg {
			if p == n {
				return true
			}
		}
	}
	return false
}

// detectEquivalences merges (a) atoms defined by the identical set of
// bodies, none of them a choice body, and (b) an atom with exactly one defining body whose only head
// is that atom, onto that body's own variable (§4.9 point 2).
func (b *Builder) detectEquivalences() bool {
	changed := false

	// (a) atom <-> atom: group live atoms by their sorted defs
	// signature; atoms sharing a signature are merged into one class.
	bySignature := map[string]atomID{}
	for id := 1; id < len(b.atoms); id++ {
		a := &b.atoms[id]
		if a.eliminated || a.emitted || b.find(atomID(id)) != atomID(id) {
			continue
		}
		defs := liveDefs(b, a.defs)
		if len(defs) == 0 {
			continue
		}
		choice := false
		for _, d := range defs {
			choice = choice || b.bodies[d].choice
		}
		if choice {
			// Heads of one choice body are chosen independently.
			continue
		}
		sig := defsSignature(defs)
		if other, ok := bySignature[sig]; ok {
			if b.find(other) != b.find(atomID(id)) {
				b.union(other, atomID(id))
				changed = true
			}
		} else {
			bySignature[sig] = atomID(id)
		}
	}

	// (b) atom <-> body: an atom with exactly one live defining body
	// whose only live head is itself shares that body's variable
	// directly, skipping its own completion disjunction at emission
	// time (see emit.go's use of atomNode.bodyAlias).
	for id := 1; id < len(b.atoms); id++ {
		a := &b.atoms[id]
		if a.eliminated || a.emitted || b.find(atomID(id)) != atomID(id) || a.bodyAlias >= 0 {
			continue
		}
		defs := liveDefs(b, a.defs)
		if len(defs) != 1 {
			continue
		}
		bn := &b.bodies[defs[0]]
		if bn.choice || bn.emitted {
			continue
		}
		heads := liveHeads(b, bn.heads)
		if len(heads) != 1 || b.find(heads[0]) != atomID(id) {
			continue
		}
		a.bodyAlias = defs[0]
		a.var_ = bn.var_
		changed = true
	}

	return changed
}

func liveDefs(b *Builder, defs []bodyID) []bodyID {
	var out []bodyID
	for _, d := range defs {
		if !b.bodies[d].eliminated {
			out = append(out, d)
		}
	}
	return out
}

func liveHeads(b *Builder, heads []atomID) []atomID {
	seen := map[atomID]bool{}
	var out []atomID
	for _, h := range heads {
		r := b.find(h)
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func defsSignature(defs []bodyID) string {
	// defs is already produced in increasing bodyID order by
	// liveDefs/rebuildDefs, so a direct textual join is a stable,
	// order-independent-enough signature (bodies are never reordered
	// once allocated).
	buf := make([]byte, 0, len(defs)*5)
	for _, d := range defs {
		buf = append(buf, byte(d), byte(d>>8), byte(d>>16), byte(d>>24), ',')
	}
	return string(buf)
}

// simplifyHeads drops self-blocking head atoms from choice bodies: a
// head atom that also occurs negatively in its own body can never be
// supported by that body, so the body can never justify it (§4.9 point
// 4). A body left with no heads is eliminated.
func (b *Builder) simplifyHeads() bool {
	changed := false
	for i := range b.bodies {
		bn := &b.bodies[i]
		if bn.eliminated || bn.emitted || !bn.choice || len(bn.heads) == 0 {
			continue
		}
		out := bn.heads[:0]
		for _, h := range bn.heads {
			r := b.find(h)
			if containsAtom(bn.neg, r) {
				changed = true
				continue
			}
			out = append(out, h)
		}
		bn.heads = out
		if len(bn.heads) == 0 {
			bn.eliminated = true
			changed = true
		}
	}
	return changed
}

func containsAtom(xs []atomID, target atomID) bool {
	for _, x := range xs {
		if x == target {
			return true
		}
	}
	return false
}

// rebuildDefs recomputes every live atom's defining-body list strictly
// from the surviving bodies' head lists, rather than maintaining it
// incrementally through every equivalence merge and head drop (§9:
// back-edges "recomputed from body goal lists on demand").
func (b *Builder) rebuildDefs() {
	for i := range b.atoms {
		b.atoms[i].defs = nil
	}
	for bid := range b.bodies {
		bn := &b.bodies[bid]
		if bn.eliminated {
			continue
		}
		for _, h := range liveHeads(b, bn.heads) {
			b.atoms[h].defs = append(b.atoms[h].defs, bodyID(bid))
		}
	}
}

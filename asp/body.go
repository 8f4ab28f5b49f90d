package asp

import (
	"sort"

	"github.com/rhartert/gocasp/sat"
)

// internBody normalizes bn (sorts its subgoal lists so hashing and
// equality are order-independent) and either returns an existing body
// with identical structural content or allocates a fresh one with its
// own solver variable (§4.9 "bodies with identical normalized content
// are shared").
//
// Two bodies are structurally identical here iff they have the same
// kind and the same sorted (pos, neg) content; bodyWeight bodies are
// never shared (bodiesEqual reports any two of them as distinct). Heads are
// NOT part of the identity (two different rules with the same body but
// different heads share one body node, each contributing its head to
// the shared node's heads list) unless one is a choice body and the
// other is not, since choice vs. non-choice changes which completion
// clauses the body participates in.
func (b *Builder) internBody(bn bodyNode) bodyID {
	normalizeBody(&bn)
	h := hashBody(bn)
	for _, cand := range b.bodyByHash[h] {
		if b.bodiesEqual(b.bodies[cand], bn) {
			b.bodies[cand].heads = append(b.bodies[cand].heads, bn.heads...)
			return cand
		}
	}

	bn.hash = h
	bn.var_ = b.ctx.AddVariable(sat.VarBody)
	id := bodyID(len(b.bodies))
	b.bodies = append(b.bodies, bn)
	b.bodyByHash[h] = append(b.bodyByHash[h], id)
	return id
}

func normalizeBody(bn *bodyNode) {
	if bn.kind == bodyWeight {
		return // weight bodies keep pos/neg-aligned weight pairing; never reordered
	}
	sort.Slice(bn.pos, func(i, j int) bool { return bn.pos[i] < bn.pos[j] })
	sort.Slice(bn.neg, func(i, j int) bool { return bn.neg[i] < bn.neg[j] })
}

func (b *Builder) bodiesEqual(a, c bodyNode) bool {
	if a.kind != c.kind || a.choice != c.choice || a.bound != c.bound {
		return false
	}
	if a.kind == bodyWeight {
		return false // weight bodies are never deduplicated: order carries weight pairing
	}
	return sameAtoms(a.pos, c.pos) && sameAtoms(a.neg, c.neg)
}

func sameAtoms(a, b []atomID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hashBody computes an order-independent-within-kind structural hash
// (FNV-1a over the normalized literal stream); used only to bucket
// candidates for the exact bodiesEqual check above, never trusted
// alone.
func hashBody(bn bodyNode) uint64 {
	const offset, prime = 14695981039346656037, 1099511628211
	h := uint64(offset)
	mix := func(x uint64) {
		h ^= x
		h *= prime
	}
	mix(uint64(bn.kind))
	if bn.choice {
		mix(1)
	}
	mix(uint64(bn.bound))
	for _, a := range bn.pos {
		mix(uint64(a) << 1)
	}
	for _, a := range bn.neg {
		mix(uint64(a)<<1 | 1)
	}
	return h
}

// subgoalLiteral returns the sat.Literal a weighted/plain subgoal
// contributes to completion clauses and weight constraints: the atom's
// solver variable, negated iff the subgoal is `not a`.
func (b *Builder) subgoalLiteral(id atomID, negative bool) sat.Literal {
	id = b.find(id)
	v := b.atoms[id].var_
	if negative {
		return sat.NegativeLiteral(v)
	}
	return sat.PositiveLiteral(v)
}

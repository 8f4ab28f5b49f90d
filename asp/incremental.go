package asp

import "github.com/rhartert/gocasp/sat"

// Var returns the solver variable external atom a currently compiles
// to, if it has been interned. Callers use this after a step's Solve
// to read sat.Solver.VarValue for every atom they Froze, then pass the
// results to Update so the next step starts from known truths (§4.9
// "updates values of frozen atoms").
func (b *Builder) Var(a AtomID) (sat.Var, bool) {
	id, ok := b.ext[a]
	if !ok {
		return 0, false
	}
	return b.atoms[b.find(id)].var_, true
}

// Step returns the current incremental step counter, starting at 0 and
// incremented by each Update call.
func (b *Builder) Step() int { return b.step }

// Update starts the next incremental step over the same builder and
// shared context (§4.9 "update"/§6.1 `update`). known gives the
// resolved truth of every atom the caller Froze before the step that
// just finished (typically read via Var + sat.Solver.VarValue); each
// is asserted as a compute assumption for the next round, so the next
// EndProgram's propagation starts from where the previous step left
// off instead of re-deriving it.
//
// Frozen atoms stay frozen (and thus able to gain further defining
// bodies was never supported even before Update — see addHeadedRule's
// guard) unless the caller explicitly calls Unfreeze; any atom the
// caller does not re-affirm by leaving it frozen is simply never
// referenced again by new rules, which is this builder's reading of
// "forgets step-local aux atoms": nothing destroys their variables or
// clauses (the shared context has no removal primitive — see
// DESIGN.md), but nothing in the next step can resurrect them as a
// rule head either, so they become permanently-settled background
// constraints rather than part of the live program.
//
// Update panics if called before EndProgram, or if called again
// without an intervening EndProgram.
func (b *Builder) Update(known map[AtomID]bool) *Builder {
	if !b.ended {
		panic("asp: Update called before EndProgram")
	}

	b.ctx.Unfreeze()

	for a, truth := range known {
		if !b.frozenExternal[a] {
			continue
		}
		id := b.internAtom(a)
		v := b.atoms[b.find(id)].var_
		lit := sat.PositiveLiteral(v)
		if !truth {
			lit = sat.NegativeLiteral(v)
		}
		b.ctx.SetCompute(lit)
	}

	b.ended = false
	b.step++
	return b
}

package asp

// DependencyGraph is the bipartite atom↔body positive-dependency graph
// of §3/§4.9, plus the non-trivial-SCC marks it produces: atoms whose
// positive support forms a cycle need unfounded-set checking, atoms
// outside any non-trivial SCC never do (the completion alone already
// decides them correctly).
//
// Grounded on gokando's SubgoalEntry/depAdj bipartite bookkeeping
// (slg_engine.go) for the node/edge shape, recomputed here as an
// explicit-stack Tarjan (§9: "Tarjan on explicit stacks — recursion
// unsafe at scale") rather than gokando's own recursive
// strongConnect/DetectCycles closures.
type DependencyGraph struct {
	b *Builder

	// posIn[a] lists the bodies where atom a occurs as a positive
	// subgoal; negIn[a] the bodies where it occurs negatively. Both
	// are the reverse of bodyNode.pos/neg, built once per EndProgram/
	// Update call rather than maintained incrementally through every
	// equivalence merge (§9 "recomputed... on demand").
	posIn map[atomID][]bodyID
	negIn map[atomID][]bodyID
}

// DefiningBodies returns the live bodies whose head includes a.
func (g *DependencyGraph) DefiningBodies(a atomID) []bodyID {
	return liveDefs(g.b, g.b.atoms[g.b.find(a)].defs)
}

// PositiveOccurrences returns the bodies in which a occurs as a
// positive subgoal.
func (g *DependencyGraph) PositiveOccurrences(a atomID) []bodyID {
	return g.posIn[g.b.find(a)]
}

// NegativeOccurrences returns the bodies in which a occurs as a
// negative subgoal.
func (g *DependencyGraph) NegativeOccurrences(a atomID) []bodyID {
	return g.negIn[g.b.find(a)]
}

// InSCC reports whether a sits in a non-trivial strongly connected
// component of the positive atom↔body dependency graph and therefore
// needs unfounded-set checking.
func (g *DependencyGraph) InSCC(a atomID) bool {
	return g.b.atoms[g.b.find(a)].inSCC
}

// buildDependencyGraph builds the reverse occurrence maps and runs
// Tarjan SCC over the positive atom↔body subgraph, marking every atom
// in a non-trivial component (§4.9 "SCC detection... non-trivial SCCs
// mark their atoms").
func (b *Builder) buildDependencyGraph() *DependencyGraph {
	g := &DependencyGraph{
		b:     b,
		posIn: map[atomID][]bodyID{},
		negIn: map[atomID][]bodyID{},
	}
	for bid := range b.bodies {
		bn := &b.bodies[bid]
		if bn.eliminated {
			continue
		}
		for _, p := range bn.pos {
			r := b.find(p)
			g.posIn[r] = append(g.posIn[r], bodyID(bid))
		}
		for _, n := range bn.neg {
			r := b.find(n)
			g.negIn[r] = append(g.negIn[r], bodyID(bid))
		}
	}
	markNonTrivialSCCs(b, g)
	return g
}

// atomNodeID and bodyNodeID give dense ids over the combined atom/body
// node space used by the Tarjan pass: atom a (a live representative)
// maps to int(a), body bid maps to len(atoms)+int(bid).
func atomNodeID(a atomID) int { return int(a) }
func bodyNodeID(numAtoms int, bid bodyID) int { return numAtoms + int(bid) }

// markNonTrivialSCCs runs Tarjan's algorithm with an explicit stack
// (no native recursion) over the positive atom→body→atom dependency
// graph and marks every atom belonging to an SCC of size > 1. An atom
// positively depending on a body that in turn depends on that same
// atom (e.g. `a :- a.`) forms a 2-node SCC (atom a, its body), so it is
// marked as well.
func markNonTrivialSCCs(b *Builder, g *DependencyGraph) {
	numAtoms := len(b.atoms)
	numNodes := numAtoms + len(b.bodies)

	const unvisited = -1
	index := make([]int32, numNodes)
	lowlink := make([]int32, numNodes)
	onStack := make([]bool, numNodes)
	for i := range index {
		index[i] = unvisited
	}

	var stack []int // Tarjan's node stack
	next := int32(0)

	// Nodes alternate atom/body kinds (an atom's successors are always
	// bodies and vice versa), so a direct self-loop (w == top.node) can
	// never occur; a cycle like `a :- a.` still shows up as a 2-node
	// SCC (atom a, its body) via the ordinary lowlink test below.
	type callFrame struct {
		node    int
		succ    []int
		succIdx int
	}
	var work []callFrame

	successors := func(node int) []int {
		if node < numAtoms {
			a := atomID(node)
			if b.find(a) != a || b.atoms[a].eliminated {
				return nil
			}
			defs := liveDefs(b, b.atoms[a].defs)
			out := make([]int, len(defs))
			for i, d := range defs {
				out[i] = bodyNodeID(numAtoms, d)
			}
			return out
		}
		bid := bodyID(node - numAtoms)
		bn := &b.bodies[bid]
		if bn.eliminated {
			return nil
		}
		out := make([]int, len(bn.pos))
		for i, p := range bn.pos {
			out[i] = atomNodeID(b.find(p))
		}
		return out
	}

	popSCC := func(root int) []int {
		var comp []int
		for {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[n] = false
			comp = append(comp, n)
			if n == root {
				break
			}
		}
		return comp
	}

	for start := 0; start < numNodes; start++ {
		if index[start] != unvisited {
			continue
		}
		work = append(work, callFrame{node: start, succ: successors(start)})
		index[start] = next
		lowlink[start] = next
		next++
		stack = append(stack, start)
		onStack[start] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			if top.succIdx >= len(top.succ) {
				v := top.node
				if lowlink[v] == index[v] {
					comp := popSCC(v)
					if len(comp) > 1 {
						markComponent(b, numAtoms, comp)
					}
				}
				work = work[:len(work)-1]
				if len(work) > 0 {
					parent := &work[len(work)-1]
					if lowlink[v] < lowlink[parent.node] {
						lowlink[parent.node] = lowlink[v]
					}
				}
				continue
			}

			w := top.succ[top.succIdx]
			top.succIdx++
			if index[w] == unvisited {
				work = append(work, callFrame{node: w, succ: successors(w)})
				index[w] = next
				lowlink[w] = next
				next++
				stack = append(stack, w)
				onStack[w] = true
			} else if onStack[w] {
				if index[w] < lowlink[top.node] {
					lowlink[top.node] = index[w]
				}
			}
		}
	}
}

func markComponent(b *Builder, numAtoms int, comp []int) {
	for _, n := range comp {
		if n < numAtoms {
			b.atoms[n].inSCC = true
		}
	}
}

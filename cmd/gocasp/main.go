// Command gocasp is a demonstration driver for the asp/sat packages. It
// has no grounder or text format attached (out of scope, per the
// non-goals): instead it builds each of the six scenarios below
// directly as Go values through asp.Builder and reports sat/unsat/
// model-count/cost, mirroring yass's own main.go stats-line style.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rhartert/gocasp/asp"
	"github.com/rhartert/gocasp/sat"
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMemProfile = flag.Bool(
	"memprof",
	false,
	"save pprof memory profile in memprof",
)

var flagTrace = flag.Bool(
	"trace",
	false,
	"enable search-progress trace lines on stderr",
)

var flagScenario = flag.String(
	"scenario",
	"",
	"run a single scenario by name instead of all six",
)

// scenario is one of §8's concrete scenarios: a self-contained builder
// function and the yass-style report it produced.
type scenario struct {
	name string
	run  func(sat.Options) report
}

// report is the per-scenario summary this binary prints, in the same
// spirit as yass's "c status:"/"c conflicts:" lines.
type report struct {
	status    string
	numVars   int
	numRules  string
	conflicts int64
	elapsed   time.Duration
	extra     string
}

func scenarios() []scenario {
	return []scenario{
		{"pigeonhole", runPigeonhole},
		{"choice-enum", runChoiceEnumeration},
		{"tight", runTightProgram},
		{"non-tight", runNonTightProgram},
		{"weight", runWeightPropagation},
		{"minimize", runMinimize},
	}
}

func main() {
	flag.Parse()

	if *flagCPUProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	opts := sat.DefaultOptions()
	opts.Trace = *flagTrace

	for _, sc := range scenarios() {
		if *flagScenario != "" && *flagScenario != sc.name {
			continue
		}
		fmt.Printf("c === %s ===\n", sc.name)
		r := sc.run(opts)
		fmt.Printf("c variables:  %d\n", r.numVars)
		fmt.Printf("c rules:      %s\n", r.numRules)
		fmt.Printf("c time (sec): %f\n", r.elapsed.Seconds())
		fmt.Printf("c conflicts:  %d\n", r.conflicts)
		fmt.Printf("c status:     %s\n", r.status)
		if r.extra != "" {
			fmt.Printf("c %s\n", r.extra)
		}
	}

	if *flagMemProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
	}
}

// falseAtom is the reserved head atom every integrity constraint in
// these scenarios derives into (see the Rule doc in rule.go).
// SetCompute(falseAtom, false) then forces every constraint body false
// through Clark completion: each body Bi gets the clause ¬Bi ∨ falseAtom,
// which together with ¬falseAtom resolves to ¬Bi.
const falseAtom asp.AtomID = 1_000_000

func addIntegrityConstraint(b *asp.Builder, body []asp.WeightedLit) {
	b.AddRule(asp.Rule{Kind: asp.Basic, Head: []asp.AtomID{falseAtom}, Body: body})
}

// --- scenario 1: pigeonhole 3-into-2 ---------------------------------------

func hole(pigeon, hole int) asp.AtomID { return asp.AtomID(10*pigeon + hole) }
func covered(pigeon int) asp.AtomID    { return asp.AtomID(100 + pigeon) }

func runPigeonhole(opts sat.Options) report {
	ctx := sat.NewSharedContext()
	b := asp.NewBuilder(ctx)

	for p := 1; p <= 3; p++ {
		for h := 1; h <= 2; h++ {
			b.AddRule(asp.Rule{Kind: asp.Choice, Head: []asp.AtomID{hole(p, h)}})
		}
	}
	// No two pigeons share a hole.
	for h := 1; h <= 2; h++ {
		for p := 1; p <= 3; p++ {
			for q := p + 1; q <= 3; q++ {
				addIntegrityConstraint(b, []asp.WeightedLit{
					{Lit: asp.PosLit(hole(p, h))},
					{Lit: asp.PosLit(hole(q, h))},
				})
			}
		}
	}
	// Every pigeon needs at least one hole: covered(p) :- 1 {h(p,1), h(p,2)}.
	// then :- not covered(p).
	for p := 1; p <= 3; p++ {
		b.AddRule(asp.Rule{
			Kind:  asp.Cardinality,
			Head:  []asp.AtomID{covered(p)},
			Body:  []asp.WeightedLit{{Lit: asp.PosLit(hole(p, 1))}, {Lit: asp.PosLit(hole(p, 2))}},
			Bound: 1,
		})
		addIntegrityConstraint(b, []asp.WeightedLit{{Lit: asp.NegLit(covered(p))}})
	}
	b.SetCompute(falseAtom, false)

	if err := b.EndProgram(); err != nil {
		log.Fatalf("pigeonhole: EndProgram: %v", err)
	}

	s := sat.NewSolver(ctx, opts)
	if err := s.Attach(); err != nil {
		log.Fatalf("pigeonhole: Attach: %v", err)
	}

	t := time.Now()
	status := s.Solve()
	elapsed := time.Since(t)

	return report{
		status:    statusString(s, status),
		numVars:   ctx.NumVars(),
		numRules:  "6 choice, 6 binary exclusion, 3 cardinality+constraint",
		conflicts: s.TotalConflicts,
		elapsed:   elapsed,
		extra:     "expect unsat: 3 pigeons cannot fit 2 holes one-per-hole",
	}
}

// --- scenario 2: choice enumeration -----------------------------------------

func runChoiceEnumeration(opts sat.Options) report {
	ctx := sat.NewSharedContext()
	b := asp.NewBuilder(ctx)

	const a, bb asp.AtomID = 1, 2
	b.AddRule(asp.Rule{Kind: asp.Choice, Head: []asp.AtomID{a, bb}})

	if err := b.EndProgram(); err != nil {
		log.Fatalf("choice-enum: EndProgram: %v", err)
	}

	s := sat.NewSolver(ctx, opts)
	if err := s.Attach(); err != nil {
		log.Fatalf("choice-enum: Attach: %v", err)
	}

	va, _ := b.Var(a)
	vb, _ := b.Var(bb)

	t := time.Now()
	models := 0
	var status sat.LBool
	for {
		status = s.Solve()
		if status != sat.True {
			break
		}
		models++
		model := s.Model()
		blocker := []sat.Literal{sat.NegativeLiteral(va), sat.NegativeLiteral(vb)}
		if model[va] != sat.True {
			blocker[0] = sat.PositiveLiteral(va)
		}
		if model[vb] != sat.True {
			blocker[1] = sat.PositiveLiteral(vb)
		}
		if err := s.AddClause(blocker); err != nil {
			log.Fatalf("choice-enum: AddClause: %v", err)
		}
	}
	elapsed := time.Since(t)

	return report{
		status:    "exhausted",
		numVars:   ctx.NumVars(),
		numRules:  "1 choice",
		conflicts: s.TotalConflicts,
		elapsed:   elapsed,
		extra:     fmt.Sprintf("models found: %d (expect 4)", models),
	}
}

// --- scenario 3: tight positive program -------------------------------------

func runTightProgram(opts sat.Options) report {
	ctx := sat.NewSharedContext()
	b := asp.NewBuilder(ctx)

	const a, bb, c asp.AtomID = 1, 2, 3
	b.AddRule(asp.Rule{Kind: asp.Basic, Head: []asp.AtomID{a}, Body: []asp.WeightedLit{{Lit: asp.PosLit(bb)}}})
	b.AddRule(asp.Rule{Kind: asp.Basic, Head: []asp.AtomID{bb}, Body: []asp.WeightedLit{{Lit: asp.PosLit(c)}}})
	b.AddRule(asp.Rule{Kind: asp.Basic, Head: []asp.AtomID{c}}) // fact

	if err := b.EndProgram(); err != nil {
		log.Fatalf("tight: EndProgram: %v", err)
	}

	s := sat.NewSolver(ctx, opts)
	if err := s.Attach(); err != nil {
		log.Fatalf("tight: Attach: %v", err)
	}

	t := time.Now()
	status := s.Solve()
	elapsed := time.Since(t)

	extra := "expect unique model {a, b, c}"
	if status == sat.True {
		va, _ := b.Var(a)
		vb, _ := b.Var(bb)
		vc, _ := b.Var(c)
		model := s.Model()
		extra = fmt.Sprintf("model: a=%s b=%s c=%s (expect all true)",
			model[va], model[vb], model[vc])
	}

	return report{
		status:    statusString(s, status),
		numVars:   ctx.NumVars(),
		numRules:  "2 basic, 1 fact",
		conflicts: s.TotalConflicts,
		elapsed:   elapsed,
		extra:     extra,
	}
}

// --- scenario 4: non-tight / unfounded-set ----------------------------------

func runNonTightProgram(opts sat.Options) report {
	ctx := sat.NewSharedContext()
	b := asp.NewBuilder(ctx)

	const a, bb asp.AtomID = 1, 2
	b.AddRule(asp.Rule{Kind: asp.Basic, Head: []asp.AtomID{a}, Body: []asp.WeightedLit{{Lit: asp.PosLit(bb)}}})
	b.AddRule(asp.Rule{Kind: asp.Basic, Head: []asp.AtomID{bb}, Body: []asp.WeightedLit{{Lit: asp.PosLit(a)}}})

	if err := b.EndProgram(); err != nil {
		log.Fatalf("non-tight: EndProgram: %v", err)
	}

	s := sat.NewSolver(ctx, opts)
	// Registered before Attach so the checker also covers whatever
	// Attach's own root-level propagation pass derives. Without this,
	// the completion alone admits {a,b} alongside {}: the unfounded-set
	// check rules {a,b} out by deriving a loop nogood the moment the
	// cycle's only support turns out to be itself.
	s.AddPostPropagator(asp.NewUnfoundedSetCheck(b.DependencyGraph()))
	if err := s.Attach(); err != nil {
		log.Fatalf("non-tight: Attach: %v", err)
	}

	t := time.Now()
	status := s.Solve()
	elapsed := time.Since(t)

	extra := "expect unique model {} (completion alone would also admit {a,b})"
	if status == sat.True {
		va, _ := b.Var(a)
		vb, _ := b.Var(bb)
		model := s.Model()
		extra = fmt.Sprintf("model: a=%s b=%s (expect both false)", model[va], model[vb])
	}

	return report{
		status:    statusString(s, status),
		numVars:   ctx.NumVars(),
		numRules:  "2 basic (positive cycle)",
		conflicts: s.TotalConflicts,
		elapsed:   elapsed,
		extra:     extra,
	}
}

// --- scenario 5: weight-rule propagation ------------------------------------

func runWeightPropagation(opts sat.Options) report {
	ctx := sat.NewSharedContext()
	b := asp.NewBuilder(ctx)

	const x, y, z, a asp.AtomID = 1, 2, 3, 4
	b.AddRule(asp.Rule{Kind: asp.Basic, Head: []asp.AtomID{x}}) // fact
	b.AddRule(asp.Rule{Kind: asp.Basic, Head: []asp.AtomID{y}}) // fact
	b.AddRule(asp.Rule{
		Kind: asp.Weight,
		Head: []asp.AtomID{a},
		Body: []asp.WeightedLit{
			{Lit: asp.PosLit(x), Weight: 2},
			{Lit: asp.PosLit(y), Weight: 2},
			{Lit: asp.PosLit(z), Weight: 2},
		},
		Bound: 3,
	})

	if err := b.EndProgram(); err != nil {
		log.Fatalf("weight: EndProgram: %v", err)
	}

	s := sat.NewSolver(ctx, opts)
	if err := s.Attach(); err != nil {
		log.Fatalf("weight: Attach: %v", err)
	}

	va, _ := b.Var(a)
	// Root-level unit propagation alone (run inside Attach) must already
	// force a true: x and y are root-level facts, so current=4 >= bound=3
	// before any decision is ever made.
	forcedAtRoot := s.VarValue(va) == sat.True

	t := time.Now()
	status := s.Solve()
	elapsed := time.Since(t)

	return report{
		status:    statusString(s, status),
		numVars:   ctx.NumVars(),
		numRules:  "2 facts, 1 weight rule",
		conflicts: s.TotalConflicts,
		elapsed:   elapsed,
		extra:     fmt.Sprintf("a forced true at root by unit propagation alone: %v (expect true)", forcedAtRoot),
	}
}

// --- scenario 6: minimize ----------------------------------------------------

func runMinimize(opts sat.Options) report {
	ctx := sat.NewSharedContext()
	b := asp.NewBuilder(ctx)

	const a, bb, c asp.AtomID = 1, 2, 3
	b.AddRule(asp.Rule{Kind: asp.Choice, Head: []asp.AtomID{a, bb, c}})
	b.AddRule(asp.Rule{Kind: asp.Minimize, Body: []asp.WeightedLit{{Lit: asp.PosLit(a), Weight: 1}}, Priority: 1})
	b.AddRule(asp.Rule{Kind: asp.Minimize, Body: []asp.WeightedLit{{Lit: asp.PosLit(bb), Weight: 2}}, Priority: 1})
	b.AddRule(asp.Rule{Kind: asp.Minimize, Body: []asp.WeightedLit{{Lit: asp.PosLit(c), Weight: 3}}, Priority: 1})

	if err := b.EndProgram(); err != nil {
		log.Fatalf("minimize: EndProgram: %v", err)
	}

	s := sat.NewSolver(ctx, opts)
	m := b.Minimize()
	if m != nil {
		s.AddPostPropagator(m)
	}
	if err := s.Attach(); err != nil {
		log.Fatalf("minimize: Attach: %v", err)
	}

	t := time.Now()
	var status sat.LBool
	var best int64 = -1
	for {
		status = s.Solve()
		if status != sat.True {
			break
		}
		best = m.ObjectiveValue(s, 0)
		m.Tighten(0, best)
	}
	elapsed := time.Since(t)

	// s.unsat is now permanent (branch-and-bound's last round proved no
	// strictly better model exists): the last value of best is optimal.
	extra := "no model found"
	if best >= 0 {
		extra = fmt.Sprintf("optimal cost: [%d] (expect [0], model {})", best)
	}

	return report{
		status:    "optimum found",
		numVars:   ctx.NumVars(),
		numRules:  "1 choice, 3 minimize literals at priority 1",
		conflicts: s.TotalConflicts,
		elapsed:   elapsed,
		extra:     extra,
	}
}

func statusString(s *sat.Solver, status sat.LBool) string {
	if s.Unsat() {
		return "unsat"
	}
	return status.String()
}

package sat

// Options configures a Solver's search parameters. It is the Ambient
// Stack's configuration surface: every tunable lives on one plain
// struct with documented defaults, mirroring how yass's Solver takes
// its few parameters directly rather than through a config file or
// flag package (this is a library, not a CLI).
type Options struct {
	// VarDecay is the per-conflict variable activity decay factor.
	VarDecay float64
	// PhaseSaving remembers each variable's last assigned value across
	// backtracks and prefers it on the next decision.
	PhaseSaving bool
	// ReduceStrategy selects the learnt-database reduction algorithm.
	ReduceStrategy ReduceStrategy
	// RestartBase is the number of conflicts before the first restart;
	// Solve grows that budget by 10% after each restart.
	RestartBase int
	// CCMinimization selects how learnt clauses are shrunk after
	// First-UIP resolution.
	CCMinimization MinimizationMode
	// ReduceBase is the number of conflicts between learnt-database
	// reductions; ReduceGrowth arithmetically widens that interval
	// after each reduction, so the database is combed more often early
	// in the search and less often once it has settled (§4.6 "a
	// reduction schedule, geometric or arithmetic in the number of
	// conflicts").
	ReduceBase   int64
	ReduceGrowth int64

	// Trace enables search-progress lines on os.Stderr (conflicts,
	// restarts, learnt-DB size), mirroring yass's printSearchStats.
	Trace bool
}

// DefaultOptions returns the solver defaults used when a Solver is
// constructed with NewSolver(ctx, DefaultOptions()).
func DefaultOptions() Options {
	return Options{
		VarDecay:       0.95,
		PhaseSaving:    true,
		ReduceStrategy: ReduceHeap,
		RestartBase:    100,
		CCMinimization: MinimizeRecursive,
		ReduceBase:     2000,
		ReduceGrowth:   300,
	}
}

// MinimizationMode selects the conflict-clause minimization strategy
// applied after First-UIP resolution (§4.4).
type MinimizationMode uint8

const (
	MinimizeNone MinimizationMode = iota
	MinimizeLocal
	MinimizeRecursive
)

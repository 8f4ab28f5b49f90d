package sat

// PostPropagator is the hook §4.9 describes for propagators that must
// run only once ordinary unit propagation (short implications, clause
// watches, aggregate watches) has reached a fixpoint: the unfounded-set
// checker is the motivating example, since checking for unsupported
// atoms only makes sense once no more atoms can become true through
// ordinary rule firing.
//
// Propagate returns ok=false on conflict. changed reports whether the
// post-propagator enqueued anything, which Solver.Propagate uses to
// decide whether another fixpoint round over the core propagators is
// warranted; a post-propagator that only inspects state without
// enqueueing anything should report changed=false even when it ran.
type PostPropagator interface {
	Propagate(s *Solver) (ok bool, changed bool)

	// Priority orders the post-propagator chain; lower runs first.
	// Ordinary clause/aggregate propagation is implicitly priority 0.
	Priority() int
}

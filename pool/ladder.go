package pool

// ladderStep is one rung of an allocation escalation ladder: it
// either produces a block (ok=true, exit the ladder) or fails
// (ok=false, advance to the next step). Both BinnedPool and
// SimplePool implement their own step bodies, since the cache-lookup
// and growth semantics differ, but share the run-to-exhaustion
// control flow here rather than duplicating the same retry skeleton
// twice.
type ladderStep struct {
	name string
	run  func() (Block, bool)
}

// runLadder executes steps in order, counting each one it takes in
// m's ladder_step_total metric, and returns the first block produced. ok is false once every
// step has been tried and failed.
func runLadder(m *Metrics, steps []ladderStep) (Block, bool) {
	for _, s := range steps {
		m.step(s.name)
		if b, ok := s.run(); ok {
			return b, true
		}
	}
	return Block{}, false
}

package pool

import "github.com/pkg/errors"

// ErrAllocationFailed marks the internal cause recorded when the full
// escalation ladder is exhausted. Alloc never returns it directly; it
// only carries it into debug logging, since Alloc reports failure
// through its boolean return.
var ErrAllocationFailed = errors.New("devpool: allocation failed")

// ErrInvalidFree is a pointer passed to Free that the handle registry
// has no record of. This is a programmer error, so Free panics with
// it rather than returning it.
var ErrInvalidFree = errors.New("devpool: free of untracked pointer")

// wrapLadderFailure annotates ErrAllocationFailed with the step at
// which the ladder gave up, for debug logging only; callers still
// match on errors.Is(err, ErrAllocationFailed).
func wrapLadderFailure(step string) error {
	return errors.Wrapf(ErrAllocationFailed, "ladder exhausted at step %q", step)
}

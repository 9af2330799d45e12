package graph

import (
	"context"
	"time"

	"github.com/ravikrr/agentgraph/label"
)

// nodeTimeout resolves the timeout to apply for a single node attempt, by
// precedence: NodePolicy.Timeout (per-node override), then
// defaultTimeout (Executor-wide default), then 0 (unlimited).
func nodeTimeout(policy *NodePolicy, defaultTimeout time.Duration) time.Duration {
	if policy != nil && policy.Timeout > 0 {
		return policy.Timeout
	}
	return defaultTimeout
}

// runWithTimeout executes fn under a context bounded by timeout (0 means
// unbounded — fn runs under ctx unmodified). If fn does not return before
// the deadline, it reports a timeout via err while leaving fn running in
// the background — callers that need to wait for fn to actually stop
// should use a cancellation-aware node implementation, since Go has no way
// to forcibly abort a running goroutine.
func runWithTimeout[U any](ctx context.Context, timeout time.Duration, nodeLbl label.Label, step int, fn func(context.Context) (U, error)) (U, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val U
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(tctx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-tctx.Done():
		var zero U
		if tctx.Err() == context.DeadlineExceeded {
			return zero, &NodeError{Node: nodeLbl, Step: step, Inner: tctx.Err()}
		}
		return zero, &CancelledError{Cause: tctx.Err()}
	}
}

// RunWallClockBudget, when set with WithRunWallClockBudget, bounds the
// whole run (across every step) rather than any single node attempt. The
// Executor derives a context.WithTimeout from it once per Run, RunStream,
// Resume or ResumeFrom call, at its start.
type RunWallClockBudget = time.Duration

package graph

import (
	"errors"
	"fmt"

	"github.com/ravikrr/agentgraph/label"
)

// ErrSinkClosed is returned by EventSink.Publish once the sink has been
// closed.
var ErrSinkClosed = errors.New("graph: event sink closed")

// ValidationError reports a Graph that failed Build()'s validation: a
// dangling edge, an unreachable node, or a missing entry/terminal.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("graph: invalid graph: %s", e.Reason)
}

// LabelConflictError reports two registrations claiming the same label.
type LabelConflictError struct {
	Label label.Label
}

func (e *LabelConflictError) Error() string {
	return fmt.Sprintf("graph: label %q registered more than once", label.AsStr(e.Label))
}

// CancelledError reports a run that stopped because its context was
// cancelled (directly, or via a timeout).
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("graph: run cancelled: %v", e.Cause)
	}
	return "graph: run cancelled"
}

func (e *CancelledError) Unwrap() error { return e.Cause }

// StepLimitExceededError reports a run that reached its configured maximum
// step count without converging on an empty frontier.
type StepLimitExceededError struct {
	MaxSteps int
}

func (e *StepLimitExceededError) Error() string {
	return fmt.Sprintf("graph: exceeded max steps (%d)", e.MaxSteps)
}

// NodeError wraps the error returned by a node's Run/RunStream, recording
// which node and at which step it failed.
type NodeError struct {
	Node  label.Label
	Step  int
	Inner error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("graph: node %q failed at step %d: %v", label.AsStr(e.Node), e.Step, e.Inner)
}

func (e *NodeError) Unwrap() error { return e.Inner }

// CheckpointError wraps a failure from the checkpoint Store.
type CheckpointError struct {
	Op    string
	Inner error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("graph: checkpoint %s failed: %v", e.Op, e.Inner)
}

func (e *CheckpointError) Unwrap() error { return e.Inner }

// LabelResolutionError reports a persisted label string (in a checkpoint's
// frontier) that no longer resolves to a known Label in this process —
// most often because the graph was rebuilt differently than when the
// checkpoint was written.
type LabelResolutionError struct {
	Raw string
}

func (e *LabelResolutionError) Error() string {
	return fmt.Sprintf("graph: could not resolve label %q", e.Raw)
}

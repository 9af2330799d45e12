package graph

import (
	"time"

	"github.com/ravikrr/agentgraph/graph/emit"
	"github.com/ravikrr/agentgraph/graph/store"
	"github.com/ravikrr/agentgraph/label"
)

// execOptions holds an Executor's resolved configuration. Built by
// applying a slice of Option to a set of defaults.
type execOptions[S any] struct {
	maxSteps           int
	maxConcurrent      int
	defaultNodeTimeout time.Duration
	runWallClockBudget time.Duration
	gracePeriod        time.Duration
	emitter            emit.Emitter
	store              store.Store[S]
	metrics            *PrometheusMetrics
	cost               *CostTracker
	config             map[string]string
	policies           map[label.Label]*NodePolicy
}

func defaultExecOptions[S any]() execOptions[S] {
	return execOptions[S]{
		maxSteps:      1000,
		maxConcurrent: 8,
		emitter:       emit.NewNullEmitter(),
		config:        make(map[string]string),
		policies:      make(map[label.Label]*NodePolicy),
	}
}

// Option configures an Executor. Options are applied in the order given
// to NewExecutor.
type Option[S any] func(*execOptions[S])

// WithMaxSteps caps the number of rounds a run may execute before it
// fails with StepLimitExceededError. 0 disables the cap.
func WithMaxSteps[S any](n int) Option[S] {
	return func(o *execOptions[S]) { o.maxSteps = n }
}

// WithMaxConcurrent bounds how many nodes in a single round's frontier
// run concurrently. The rest queue behind a semaphore.
func WithMaxConcurrent[S any](n int) Option[S] {
	return func(o *execOptions[S]) { o.maxConcurrent = n }
}

// WithDefaultNodeTimeout sets the timeout applied to a node attempt that
// has no NodePolicy.Timeout of its own.
func WithDefaultNodeTimeout[S any](d time.Duration) Option[S] {
	return func(o *execOptions[S]) { o.defaultNodeTimeout = d }
}

// WithRunWallClockBudget bounds the entire run (every round, cumulatively)
// rather than any single node attempt.
func WithRunWallClockBudget[S any](d time.Duration) Option[S] {
	return func(o *execOptions[S]) { o.runWallClockBudget = d }
}

// WithGracePeriod sets how long a cancelled run waits for in-flight nodes
// to return on their own before the run gives up and returns.
func WithGracePeriod[S any](d time.Duration) Option[S] {
	return func(o *execOptions[S]) { o.gracePeriod = d }
}

// WithEmitter sets the lifecycle event sink. Defaults to a NullEmitter.
func WithEmitter[S any](e emit.Emitter) Option[S] {
	return func(o *execOptions[S]) { o.emitter = e }
}

// WithStore enables checkpointing: after each round's reduction, the
// Executor persists the new state and next frontier.
func WithStore[S any](s store.Store[S]) Option[S] {
	return func(o *execOptions[S]) { o.store = s }
}

// WithMetrics attaches Prometheus metrics collection.
func WithMetrics[S any](m *PrometheusMetrics) Option[S] {
	return func(o *execOptions[S]) { o.metrics = m }
}

// WithCostTracker attaches LLM cost tracking; nodes that invoke a model
// record calls against it themselves (see react.ModelNode).
func WithCostTracker[S any](c *CostTracker) Option[S] {
	return func(o *execOptions[S]) { o.cost = c }
}

// WithConfig sets a run-wide key/value configuration map, available to
// every node through NodeContext.Config.
func WithConfig[S any](cfg map[string]string) Option[S] {
	return func(o *execOptions[S]) { o.config = cfg }
}

// WithNodePolicy attaches a NodePolicy (timeout, retry) to a specific
// node label.
func WithNodePolicy[S any](l label.Label, p *NodePolicy) Option[S] {
	return func(o *execOptions[S]) { o.policies[l] = p }
}

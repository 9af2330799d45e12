package graph

import (
	"context"
	"sync"

	"github.com/ravikrr/agentgraph/label"
)

// KV is the small shared key/value handle available to nodes via
// NodeContext, scoped to a single thread-id. It exists for ancillary
// bookkeeping that does not belong in the replayed state itself (cached
// tool schemas, rate-limiter state, connection handles) — nothing written
// through KV is checkpointed.
type KV interface {
	Get(key string) (value any, ok bool)
	Put(key string, value any)
	Delete(key string)
}

// NodeContext carries the per-invocation, non-state information a Node
// needs: which thread it's running under, a scoped KV handle, run-level
// configuration, and cancellation.
type NodeContext struct {
	context.Context

	ThreadID string
	Step     int
	KV       KV
	Config   map[string]string

	// Cost is the run's CostTracker, set when the Executor was built with
	// WithCostTracker. Nil when no tracker is attached — nodes that record
	// model spend should check for nil rather than assume one is present.
	Cost *CostTracker
}

// NodeOutcome is what a Node produces for one invocation: the state update
// to fold in, and the labels of the successors it has chosen (for nodes
// with data-dependent routing). Next may be nil — a node with only static
// outgoing edges leaves routing entirely to the Graph's edge set.
type NodeOutcome[U any] struct {
	Update U
	Next   []label.Label
}

// Node is a single vertex in a StateGraph. Run is invoked once per round
// that the node appears in the frontier, receives the state as of the
// start of that round, and must return deterministically given (ctx.state,
// this node's own inputs) — no wall-clock time, randomness, or unguarded
// external mutation.
type Node[S, U any] interface {
	Run(ctx *NodeContext, state S) (NodeOutcome[U], error)
}

// StreamingNode is implemented by nodes that also want to publish
// incremental events (partial model tokens, progress updates) while
// running. RunStream must still return the same final NodeOutcome that
// Run would; sink receives zero or more events before the call returns.
// Events are typed `any` at this boundary (rather than a per-node generic
// parameter) so the Executor can detect and drive StreamingNode without
// itself being parameterized over every node's event type; a node that
// wants a strongly-typed sink for its own internal use can wrap one
// underneath and type-assert ev within RunStream.
type StreamingNode[S, U any] interface {
	Node[S, U]
	RunStream(ctx *NodeContext, state S, sink EventSink[any]) (NodeOutcome[U], error)
}

// NodeFunc adapts a plain function to Node.
type NodeFunc[S, U any] func(ctx *NodeContext, state S) (NodeOutcome[U], error)

// Run implements Node.
func (f NodeFunc[S, U]) Run(ctx *NodeContext, state S) (NodeOutcome[U], error) {
	return f(ctx, state)
}

// mapKV is the default in-memory KV implementation bound to a thread-id.
// Nodes within the same round run concurrently and may share a thread-id,
// so access is mutex-guarded.
type mapKV struct {
	mu   sync.Mutex
	data map[string]any
}

func newMapKV() *mapKV {
	return &mapKV{data: make(map[string]any)}
}

func (m *mapKV) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mapKV) Put(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *mapKV) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

package graph

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ravikrr/agentgraph/graph/emit"
	"github.com/ravikrr/agentgraph/graph/store"
	"github.com/ravikrr/agentgraph/label"
)

// Executor runs a StateGraph to completion: repeatedly computing the
// current frontier, running every node in it concurrently, folding their
// updates into state in registration order, and advancing to the next
// frontier, until the frontier is empty.
type Executor[S, U any] struct {
	graph *StateGraph[S, U]
	opts  execOptions[S]
}

// NewExecutor binds sg to the given Options.
func NewExecutor[S, U any](sg *StateGraph[S, U], opts ...Option[S]) *Executor[S, U] {
	o := defaultExecOptions[S]()
	for _, opt := range opts {
		opt(&o)
	}
	return &Executor[S, U]{graph: sg, opts: o}
}

// initRNG derives a deterministic RNG seed from threadID, so two runs of
// the same graph on the same threadID produce the same sequence of
// retry-jitter delays and any node that chooses to consult
// ctx.Value(rngKey) for its own randomness.
func initRNG(threadID string) *rand.Rand {
	sum := sha256.Sum256([]byte(threadID))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	return rand.New(rand.NewSource(seed))
}

type contextKey string

const rngKey contextKey = "agentgraph.rng"

// RNGFromContext returns the run's deterministic RNG, if the context was
// produced by an Executor run (it always is, for nodes — see NodeContext).
func RNGFromContext(ctx context.Context) (*rand.Rand, bool) {
	rng, ok := ctx.Value(rngKey).(*rand.Rand)
	return rng, ok
}

// Run executes the graph starting from initial, under threadID, and
// returns the converged final state.
//
// Running more than one Executor concurrently against the same threadID
// is unsupported: checkpoint parent-linking assumes a single writer per
// thread, and concurrent writers can interleave steps in ways that break
// the strictly-increasing-step invariant. Callers that need concurrent
// conversations must use distinct threadIDs.
func (ex *Executor[S, U]) Run(ctx context.Context, threadID string, initial S) (S, error) {
	return ex.run(ctx, threadID, initial, []label.Label{ex.graph.Entry()}, "", 0, nil)
}

// RunStream behaves like Run, except every node that implements
// StreamingNode is driven through RunStream instead of Run, publishing its
// events to sink as it runs. Events from concurrent nodes in the same
// round may interleave on sink; within a single node, emission order is
// preserved. Nodes that don't implement StreamingNode run exactly as they
// would under Run and publish nothing.
func (ex *Executor[S, U]) RunStream(ctx context.Context, threadID string, initial S, sink EventSink[any]) (S, error) {
	return ex.run(ctx, threadID, initial, []label.Label{ex.graph.Entry()}, "", 0, sink)
}

// Resume continues a run from the latest checkpoint recorded for
// threadID. Requires WithStore to have been configured.
func (ex *Executor[S, U]) Resume(ctx context.Context, threadID string) (S, error) {
	return ex.resumeLatest(ctx, threadID, nil)
}

// ResumeStream is Resume's streaming counterpart — see RunStream.
func (ex *Executor[S, U]) ResumeStream(ctx context.Context, threadID string, sink EventSink[any]) (S, error) {
	return ex.resumeLatest(ctx, threadID, sink)
}

func (ex *Executor[S, U]) resumeLatest(ctx context.Context, threadID string, sink EventSink[any]) (S, error) {
	var zero S
	if ex.opts.store == nil {
		return zero, &ValidationError{Reason: "Resume requires WithStore"}
	}
	cp, err := ex.opts.store.GetLatest(ctx, threadID)
	if err != nil {
		return zero, &CheckpointError{Op: "GetLatest", Inner: err}
	}
	return ex.resumeFrom(ctx, cp, sink)
}

// ResumeFrom continues execution from a specific checkpoint id, rather
// than the thread's latest — the mechanism that makes branching possible:
// calling ResumeFrom on a non-latest checkpoint starts a new line of
// history whose parent is that checkpoint, leaving the original line
// untouched.
func (ex *Executor[S, U]) ResumeFrom(ctx context.Context, checkpointID string) (S, error) {
	return ex.resumeFromID(ctx, checkpointID, nil)
}

// ResumeFromStream is ResumeFrom's streaming counterpart — see RunStream.
func (ex *Executor[S, U]) ResumeFromStream(ctx context.Context, checkpointID string, sink EventSink[any]) (S, error) {
	return ex.resumeFromID(ctx, checkpointID, sink)
}

func (ex *Executor[S, U]) resumeFromID(ctx context.Context, checkpointID string, sink EventSink[any]) (S, error) {
	var zero S
	if ex.opts.store == nil {
		return zero, &ValidationError{Reason: "ResumeFrom requires WithStore"}
	}
	cp, err := ex.opts.store.Get(ctx, checkpointID)
	if err != nil {
		return zero, &CheckpointError{Op: "Get", Inner: err}
	}
	return ex.resumeFrom(ctx, cp, sink)
}

func (ex *Executor[S, U]) resumeFrom(ctx context.Context, cp store.Checkpoint[S], sink EventSink[any]) (S, error) {
	var zero S
	frontier, badRaw, ok := cp.ResolvedFrontier()
	if !ok {
		return zero, &LabelResolutionError{Raw: badRaw}
	}
	return ex.run(ctx, cp.ThreadID, cp.State, frontier, cp.ID, cp.Step, sink)
}

func (ex *Executor[S, U]) run(ctx context.Context, threadID string, initial S, frontier []label.Label, parentCheckpoint string, startStep int, sink EventSink[any]) (S, error) {
	state := initial

	if ex.opts.runWallClockBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ex.opts.runWallClockBudget)
		defer cancel()
	}

	rng := initRNG(threadID)
	ctx = context.WithValue(ctx, rngKey, rng)
	kv := newMapKV()

	step := startStep
	for {
		if len(frontier) == 0 {
			return state, nil
		}
		if err := ctx.Err(); err != nil {
			return state, ex.cancelledErr(err)
		}

		active, hasTerminal := splitTerminal(frontier)
		if hasTerminal && len(active) == 0 {
			return state, nil
		}

		step++
		if ex.opts.maxSteps > 0 && step > ex.opts.maxSteps {
			return state, &StepLimitExceededError{MaxSteps: ex.opts.maxSteps}
		}

		runFrontier := frontier
		if hasTerminal {
			runFrontier = active
		}

		ex.emitRoundStart(threadID, step, runFrontier)
		if ex.opts.metrics != nil {
			ex.opts.metrics.UpdateFrontierSize(len(runFrontier))
		}

		results := ex.runRound(ctx, threadID, step, kv, state, runFrontier, sink)

		for _, r := range results {
			if r.err != nil {
				ex.emitError(threadID, r.node, step, r.err)
				if ctxErr := ctx.Err(); ctxErr != nil {
					return state, ex.cancelledErr(ctxErr)
				}
				return state, r.err
			}
		}

		state = ex.reduceRound(state, results)

		// A frontier that carried the terminal label alongside active
		// nodes converges unconditionally: whatever those nodes route to
		// next is discarded, and the run stops after this round.
		var next []label.Label
		if hasTerminal {
			next = []label.Label{Terminal}
		} else {
			next = nextFrontier(results)
		}

		if ex.opts.store != nil {
			id, err := ex.checkpoint(ctx, threadID, step, state, next, parentCheckpoint)
			if err != nil {
				return state, err
			}
			parentCheckpoint = id
		}

		ex.emitRoundEnd(threadID, step)

		if hasTerminal {
			return state, nil
		}
		frontier = next
	}
}

// cancelledErr wraps cause as a CancelledError. Called only once ctx is
// already done (between rounds, or after a round that failed with ctx
// done) — the grace period that matters is the one runRound has already
// applied to nodes still running mid-round, not an extra wait here.
func (ex *Executor[S, U]) cancelledErr(cause error) error {
	return &CancelledError{Cause: cause}
}

// reduceRound folds each result's update into state in the graph's
// registration order, not the order results happened to complete in —
// this is what keeps concurrent execution deterministic.
func (ex *Executor[S, U]) reduceRound(state S, results []roundResult[U]) S {
	byLabel := make(map[label.Label]roundResult[U], len(results))
	labels := make([]label.Label, 0, len(results))
	for _, r := range results {
		byLabel[r.node] = r
		labels = append(labels, r.node)
	}
	ordered := ex.graph.sortByRegistration(labels)
	for _, l := range ordered {
		state = ex.graph.reduce(state, byLabel[l].update)
	}
	return state
}

func (ex *Executor[S, U]) checkpoint(ctx context.Context, threadID string, step int, state S, next []label.Label, parentID string) (string, error) {
	cp := store.Checkpoint[S]{
		ID:       uuid.NewString(),
		ThreadID: threadID,
		ParentID: parentID,
		Step:     step,
		State:    state,
		Frontier: labelsToStrings(next),
		Metadata: map[string]string{},
		SavedAt:  time.Now().UTC(),
	}
	if err := ex.opts.store.Put(ctx, cp); err != nil {
		if ex.opts.metrics != nil {
			ex.opts.metrics.IncrementCheckpointErrors("Put")
		}
		return "", &CheckpointError{Op: "Put", Inner: err}
	}
	return cp.ID, nil
}

func labelsToStrings(labels []label.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = label.AsStr(l)
	}
	return out
}

// runRound executes every node in frontier concurrently, bounded by
// opts.maxConcurrent, and returns one roundResult per node in frontier
// order (the slice index matches frontier's index, not completion order).
//
// A node that ignores ctx.Done() cannot be made to return, so runRound
// does not wait for it indefinitely: once the round's context is done
// (a sibling errored, or the run's own ctx was cancelled), it gives every
// still-running node opts.gracePeriod to finish cooperatively and then
// gives up, reporting CancelledError for whichever nodes never checked
// in. Their goroutines are abandoned, not killed — they may still be
// running when runRound returns, but they write into slots that nothing
// else reads again, so this is safe, not a race.
func (ex *Executor[S, U]) runRound(ctx context.Context, threadID string, step int, kv KV, state S, frontier []label.Label, sink EventSink[any]) []roundResult[U] {
	slots := make([]atomic.Pointer[roundResult[U]], len(frontier))
	sem := make(chan struct{}, ex.opts.maxConcurrent)
	var wg sync.WaitGroup
	var inflight int64

	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i, lbl := range frontier {
		wg.Add(1)
		go func(i int, lbl label.Label) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-roundCtx.Done():
				slots[i].Store(&roundResult[U]{node: lbl, err: &CancelledError{Cause: roundCtx.Err()}})
				return
			}
			if ex.opts.metrics != nil {
				n := atomic.AddInt64(&inflight, 1)
				ex.opts.metrics.UpdateInflightNodes(int(n))
			}
			r := ex.runOne(roundCtx, threadID, step, kv, state, lbl, sink)
			if ex.opts.metrics != nil {
				n := atomic.AddInt64(&inflight, -1)
				ex.opts.metrics.UpdateInflightNodes(int(n))
			}
			<-sem
			slots[i].Store(&r)
			if r.err != nil {
				cancel()
			}
		}(i, lbl)
	}

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-roundCtx.Done():
		select {
		case <-waitDone:
		case <-time.After(ex.opts.gracePeriod):
		}
	}

	results := make([]roundResult[U], len(frontier))
	for i, lbl := range frontier {
		if p := slots[i].Load(); p != nil {
			results[i] = *p
		} else {
			results[i] = roundResult[U]{node: lbl, err: &CancelledError{Cause: roundCtx.Err()}}
		}
	}
	return results
}

func (ex *Executor[S, U]) runOne(ctx context.Context, threadID string, step int, kv KV, state S, lbl label.Label, sink EventSink[any]) roundResult[U] {
	node, ok := ex.graph.graph.node(lbl)
	if !ok {
		return roundResult[U]{node: lbl, err: &ValidationError{Reason: "node not found: " + label.AsStr(lbl)}}
	}

	streaming, canStream := node.(StreamingNode[S, U])

	policy := ex.opts.policies[lbl]
	timeout := nodeTimeout(policy, ex.opts.defaultNodeTimeout)

	ex.emitNodeStart(threadID, lbl, step)
	start := time.Now()

	var outcome NodeOutcome[U]
	runAttempt := func() error {
		nodeCtx := &NodeContext{Context: ctx, ThreadID: threadID, Step: step, KV: kv, Config: ex.opts.config, Cost: ex.opts.cost}
		o, err := runWithTimeout(ctx, timeout, lbl, step, func(c context.Context) (NodeOutcome[U], error) {
			nodeCtx.Context = c
			if sink != nil && canStream {
				return streaming.RunStream(nodeCtx, state, sink)
			}
			return node.Run(nodeCtx, state)
		})
		outcome = o
		return err
	}

	var err error
	if policy != nil && policy.Retry != nil {
		rng, _ := RNGFromContext(ctx)
		attempt := 0
		err = Retry(ctx, policy.Retry, rng, func() error {
			if attempt > 0 && ex.opts.metrics != nil {
				ex.opts.metrics.IncrementRetries(threadID, lbl, "error")
			}
			attempt++
			return runAttempt()
		})
	} else {
		err = runAttempt()
	}

	status := "success"
	if err != nil {
		status = "error"
		err = &NodeError{Node: lbl, Step: step, Inner: err}
	}
	if ex.opts.metrics != nil {
		ex.opts.metrics.RecordStepLatency(threadID, lbl, time.Since(start), status)
	}
	ex.emitNodeEnd(threadID, lbl, step, status)

	if err != nil {
		return roundResult[U]{node: lbl, err: err}
	}

	successors := ex.graph.graph.successors(lbl, state, outcome.Update, outcome.Next)
	return roundResult[U]{node: lbl, update: outcome.Update, successors: successors}
}

func (ex *Executor[S, U]) emitRoundStart(threadID string, step int, frontier []label.Label) {
	ex.opts.emitter.Emit(emit.Event{
		RunID: threadID,
		Step:  step,
		Msg:   "round_start",
		Meta:  map[string]any{"frontier": labelsToStrings(frontier)},
	})
}

func (ex *Executor[S, U]) emitRoundEnd(threadID string, step int) {
	ex.opts.emitter.Emit(emit.Event{RunID: threadID, Step: step, Msg: "round_end"})
}

func (ex *Executor[S, U]) emitNodeStart(threadID string, node label.Label, step int) {
	ex.opts.emitter.Emit(emit.Event{RunID: threadID, Step: step, NodeID: label.AsStr(node), Msg: "node_start"})
}

func (ex *Executor[S, U]) emitNodeEnd(threadID string, node label.Label, step int, status string) {
	ex.opts.emitter.Emit(emit.Event{RunID: threadID, Step: step, NodeID: label.AsStr(node), Msg: "node_end", Meta: map[string]any{"status": status}})
}

func (ex *Executor[S, U]) emitError(threadID string, node label.Label, step int, err error) {
	ex.opts.emitter.Emit(emit.Event{RunID: threadID, Step: step, NodeID: label.AsStr(node), Msg: "error", Meta: map[string]any{"error": err.Error()}})
}

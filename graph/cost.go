package graph

import (
	"fmt"
	"sync"
	"time"

	"github.com/ravikrr/agentgraph/label"
)

// ModelPricing is the USD cost per 1M input/output tokens for one model.
type ModelPricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// defaultModelPricing is a static snapshot of published per-token pricing
// for the providers wired under graph/model. Update as providers change
// prices; unknown models cost $0 rather than failing a run.
var defaultModelPricing = map[string]ModelPricing{
	"gpt-4o":                     {InputPer1M: 2.50, OutputPer1M: 10.00},
	"gpt-4o-mini":                {InputPer1M: 0.15, OutputPer1M: 0.60},
	"gpt-4-turbo":                {InputPer1M: 10.00, OutputPer1M: 30.00},
	"gpt-3.5-turbo":               {InputPer1M: 0.50, OutputPer1M: 1.50},
	"claude-3-5-sonnet-20241022": {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-opus":              {InputPer1M: 15.00, OutputPer1M: 75.00},
	"claude-3-sonnet":            {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-haiku":             {InputPer1M: 0.25, OutputPer1M: 1.25},
	"gemini-1.5-pro":             {InputPer1M: 1.25, OutputPer1M: 5.00},
	"gemini-1.5-flash":           {InputPer1M: 0.075, OutputPer1M: 0.30},
	"gemini-1.0-pro":             {InputPer1M: 0.50, OutputPer1M: 1.50},
}

// LLMCall is one recorded model invocation.
type LLMCall struct {
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Timestamp    time.Time
	Node         label.Label
}

// CostTracker accumulates token usage and USD cost across a run's model
// invocations, attributing spend per model and per node for budget
// monitoring and post-run reporting.
type CostTracker struct {
	ThreadID string
	Currency string
	Pricing  map[string]ModelPricing

	mu           sync.RWMutex
	calls        []LLMCall
	totalCost    float64
	modelCosts   map[string]float64
	inputTokens  int64
	outputTokens int64
	enabled      bool
}

// NewCostTracker returns a CostTracker for threadID using the built-in
// pricing table.
func NewCostTracker(threadID, currency string) *CostTracker {
	return &CostTracker{
		ThreadID:   threadID,
		Currency:   currency,
		Pricing:    defaultModelPricing,
		calls:      make([]LLMCall, 0, 16),
		modelCosts: make(map[string]float64),
		enabled:    true,
	}
}

// RecordLLMCall records one invocation's token usage and computes its
// cost from the tracker's pricing table.
func (ct *CostTracker) RecordLLMCall(model string, inputTokens, outputTokens int, node label.Label) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if !ct.enabled {
		return
	}

	pricing, ok := ct.Pricing[model]
	if !ok {
		pricing = ModelPricing{}
	}

	cost := (float64(inputTokens)/1_000_000.0)*pricing.InputPer1M + (float64(outputTokens)/1_000_000.0)*pricing.OutputPer1M

	ct.calls = append(ct.calls, LLMCall{
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      cost,
		Timestamp:    time.Now(),
		Node:         node,
	})
	ct.totalCost += cost
	ct.modelCosts[model] += cost
	ct.inputTokens += int64(inputTokens)
	ct.outputTokens += int64(outputTokens)
}

// TotalCost returns the cumulative cost recorded so far.
func (ct *CostTracker) TotalCost() float64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.totalCost
}

// CostByModel returns a copy of the per-model cost breakdown.
func (ct *CostTracker) CostByModel() map[string]float64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	out := make(map[string]float64, len(ct.modelCosts))
	for k, v := range ct.modelCosts {
		out[k] = v
	}
	return out
}

// CallHistory returns a copy of every call recorded so far, in order.
func (ct *CostTracker) CallHistory() []LLMCall {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	out := make([]LLMCall, len(ct.calls))
	copy(out, ct.calls)
	return out
}

// TokenUsage returns cumulative input/output token counts.
func (ct *CostTracker) TokenUsage() (input, output int64) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.inputTokens, ct.outputTokens
}

// SetCustomPricing overrides (or adds) pricing for a model.
func (ct *CostTracker) SetCustomPricing(model string, inputPer1M, outputPer1M float64) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if ct.Pricing == nil || sharesDefaultTable(ct.Pricing) {
		fresh := make(map[string]ModelPricing, len(defaultModelPricing)+1)
		for k, v := range defaultModelPricing {
			fresh[k] = v
		}
		ct.Pricing = fresh
	}
	ct.Pricing[model] = ModelPricing{InputPer1M: inputPer1M, OutputPer1M: outputPer1M}
}

func sharesDefaultTable(m map[string]ModelPricing) bool {
	v, ok := m["gpt-4o"]
	dv, dok := defaultModelPricing["gpt-4o"]
	return ok && dok && v == dv && len(m) == len(defaultModelPricing)
}

// Disable stops recording new calls (existing totals are kept).
func (ct *CostTracker) Disable() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.enabled = false
}

// Enable resumes recording after Disable.
func (ct *CostTracker) Enable() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.enabled = true
}

// String returns a human-readable summary.
func (ct *CostTracker) String() string {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return fmt.Sprintf("CostTracker{ThreadID: %s, calls: %d, total: %.4f %s, inputTokens: %d, outputTokens: %d}",
		ct.ThreadID, len(ct.calls), ct.totalCost, ct.Currency, ct.inputTokens, ct.outputTokens)
}

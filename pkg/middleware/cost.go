package middleware

import (
	"context"
	"sync"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// PriceTable maps a model name to its per-token prices, in
// dollars-per-token, so costs stay precise for cheap high-volume models
// rather than rounding to dollars-per-million-tokens.
type PriceTable map[string]ModelPrice

type ModelPrice struct {
	InputPerToken  float64
	OutputPerToken float64
}

// CostTracking computes the dollar cost of each request from its
// reported Usage and accumulates a running total, keyed by model. A
// model absent from the PriceTable contributes zero cost but is still
// counted, so totals stay visible even before pricing is configured.
type CostTracking struct {
	Prices PriceTable

	mu        sync.Mutex
	totalCost map[string]float64
}

func NewCostTracking(prices PriceTable) *CostTracking {
	return &CostTracking{Prices: prices, totalCost: make(map[string]float64)}
}

func (c *CostTracking) Name() string { return "cost_tracking" }

func (c *CostTracking) WrapHandler(next Handler) Handler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		resp, err := next(ctx, req)
		if err != nil {
			return resp, err
		}
		c.record(modelOf(req), resp.Usage)
		return resp, nil
	}
}

func (c *CostTracking) WrapStreamHandler(next StreamHandler) StreamHandler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
		stream, err := next(ctx, req)
		if err != nil {
			return stream, err
		}
		return &costTrackingStream{ChatStream: stream, tracker: c, model: modelOf(req)}, nil
	}
}

func (c *CostTracking) record(model string, usage *ir.Usage) {
	if usage == nil {
		return
	}
	price := c.Prices[model]
	cost := float64(usage.PromptTokens)*price.InputPerToken + float64(usage.CompletionTokens)*price.OutputPerToken

	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalCost[model] += cost
}

// TotalCost returns the accumulated cost for a model since this
// middleware was created.
func (c *CostTracking) TotalCost(model string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCost[model]
}

type costTrackingStream struct {
	ir.ChatStream
	tracker *CostTracking
	model   string
}

func (s *costTrackingStream) Next() (ir.StreamChunk, bool) {
	chunk, ok := s.ChatStream.Next()
	if ok && chunk.Type == ir.ChunkDone {
		s.tracker.record(s.model, chunk.Usage)
	}
	return chunk, ok
}

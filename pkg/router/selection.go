package router

import (
	"math/rand"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// SelectionStrategy picks a backend to serve a request from the set of
// currently healthy candidates. Implementations must not mutate
// candidates.
type SelectionStrategy interface {
	Name() string
	Select(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error)
}

// ExplicitStrategy selects the backend whose name matches
// req.Metadata.Custom["backend"], if present. Falls through to the
// fallback strategy otherwise (the router only invokes this strategy
// when an explicit backend was actually requested).
type ExplicitStrategy struct{}

func (ExplicitStrategy) Name() string { return "explicit" }

func (ExplicitStrategy) Select(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error) {
	want, _ := req.Metadata.Custom["backend"].(string)
	for _, c := range candidates {
		if c.name == want {
			return c, nil
		}
	}
	return nil, errNoMatch
}

// ModelRouting configures ModelBasedStrategy: an exact requested-model
// to backend-name map, and a priority-sorted regex pattern fallback
// used when no exact entry matches.
type ModelRouting struct {
	Mapping  map[string]string
	Patterns []ModelPattern
}

// ModelBasedStrategy selects the backend its ModelRouting table maps
// the requested model to: an exact Mapping entry first, then the
// highest-priority matching Patterns rule. A candidate list that
// doesn't include the mapped backend name (e.g. because it is
// unhealthy) is treated as no match.
type ModelBasedStrategy struct {
	Routing ModelRouting
}

func (ModelBasedStrategy) Name() string { return "model_based" }

func (s ModelBasedStrategy) Select(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error) {
	model := ""
	if req.Parameters != nil {
		model = req.Parameters.Model
	}

	backendName, ok := s.Routing.Mapping[model]
	if !ok {
		backendName, ok = matchPattern(compilePatterns(s.Routing.Patterns), model)
	}
	if !ok {
		return nil, errNoMatch
	}
	for _, c := range candidates {
		if c.name == backendName {
			return c, nil
		}
	}
	return nil, errNoMatch
}

// CostOptimizedStrategy selects the cheapest candidate. A backend that
// has completed at least one request and implements
// adapter.CostEstimator is ranked on its observed average cost per
// request; every other backend falls back to its configured
// CostPerMillionTokens hint, so cold-start backends with no observed
// cost yet are still ranked sensibly against ones that do.
type CostOptimizedStrategy struct{}

func (CostOptimizedStrategy) Name() string { return "cost_optimized" }

func (CostOptimizedStrategy) Select(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error) {
	if len(candidates) == 0 {
		return nil, errNoMatch
	}
	best := candidates[0]
	bestCost := costOf(best)
	for _, c := range candidates[1:] {
		if cost := costOf(c); cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best, nil
}

// costOf prefers a backend's own observed average cost per request
// over its static CostPerMillionTokens hint, once it has one.
func costOf(c *backendEntry) float64 {
	if observed := c.stats.averageCost(); observed > 0 {
		return observed
	}
	return c.config.CostPerMillionTokens
}

// LatencyOptimizedStrategy selects the candidate with the lowest
// observed average latency. Backends with no samples yet are treated
// as latency 0, so they are tried at least once before being ranked
// against backends with real history.
type LatencyOptimizedStrategy struct{}

func (LatencyOptimizedStrategy) Name() string { return "latency_optimized" }

func (LatencyOptimizedStrategy) Select(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error) {
	if len(candidates) == 0 {
		return nil, errNoMatch
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.stats.averageLatency() < best.stats.averageLatency() {
			best = c
		}
	}
	return best, nil
}

// RoundRobinStrategy cycles through candidates in order. It keeps its
// own counter rather than relying on candidate ordering being stable,
// since backend registration order can change between calls.
type RoundRobinStrategy struct {
	counter *uint64Counter
}

func NewRoundRobinStrategy() *RoundRobinStrategy {
	return &RoundRobinStrategy{counter: &uint64Counter{}}
}

func (s *RoundRobinStrategy) Name() string { return "round_robin" }

func (s *RoundRobinStrategy) Select(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error) {
	if len(candidates) == 0 {
		return nil, errNoMatch
	}
	i := s.counter.next() % uint64(len(candidates))
	return candidates[i], nil
}

// RandomStrategy picks a candidate uniformly at random, weighted by
// BackendConfig.Weight when set.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) Select(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error) {
	if len(candidates) == 0 {
		return nil, errNoMatch
	}
	total := 0
	for _, c := range candidates {
		total += weightOf(c)
	}
	pick := rand.Intn(total)
	for _, c := range candidates {
		pick -= weightOf(c)
		if pick < 0 {
			return c, nil
		}
	}
	return candidates[len(candidates)-1], nil
}

func weightOf(c *backendEntry) int {
	if c.config.Weight <= 0 {
		return 1
	}
	return c.config.Weight
}

// CapabilityBasedStrategy scores each candidate by how many of the
// request's required capabilities (tools, image input, streaming) it
// supports, and returns the highest scoring one. Candidates missing a
// capability the request actually needs are excluded outright rather
// than merely scored lower.
type CapabilityBasedStrategy struct{}

func (CapabilityBasedStrategy) Name() string { return "capability_based" }

func (CapabilityBasedStrategy) Select(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error) {
	if len(candidates) == 0 {
		return nil, errNoMatch
	}
	needsTools := req.Parameters != nil && len(req.Parameters.Tools) > 0
	needsImages := requestHasImages(req)

	var best *backendEntry
	bestScore := -1
	for _, c := range candidates {
		caps := c.config.Backend.Capabilities()
		score := 0
		if caps.SupportsStreaming {
			score++
		}
		if needsTools && caps.SupportsTools {
			score += 2
		}
		if needsImages && caps.SupportsImageInput {
			score += 2
		}
		if needsTools && !caps.SupportsTools {
			continue
		}
		if needsImages && !caps.SupportsImageInput {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best == nil {
		return nil, errNoMatch
	}
	return best, nil
}

func requestHasImages(req ir.ChatRequest) bool {
	for _, m := range req.Messages {
		for _, block := range m.Content {
			if _, ok := block.(ir.ImageBlock); ok {
				return true
			}
		}
	}
	return false
}

// CustomStrategy wraps a caller-supplied selection function, for
// strategies the router cannot anticipate.
type CustomStrategy struct {
	StrategyName string
	SelectFunc   func(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error)
}

func (c CustomStrategy) Name() string {
	if c.StrategyName != "" {
		return c.StrategyName
	}
	return "custom"
}

func (c CustomStrategy) Select(req ir.ChatRequest, candidates []*backendEntry) (*backendEntry, error) {
	return c.SelectFunc(req, candidates)
}

package router

import (
	"testing"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

func entryFor(name string, caps adapter.Capabilities, cost float64) *backendEntry {
	e := newBackendEntry(name, BackendConfig{
		Backend:              &fakeBackend{name: name, caps: caps},
		CostPerMillionTokens: cost,
	})
	return e
}

func TestCostOptimizedStrategy(t *testing.T) {
	cheap := entryFor("cheap", adapter.Capabilities{}, 0.5)
	pricey := entryFor("pricey", adapter.Capabilities{}, 5.0)

	got, err := CostOptimizedStrategy{}.Select(ir.ChatRequest{}, []*backendEntry{pricey, cheap})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.name != "cheap" {
		t.Fatalf("selected %q, want cheap", got.name)
	}
}

type costEstimatingBackend struct {
	*fakeBackend
	perRequest float64
}

func (b *costEstimatingBackend) EstimateCost(usage ir.Usage) float64 { return b.perRequest }

func TestCostOptimizedStrategyPrefersObservedCost(t *testing.T) {
	observed := newBackendEntry("observed", BackendConfig{
		Backend:              &costEstimatingBackend{fakeBackend: okBackend("observed"), perRequest: 2.0},
		CostPerMillionTokens: 0.1,
	})
	observed.stats.record(0, true)
	observed.stats.addCost(2.0)

	staticHint := entryFor("static-hint", adapter.Capabilities{}, 1.0)

	got, err := CostOptimizedStrategy{}.Select(ir.ChatRequest{}, []*backendEntry{observed, staticHint})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.name != "static-hint" {
		t.Fatalf("selected %q, want static-hint (cheaper than observed's real cost)", got.name)
	}
}

func TestCapabilityBasedStrategyRequiresTools(t *testing.T) {
	noTools := entryFor("no-tools", adapter.Capabilities{}, 0)
	withTools := entryFor("with-tools", adapter.Capabilities{SupportsTools: true}, 0)

	req := ir.ChatRequest{Parameters: &ir.Parameters{Tools: []ir.Tool{{Name: "search"}}}}
	got, err := CapabilityBasedStrategy{}.Select(req, []*backendEntry{noTools, withTools})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.name != "with-tools" {
		t.Fatalf("selected %q, want with-tools", got.name)
	}
}

func TestCapabilityBasedStrategyNoMatch(t *testing.T) {
	noTools := entryFor("no-tools", adapter.Capabilities{}, 0)
	req := ir.ChatRequest{Parameters: &ir.Parameters{Tools: []ir.Tool{{Name: "search"}}}}
	_, err := CapabilityBasedStrategy{}.Select(req, []*backendEntry{noTools})
	if err == nil {
		t.Fatal("expected no-match error when no candidate supports tools")
	}
}

func TestRoundRobinCyclesThroughCandidates(t *testing.T) {
	a := entryFor("a", adapter.Capabilities{}, 0)
	b := entryFor("b", adapter.Capabilities{}, 0)
	strategy := NewRoundRobinStrategy()

	candidates := []*backendEntry{a, b}
	first, _ := strategy.Select(ir.ChatRequest{}, candidates)
	second, _ := strategy.Select(ir.ChatRequest{}, candidates)
	third, _ := strategy.Select(ir.ChatRequest{}, candidates)

	if first.name != "a" || second.name != "b" || third.name != "a" {
		t.Fatalf("round robin sequence = %s,%s,%s, want a,b,a", first.name, second.name, third.name)
	}
}

func TestModelTranslationPrecedence(t *testing.T) {
	tr := ModelTranslation{
		PerBackend: map[string]map[string]string{"openai": {"fast": "gpt-4o-mini-per-backend"}},
		Global:     map[string]string{"fast": "gpt-4o-mini-global"},
		Patterns:   []ModelPattern{{Pattern: "^claude-", Target: "claude-3-5-sonnet"}},
	}

	if got, err := tr.Resolve("openai", "fast"); err != nil || got != "gpt-4o-mini-per-backend" {
		t.Fatalf("per-backend resolve = (%q, %v), want gpt-4o-mini-per-backend", got, err)
	}
	if got, err := tr.Resolve("anthropic", "fast"); err != nil || got != "gpt-4o-mini-global" {
		t.Fatalf("global resolve = (%q, %v), want gpt-4o-mini-global", got, err)
	}
	if got, err := tr.Resolve("anthropic", "claude-latest"); err != nil || got != "claude-3-5-sonnet" {
		t.Fatalf("pattern resolve = (%q, %v), want claude-3-5-sonnet", got, err)
	}
	if got, err := tr.Resolve("anthropic", "untranslated"); err != nil || got != "untranslated" {
		t.Fatalf("passthrough resolve = (%q, %v), want untranslated", got, err)
	}
}

func TestModelTranslationStrictModeFailsOnPassthrough(t *testing.T) {
	tr := ModelTranslation{StrictMode: true}
	if _, err := tr.Resolve("openai", "unmapped"); err == nil {
		t.Fatal("expected strict-mode resolve to fail on an unresolved model")
	}
}

func TestModelTranslationPatternPriority(t *testing.T) {
	tr := ModelTranslation{
		Patterns: []ModelPattern{
			{Pattern: "^gpt-", Target: "low-priority", Priority: 1},
			{Pattern: "^gpt-4", Target: "high-priority", Priority: 10},
		},
	}
	got, err := tr.Resolve("openai", "gpt-4o")
	if err != nil || got != "high-priority" {
		t.Fatalf("Resolve = (%q, %v), want high-priority to win on priority", got, err)
	}
}

func TestModelBasedStrategyExactMapping(t *testing.T) {
	a := entryFor("a", adapter.Capabilities{}, 0)
	b := entryFor("b", adapter.Capabilities{}, 0)
	strategy := ModelBasedStrategy{Routing: ModelRouting{Mapping: map[string]string{"claude-3-5-sonnet": "b"}}}

	got, err := strategy.Select(ir.ChatRequest{Parameters: &ir.Parameters{Model: "claude-3-5-sonnet"}}, []*backendEntry{a, b})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.name != "b" {
		t.Fatalf("selected %q, want b", got.name)
	}
}

func TestModelBasedStrategyPatternFallback(t *testing.T) {
	a := entryFor("a", adapter.Capabilities{}, 0)
	strategy := ModelBasedStrategy{Routing: ModelRouting{
		Patterns: []ModelPattern{{Pattern: "^claude-", Target: "a"}},
	}}

	got, err := strategy.Select(ir.ChatRequest{Parameters: &ir.Parameters{Model: "claude-3-opus"}}, []*backendEntry{a})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.name != "a" {
		t.Fatalf("selected %q, want a", got.name)
	}
}

func TestModelBasedStrategyNoMatch(t *testing.T) {
	a := entryFor("a", adapter.Capabilities{}, 0)
	strategy := ModelBasedStrategy{}
	if _, err := strategy.Select(ir.ChatRequest{Parameters: &ir.Parameters{Model: "unmapped"}}, []*backendEntry{a}); err == nil {
		t.Fatal("expected no-match error with an empty routing table")
	}
}

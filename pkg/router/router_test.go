package router

import (
	"context"
	"errors"
	"testing"

	"github.com/digitallysavvy/go-ai-mediator/pkg/adapter"
	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

type fakeBackend struct {
	name   string
	caps   adapter.Capabilities
	execFn func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error)
}

func (f *fakeBackend) Name() string                      { return f.name }
func (f *fakeBackend) Capabilities() adapter.Capabilities { return f.caps }

func (f *fakeBackend) Execute(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
	return f.execFn(ctx, req)
}

func (f *fakeBackend) ExecuteStream(ctx context.Context, req ir.ChatRequest) (ir.ChatStream, error) {
	return ir.NewSliceStream([]ir.StreamChunk{{Type: ir.ChunkDone}}), nil
}

func okBackend(name string) *fakeBackend {
	return &fakeBackend{name: name, execFn: func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		return ir.ChatResponse{FinishReason: ir.FinishStop}, nil
	}}
}

func failingBackend(name string) *fakeBackend {
	return &fakeBackend{name: name, execFn: func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		return ir.ChatResponse{}, errors.New(name + " is down")
	}}
}

func mustRegister(t *testing.T, r *Router, name string, cfg BackendConfig) {
	t.Helper()
	if err := r.Register(name, cfg); err != nil {
		t.Fatalf("Register(%q): %v", name, err)
	}
}

func TestRouterSequentialFallback(t *testing.T) {
	r := New(Config{Fallback: FallbackSequential})
	mustRegister(t, r, "primary", BackendConfig{Backend: failingBackend("primary")})
	mustRegister(t, r, "secondary", BackendConfig{Backend: okBackend("secondary")})

	resp, err := r.Execute(context.Background(), ir.ChatRequest{Parameters: &ir.Parameters{Model: "gpt-4o"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.Metadata.Provenance.Backend != "secondary" {
		t.Fatalf("served by %q, want secondary", resp.Metadata.Provenance.Backend)
	}
	if got := r.Stats().TotalFallbacks; got != 1 {
		t.Fatalf("TotalFallbacks = %d, want 1", got)
	}
}

func TestRouterSequentialFallbackEmitsFailoverEvent(t *testing.T) {
	r := New(Config{Fallback: FallbackSequential})
	mustRegister(t, r, "primary", BackendConfig{Backend: failingBackend("primary")})
	mustRegister(t, r, "secondary", BackendConfig{Backend: okBackend("secondary")})

	var got FailoverEvent
	r.On(EventBackendFailover, func(e FailoverEvent) { got = e })

	if _, err := r.Execute(context.Background(), ir.ChatRequest{Parameters: &ir.Parameters{Model: "gpt-4o"}}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Previous != "primary" || got.Current != "secondary" {
		t.Fatalf("FailoverEvent = %+v, want {Previous: primary, Current: secondary}", got)
	}
}

func TestRouterAllBackendsFail(t *testing.T) {
	r := New(Config{Fallback: FallbackSequential})
	mustRegister(t, r, "a", BackendConfig{Backend: failingBackend("a")})
	mustRegister(t, r, "b", BackendConfig{Backend: failingBackend("b")})

	_, err := r.Execute(context.Background(), ir.ChatRequest{Parameters: &ir.Parameters{Model: "gpt-4o"}})
	if err == nil {
		t.Fatal("expected error when every backend fails")
	}
}

func TestRouterCircuitBreakerTripsAndRecovers(t *testing.T) {
	r := New(Config{Fallback: FallbackNone})
	backend := failingBackend("flaky")
	mustRegister(t, r, "flaky", BackendConfig{
		Backend:        backend,
		CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 2, OpenDuration: 0},
	})

	req := ir.ChatRequest{Parameters: &ir.Parameters{Model: "gpt-4o"}}
	r.Execute(context.Background(), req)
	r.Execute(context.Background(), req)

	entry := r.backends["flaky"]
	if entry.breaker.State() != CircuitOpen {
		t.Fatalf("breaker state = %v, want open after 2 failures", entry.breaker.State())
	}

	backend.execFn = func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		return ir.ChatResponse{}, nil
	}
	resp, err := r.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("half-open trial should succeed: %v", err)
	}
	_ = resp
	if entry.breaker.State() != CircuitClosed {
		t.Fatalf("breaker state = %v, want closed after a single half-open success", entry.breaker.State())
	}
}

func TestRouterExplicitBackendSelection(t *testing.T) {
	r := New(Config{Strategy: ModelBasedStrategy{}})
	mustRegister(t, r, "a", BackendConfig{Backend: okBackend("a")})
	mustRegister(t, r, "b", BackendConfig{Backend: okBackend("b")})

	req := ir.ChatRequest{
		Parameters: &ir.Parameters{Model: "gpt-4o"},
		Metadata:   ir.Metadata{Custom: map[string]any{"backend": "b"}},
	}
	resp, err := r.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.Metadata.Provenance.Backend != "b" {
		t.Fatalf("served by %q, want b (explicit selection)", resp.Metadata.Provenance.Backend)
	}
}

func TestRouterModelTranslation(t *testing.T) {
	var gotModel string
	backend := &fakeBackend{name: "openai", execFn: func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		gotModel = req.Parameters.Model
		return ir.ChatResponse{}, nil
	}}
	r := New(Config{
		Translation: ModelTranslation{Global: map[string]string{"fast": "gpt-4o-mini"}},
	})
	mustRegister(t, r, "openai", BackendConfig{Backend: backend})

	r.Execute(context.Background(), ir.ChatRequest{Parameters: &ir.Parameters{Model: "fast"}})
	if gotModel != "gpt-4o-mini" {
		t.Fatalf("translated model = %q, want gpt-4o-mini", gotModel)
	}
}

func TestRouterModelTranslationStrictModeFails(t *testing.T) {
	backend := okBackend("openai")
	r := New(Config{
		Fallback:    FallbackNone,
		Translation: ModelTranslation{StrictMode: true},
	})
	mustRegister(t, r, "openai", BackendConfig{Backend: backend})

	_, err := r.Execute(context.Background(), ir.ChatRequest{Parameters: &ir.Parameters{Model: "unmapped-model"}})
	if err == nil {
		t.Fatal("expected strict-mode translation failure")
	}
}

func TestRouterNoHealthyBackends(t *testing.T) {
	r := New(Config{})
	_, err := r.Execute(context.Background(), ir.ChatRequest{Parameters: &ir.Parameters{Model: "gpt-4o"}})
	if err == nil {
		t.Fatal("expected error with zero registered backends")
	}
}

func TestRouterRegisterDuplicateNameFails(t *testing.T) {
	r := New(Config{})
	mustRegister(t, r, "a", BackendConfig{Backend: okBackend("a")})
	if err := r.Register("a", BackendConfig{Backend: okBackend("a")}); !errors.Is(err, ErrBackendExists) {
		t.Fatalf("Register duplicate = %v, want ErrBackendExists", err)
	}
}

func TestRouterUnregister(t *testing.T) {
	r := New(Config{})
	mustRegister(t, r, "a", BackendConfig{Backend: okBackend("a")})
	mustRegister(t, r, "b", BackendConfig{Backend: okBackend("b")})

	if err := r.Unregister("a"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	backends := r.ListBackends()
	if len(backends) != 1 || backends[0] != "b" {
		t.Fatalf("ListBackends() after Unregister = %v, want [b]", backends)
	}
}

func TestRouterUnregisterLastBackendFails(t *testing.T) {
	r := New(Config{})
	mustRegister(t, r, "a", BackendConfig{Backend: okBackend("a")})

	if err := r.Unregister("a"); !errors.Is(err, ErrCannotUnregister) {
		t.Fatalf("Unregister last backend = %v, want ErrCannotUnregister", err)
	}
}

func TestRouterUnregisterDefaultBackendFails(t *testing.T) {
	r := New(Config{DefaultBackend: "a"})
	mustRegister(t, r, "a", BackendConfig{Backend: okBackend("a")})
	mustRegister(t, r, "b", BackendConfig{Backend: okBackend("b")})

	if err := r.Unregister("a"); !errors.Is(err, ErrCannotUnregister) {
		t.Fatalf("Unregister default backend = %v, want ErrCannotUnregister", err)
	}
}

type costBackend struct {
	*fakeBackend
	perRequest float64
}

func (b *costBackend) EstimateCost(usage ir.Usage) float64 { return b.perRequest }

func TestRouterTracksEstimatedCost(t *testing.T) {
	backend := &costBackend{fakeBackend: &fakeBackend{name: "priced", execFn: func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		usage := ir.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
		return ir.ChatResponse{FinishReason: ir.FinishStop, Usage: &usage}, nil
	}}, perRequest: 0.03}
	r := New(Config{})
	mustRegister(t, r, "priced", BackendConfig{Backend: backend})

	if _, err := r.Execute(context.Background(), ir.ChatRequest{Parameters: &ir.Parameters{Model: "gpt-4o"}}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	stats := r.Stats()
	if len(stats.Backends) != 1 || stats.Backends[0].TotalCost != 0.03 {
		t.Fatalf("Stats().Backends = %+v, want TotalCost 0.03", stats.Backends)
	}
}

func TestRouterCapabilitiesUnion(t *testing.T) {
	a := &fakeBackend{name: "a", caps: adapter.Capabilities{SupportsTools: true}}
	b := &fakeBackend{name: "b", caps: adapter.Capabilities{SupportsImageInput: true}}
	r := New(Config{})
	mustRegister(t, r, "a", BackendConfig{Backend: a})
	mustRegister(t, r, "b", BackendConfig{Backend: b})

	caps := r.Capabilities()
	if !caps.SupportsTools || !caps.SupportsImageInput {
		t.Fatalf("Capabilities() = %+v, want both tools and image input supported", caps)
	}
}

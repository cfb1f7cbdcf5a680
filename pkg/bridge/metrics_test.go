package bridge

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

func TestPrometheusCollectorReportsSnapshot(t *testing.T) {
	backend := &stubBackend{execFn: func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		return ir.ChatResponse{}, nil
	}}
	b := New(identityFrontend{}, backend, Config{})
	_, _ = b.Chat(context.Background(), ir.ChatRequest{Parameters: &ir.Parameters{Model: "x"}})

	collector := NewPrometheusCollector(b.Stats(), "mediator")
	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		t.Fatalf("Register: %v", err)
	}

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(metrics) == 0 {
		t.Fatal("expected at least one metric family")
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "mediator_bridge_requests_total" {
			found = true
			if mf.GetMetric()[0].GetCounter().GetValue() != 1 {
				t.Fatalf("requests_total = %v, want 1", mf.GetMetric()[0].GetCounter().GetValue())
			}
		}
	}
	if !found {
		t.Fatal("mediator_bridge_requests_total not found in gathered metrics")
	}
}

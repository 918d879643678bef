package bestfirst_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/pdrpinto/bestfirst"
)

func TestObserver_EventSequence(t *testing.T) {
	graph := adjacency{"a": {{ID: "b", Cost: 2}}}
	var kinds []bestfirst.EventKind
	var last bestfirst.Event
	observer := func(event bestfirst.Event) {
		kinds = append(kinds, event.Kind)
		last = event
	}
	if _, err := bestfirst.Search(context.Background(), graph, "a", "b", nil, bestfirst.WithObserver(observer)); err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []bestfirst.EventKind{
		bestfirst.EventDiscover, bestfirst.EventExpand, bestfirst.EventDiscover,
		bestfirst.EventExpand, bestfirst.EventGoal,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got events %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
	if last.Element != "b" || last.Parent != "a" || last.GScore != 2 || last.Iteration != 2 {
		t.Errorf("unexpected goal event %+v", last)
	}
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	graph := adjacency{"a": {{ID: "b", Cost: 1}}}
	if _, err := bestfirst.Search(context.Background(), graph, "a", "b", nil,
		bestfirst.WithObserver(bestfirst.LogObserver(logger)), bestfirst.WithLogger(logger)); err != nil {
		t.Fatalf("search: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"kind=expand", "kind=goal", "search finished", "outcome=found"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := bestfirst.NewMetrics(registry)
	graph := adjacency{"a": {{ID: "b", Cost: 1}}, "c": {{ID: "d", Cost: -1}}}

	_, _ = bestfirst.Search(context.Background(), graph, "a", "b", nil, bestfirst.WithMetrics(metrics))
	_, _ = bestfirst.Search(context.Background(), graph, "b", "a", nil, bestfirst.WithMetrics(metrics))
	_, _ = bestfirst.Search(context.Background(), graph, "c", "d", nil, bestfirst.WithMetrics(metrics))
	_, _ = bestfirst.Range(context.Background(), graph, "a", 5, bestfirst.WithMetrics(metrics))

	expected := `
# HELP bestfirst_runs_total Total search runs by kind and outcome
# TYPE bestfirst_runs_total counter
bestfirst_runs_total{kind="path",outcome="error"} 1
bestfirst_runs_total{kind="path",outcome="found"} 1
bestfirst_runs_total{kind="path",outcome="not_found"} 1
bestfirst_runs_total{kind="range",outcome="complete"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "bestfirst_runs_total"); err != nil {
		t.Error(err)
	}
	count, err := testutil.GatherAndCount(registry, "bestfirst_expanded_nodes")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 2 {
		t.Errorf("expected histograms for 2 kinds, got %d", count)
	}
}

func TestMetrics_Stepper(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := bestfirst.NewMetrics(registry)
	graph := adjacency{"a": {{ID: "b", Cost: 1}}}

	finished := bestfirst.NewStepper(context.Background(), graph, "a", "b", nil, bestfirst.WithMetrics(metrics))
	for i := 0; i < 5; i++ {
		if _, err := finished.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	finished.Close()

	abandoned := bestfirst.NewStepper(context.Background(), line{}, 0, -1, nil, bestfirst.WithMetrics(metrics))
	if _, err := abandoned.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	abandoned.Close()
	_, _ = abandoned.Step()

	expected := `
# HELP bestfirst_runs_total Total search runs by kind and outcome
# TYPE bestfirst_runs_total counter
bestfirst_runs_total{kind="step",outcome="canceled"} 1
bestfirst_runs_total{kind="step",outcome="found"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "bestfirst_runs_total"); err != nil {
		t.Error(err)
	}
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = provider.Shutdown(context.Background()) }()
	tracer := provider.Tracer("test")

	graph := adjacency{"a": {{ID: "b", Cost: 1}}, "c": {{ID: "d", Cost: -1}}}
	_, _ = bestfirst.Search(context.Background(), graph, "a", "b", nil, bestfirst.WithTracer(tracer))
	_, _ = bestfirst.Search(context.Background(), graph, "c", "d", nil, bestfirst.WithTracer(tracer))

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "bestfirst.path" {
		t.Errorf("span name %q", spans[0].Name())
	}
	outcome := ""
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "search.outcome" {
			outcome = attr.Value.AsString()
		}
	}
	if outcome != "found" || spans[0].Status().Code != codes.Ok {
		t.Errorf("first span: outcome %q status %v", outcome, spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error || len(spans[1].Events()) == 0 {
		t.Errorf("second span should record the invalid cost, status %v", spans[1].Status())
	}
}

package bestfirst

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventKind identifies what happened to a node during a run.
type EventKind uint8

const (
	EventDiscover EventKind = iota // first inserted into the frontier
	EventExpand                    // popped and closed
	EventRelax                     // reached again through a cheaper path
	EventGoal                      // accepted by the goal test
)

func (k EventKind) String() string {
	switch k {
	case EventDiscover:
		return "discover"
	case EventExpand:
		return "expand"
	case EventRelax:
		return "relax"
	case EventGoal:
		return "goal"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is a trace record. Parent is nil for the start node.
type Event struct {
	Kind      EventKind
	Element   any
	Parent    any
	GScore    float64
	FCost     float64
	Iteration int
}

// Observer receives events synchronously on the searching goroutine. It
// must not call back into the run that produced the event.
type Observer func(Event)

// LogObserver writes every event to logger at debug level.
func LogObserver(logger *slog.Logger) Observer {
	return func(event Event) {
		logger.Debug("search event",
			slog.String("kind", event.Kind.String()),
			slog.Any("element", event.Element),
			slog.Any("parent", event.Parent),
			slog.Float64("g", event.GScore),
			slog.Float64("f", event.FCost),
			slog.Int("iteration", event.Iteration),
		)
	}
}

const (
	kindPath  = "path"
	kindRange = "range"
	kindSolve = "solve"
	kindStep  = "step"
)

const (
	outcomeFound     = "found"
	outcomeNotFound  = "not_found"
	outcomeComplete  = "complete"
	outcomeTruncated = "truncated"
	outcomeCanceled  = "canceled"
	outcomeError     = "error"
)

// runTelemetry ties one run to its span, metrics and final log record.
type runTelemetry struct {
	kind    string
	options Options
	started time.Time
	span    trace.Span
}

func startTelemetry(ctx context.Context, kind string, options Options) (context.Context, *runTelemetry) {
	ctx, span := options.Tracer.Start(ctx, "bestfirst."+kind,
		trace.WithAttributes(attribute.String("search.kind", kind)),
	)
	return ctx, &runTelemetry{
		kind:    kind,
		options: options,
		started: time.Now(),
		span:    span,
	}
}

func (t *runTelemetry) finish(outcome string, expanded int, cost float64, err error) {
	defer t.span.End()
	elapsed := time.Since(t.started)

	t.span.SetAttributes(
		attribute.String("search.outcome", outcome),
		attribute.Int("search.expanded", expanded),
		attribute.Float64("search.cost", cost),
	)
	if t.options.Metrics != nil {
		t.options.Metrics.observe(t.kind, outcome, expanded, elapsed)
	}

	if err != nil {
		t.span.RecordError(err)
		t.span.SetStatus(codes.Error, outcome)
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			level = slog.LevelDebug
		}
		t.options.Logger.Log(context.Background(), level, "search failed",
			slog.String("kind", t.kind),
			slog.Int("expanded", expanded),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return
	}

	t.span.SetStatus(codes.Ok, outcome)
	t.options.Logger.Debug("search finished",
		slog.String("kind", t.kind),
		slog.String("outcome", outcome),
		slog.Int("expanded", expanded),
		slog.Float64("cost", cost),
		slog.Duration("duration", elapsed),
	)
}

func resultOutcome[NodeType comparable](result Result[NodeType]) string {
	switch {
	case result.Found:
		return outcomeFound
	case result.Truncated:
		return outcomeTruncated
	}
	return outcomeNotFound
}

func errorOutcome(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return outcomeCanceled
	}
	return outcomeError
}

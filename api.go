package bestfirst

import (
	"context"
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Graph is generic over node type N.
// N must be comparable so it can be used in maps.
type Graph[NodeType comparable] interface {
	Neighbors(node NodeType) []Neighbor[NodeType]
}

// Neighbor represents a reachable node with a cost.
type Neighbor[NodeType comparable] struct {
	ID   NodeType
	Cost float64
}

// GraphFunc adapts a plain successor function to Graph.
type GraphFunc[NodeType comparable] func(node NodeType) []Neighbor[NodeType]

func (f GraphFunc[NodeType]) Neighbors(node NodeType) []Neighbor[NodeType] { return f(node) }

// Space builds a Graph from a successor enumeration and a step cost.
// A nil Cost charges 1 per step.
type Space[NodeType comparable] struct {
	Successors func(node NodeType) []NodeType
	Cost       func(from, to NodeType) float64
}

func (space Space[NodeType]) Neighbors(node NodeType) []Neighbor[NodeType] {
	successors := space.Successors(node)
	out := make([]Neighbor[NodeType], 0, len(successors))
	for _, next := range successors {
		cost := 1.0
		if space.Cost != nil {
			cost = space.Cost(node, next)
		}
		out = append(out, Neighbor[NodeType]{ID: next, Cost: cost})
	}
	return out
}

// Filter returns a Graph that drops neighbors rejected by admit, e.g.
// untraversable cells.
func Filter[NodeType comparable](graph Graph[NodeType], admit func(NodeType) bool) Graph[NodeType] {
	return GraphFunc[NodeType](func(node NodeType) []Neighbor[NodeType] {
		neighbors := graph.Neighbors(node)
		kept := neighbors[:0:0]
		for _, neighbor := range neighbors {
			if admit(neighbor.ID) {
				kept = append(kept, neighbor)
			}
		}
		return kept
	})
}

// Heuristic returns the estimated cost from node a to node b
type Heuristic[NodeType comparable] func(from NodeType, to NodeType) float64

// Problem is the general form accepted by Solve. Only Graph is required:
// without IsGoal the run explores every reachable node, without Estimate
// it degrades to Dijkstra.
type Problem[NodeType comparable] struct {
	Graph    Graph[NodeType]
	Start    NodeType
	IsGoal   func(NodeType) bool
	Estimate func(NodeType) float64
	Admit    func(NodeType) bool
}

// Result contains the outcome of a search
type Result[NodeType comparable] struct {
	Path          []NodeType
	TotalCost     float64
	ExpandedNodes int
	Found         bool
	// Truncated is set when the run hit MaxExpansions before finishing.
	Truncated bool
}

// Options defines parameters for the search.
type Options struct {
	NumberOfWorkers int
	// ExcludeParent skips a neighbor equal to the expanding node's parent.
	ExcludeParent bool
	// MaxExpansions bounds the number of popped nodes; 0 means unbounded.
	MaxExpansions int
	// Kind labels Solve runs in spans, metrics and logs; empty means "solve".
	Kind string

	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  *Metrics
	Observer Observer
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many worker goroutines SearchAll uses.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithExcludeParent controls whether a node's parent is skipped when its
// neighbors are relaxed. Defaults to true.
func WithExcludeParent(exclude bool) Option {
	return func(options *Options) { options.ExcludeParent = exclude }
}

// WithMaxExpansions stops a run after limit expansions and marks the result
// truncated. Zero disables the limit.
func WithMaxExpansions(limit int) Option {
	return func(options *Options) { options.MaxExpansions = limit }
}

// WithLogger sets the logger that receives one record per finished run.
func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(options *Options) { options.Tracer = tracer }
}

// WithMetrics records every finished run on metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(options *Options) { options.Metrics = metrics }
}

// WithKind labels Solve runs, e.g. "plan", so they can be told apart from
// other Solve callers. Search, Range and Stepper runs keep their own kind.
func WithKind(kind string) Option {
	return func(options *Options) { options.Kind = kind }
}

// WithObserver installs a per-iteration event sink.
func WithObserver(observer Observer) Option {
	return func(options *Options) { options.Observer = observer }
}

const instrumentationName = "github.com/pdrpinto/bestfirst"

func buildOptions(options []Option) Options {
	searchOptions := Options{
		NumberOfWorkers: runtime.NumCPU(),
		ExcludeParent:   true,
	}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.Logger == nil {
		searchOptions.Logger = slog.New(slog.DiscardHandler)
	}
	if searchOptions.Tracer == nil {
		searchOptions.Tracer = otel.Tracer(instrumentationName)
	}
	if searchOptions.NumberOfWorkers < 1 {
		searchOptions.NumberOfWorkers = 1
	}
	return searchOptions
}

// Search runs A* from startNode to goalNode. A nil heuristic gives
// Dijkstra. An unreachable goal is reported through Result.Found, not as an
// error; errors mean an invalid cost or a cancelled context.
//
// The returned path is optimal when the heuristic never overestimates.
func Search[NodeType comparable](
	contextObject context.Context,
	graph Graph[NodeType],
	startNode NodeType,
	goalNode NodeType,
	heuristic Heuristic[NodeType],
	options ...Option,
) (Result[NodeType], error) {
	return NewSearcher[NodeType](options...).Search(contextObject, graph, startNode, goalNode, heuristic)
}

// Solve runs the expansion engine on an arbitrary Problem.
func Solve[NodeType comparable](
	contextObject context.Context,
	problem Problem[NodeType],
	options ...Option,
) (Result[NodeType], error) {
	return NewSearcher[NodeType](options...).Solve(contextObject, problem)
}

// Range returns every node reachable from startNode with a cumulative cost
// of at most budget.
func Range[NodeType comparable](
	contextObject context.Context,
	graph Graph[NodeType],
	startNode NodeType,
	budget float64,
	options ...Option,
) (Coverage[NodeType], error) {
	return NewSearcher[NodeType](options...).Range(contextObject, graph, startNode, budget)
}

package bestfirst

import (
	"context"
	"fmt"
	"math"

	"github.com/pdrpinto/bestfirst/internal"
)

// Searcher keeps node and frontier storage between runs so repeated
// searches do not reallocate. Every run starts from a cleared arena.
// A Searcher is not safe for concurrent use; give each goroutine its own.
type Searcher[NodeType comparable] struct {
	options Options
	nodes   *internal.Arena[NodeType]
	open    *frontier[NodeType]
}

// NewSearcher builds a Searcher whose runs all use options.
func NewSearcher[NodeType comparable](options ...Option) *Searcher[NodeType] {
	nodes := internal.NewArena[NodeType](64)
	return &Searcher[NodeType]{
		options: buildOptions(options),
		nodes:   nodes,
		open:    newFrontier(nodes),
	}
}

// Search finds a path from startNode to goalNode. See the package level Search.
func (s *Searcher[NodeType]) Search(
	ctx context.Context,
	graph Graph[NodeType],
	startNode NodeType,
	goalNode NodeType,
	heuristic Heuristic[NodeType],
) (Result[NodeType], error) {
	spec := runSpec[NodeType]{
		graph:  graph,
		start:  startNode,
		isGoal: func(node NodeType) bool { return node == goalNode },
		budget: math.Inf(1),
	}
	if heuristic != nil {
		spec.estimate = func(node NodeType) float64 { return heuristic(node, goalNode) }
	}
	return s.solve(ctx, kindPath, spec)
}

// Solve runs the engine on problem.
func (s *Searcher[NodeType]) Solve(ctx context.Context, problem Problem[NodeType]) (Result[NodeType], error) {
	kind := kindSolve
	if s.options.Kind != "" {
		kind = s.options.Kind
	}
	return s.solve(ctx, kind, runSpec[NodeType]{
		graph:    problem.Graph,
		start:    problem.Start,
		isGoal:   problem.IsGoal,
		estimate: problem.Estimate,
		admit:    problem.Admit,
		budget:   math.Inf(1),
	})
}

func (s *Searcher[NodeType]) solve(ctx context.Context, kind string, spec runSpec[NodeType]) (Result[NodeType], error) {
	ctx, telemetry := startTelemetry(ctx, kind, s.options)

	run := newExpansion(spec, s.options, s.nodes, s.open)
	if err := run.run(ctx); err != nil {
		telemetry.finish(errorOutcome(err), run.expanded, 0, err)
		return Result[NodeType]{ExpandedNodes: run.expanded}, err
	}

	result := run.result()
	telemetry.finish(resultOutcome(result), result.ExpandedNodes, result.TotalCost, nil)
	return result, nil
}

// Range runs a budget-bounded Dijkstra from startNode and returns every
// node it could afford.
func (s *Searcher[NodeType]) Range(
	ctx context.Context,
	graph Graph[NodeType],
	startNode NodeType,
	budget float64,
) (Coverage[NodeType], error) {
	ctx, telemetry := startTelemetry(ctx, kindRange, s.options)

	if budget < 0 || math.IsNaN(budget) {
		err := fmt.Errorf("%w: budget %v", ErrInvalidCost, budget)
		telemetry.finish(outcomeError, 0, 0, err)
		return Coverage[NodeType]{}, err
	}

	run := newExpansion(runSpec[NodeType]{
		graph:  graph,
		start:  startNode,
		budget: budget,
	}, s.options, s.nodes, s.open)
	if err := run.run(ctx); err != nil {
		telemetry.finish(errorOutcome(err), run.expanded, 0, err)
		return Coverage[NodeType]{}, err
	}

	coverage := Coverage[NodeType]{
		nodes: s.nodes.Compact(func(node *internal.Node[NodeType]) bool {
			return node.Status == internal.Closed
		}),
		truncated: run.truncated,
	}

	outcome := outcomeComplete
	if run.truncated {
		outcome = outcomeTruncated
	}
	telemetry.finish(outcome, run.expanded, budget, nil)
	return coverage, nil
}

// Reach is a node's cumulative cost together with the path that achieves it.
type Reach[NodeType comparable] struct {
	Cost float64
	Path []NodeType
}

// Coverage is the result of a Range search. It owns a compacted copy of
// the closed nodes and shares nothing with the Searcher that produced it.
type Coverage[NodeType comparable] struct {
	nodes     *internal.Arena[NodeType]
	truncated bool
}

// Len reports how many nodes are within budget.
func (c Coverage[NodeType]) Len() int {
	if c.nodes == nil {
		return 0
	}
	return c.nodes.Len()
}

// Truncated reports whether MaxExpansions cut the run short, in which case
// the coverage may be incomplete.
func (c Coverage[NodeType]) Truncated() bool { return c.truncated }

// Cost returns the cheapest cumulative cost to node and whether it is in range.
func (c Coverage[NodeType]) Cost(node NodeType) (float64, bool) {
	if c.nodes == nil {
		return 0, false
	}
	id, ok := c.nodes.Lookup(node)
	if !ok {
		return 0, false
	}
	return c.nodes.Node(id).GScore, true
}

// Costs returns a fresh node to cost table.
func (c Coverage[NodeType]) Costs() map[NodeType]float64 {
	out := make(map[NodeType]float64, c.Len())
	c.each(func(id internal.NodeID, node *internal.Node[NodeType]) {
		out[node.Element] = node.GScore
	})
	return out
}

// Path returns the cheapest path from the start to node, or nil when node
// is out of range.
func (c Coverage[NodeType]) Path(node NodeType) []NodeType {
	if c.nodes == nil {
		return nil
	}
	id, ok := c.nodes.Lookup(node)
	if !ok {
		return nil
	}
	return c.nodes.ReconstructPath(id)
}

// Paths pairs every node in range with its cost and path.
func (c Coverage[NodeType]) Paths() map[NodeType]Reach[NodeType] {
	out := make(map[NodeType]Reach[NodeType], c.Len())
	c.each(func(id internal.NodeID, node *internal.Node[NodeType]) {
		out[node.Element] = Reach[NodeType]{Cost: node.GScore, Path: c.nodes.ReconstructPath(id)}
	})
	return out
}

func (c Coverage[NodeType]) each(visit func(id internal.NodeID, node *internal.Node[NodeType])) {
	if c.nodes != nil {
		c.nodes.Each(visit)
	}
}

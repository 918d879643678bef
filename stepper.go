package bestfirst

import (
	"context"
	"math"

	"github.com/pdrpinto/bestfirst/internal"
)

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot[NodeType comparable] struct {
	Current   NodeType
	Open      map[NodeType]bool
	Closed    map[NodeType]bool
	CameFrom  map[NodeType]NodeType
	Done      bool
	Found     bool
	Path      []NodeType
	StepIndex int
}

// Stepper drives the same expansion loop as Search one node at a time,
// for visualisers and debugging.
type Stepper[NodeType comparable] struct {
	ctx       context.Context
	cancel    context.CancelFunc
	run       *expansion[NodeType]
	nodes     *internal.Arena[NodeType]
	telemetry *runTelemetry
	finished  bool
}

// NewStepper prepares a path search from startNode to goalNode without
// expanding anything yet. The run is reported under kind "step" once it
// finishes, fails or is closed.
func NewStepper[NodeType comparable](
	parent context.Context,
	graph Graph[NodeType],
	startNode NodeType,
	goalNode NodeType,
	heuristic Heuristic[NodeType],
	options ...Option,
) *Stepper[NodeType] {
	opts := buildOptions(options)

	spec := runSpec[NodeType]{
		graph:  graph,
		start:  startNode,
		isGoal: func(node NodeType) bool { return node == goalNode },
		budget: math.Inf(1),
	}
	if heuristic != nil {
		spec.estimate = func(node NodeType) float64 { return heuristic(node, goalNode) }
	}

	ctx, telemetry := startTelemetry(parent, kindStep, opts)
	ctx, cancel := context.WithCancel(ctx)
	nodes := internal.NewArena[NodeType](64)
	return &Stepper[NodeType]{
		ctx:       ctx,
		cancel:    cancel,
		run:       newExpansion(spec, opts, nodes, newFrontier(nodes)),
		nodes:     nodes,
		telemetry: telemetry,
	}
}

// Close cancels the stepper; further steps return the context error.
func (s *Stepper[NodeType]) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.finish(outcomeCanceled, context.Canceled)
}

func (s *Stepper[NodeType]) finish(outcome string, err error) {
	if s.finished || s.telemetry == nil {
		return
	}
	s.finished = true
	result := s.run.result()
	s.telemetry.finish(outcome, result.ExpandedNodes, result.TotalCost, err)
}

// Step advances the search by one node expansion and returns a snapshot.
// Once the search is done further calls return the final snapshot again.
func (s *Stepper[NodeType]) Step() (StepSnapshot[NodeType], error) {
	if err := s.run.step(s.ctx); err != nil {
		s.run.done = true
		s.finish(errorOutcome(err), err)
		return StepSnapshot[NodeType]{Done: true, StepIndex: s.run.expanded}, err
	}
	if s.run.done {
		s.finish(resultOutcome(s.run.result()), nil)
	}
	return s.snapshot(), nil
}

func (s *Stepper[NodeType]) snapshot() StepSnapshot[NodeType] {
	snap := StepSnapshot[NodeType]{
		Open:      make(map[NodeType]bool),
		Closed:    make(map[NodeType]bool),
		CameFrom:  make(map[NodeType]NodeType, s.nodes.Len()),
		Done:      s.run.done,
		Found:     s.run.found(),
		StepIndex: s.run.expanded,
	}
	if s.run.current != internal.NoParent {
		snap.Current = s.nodes.Node(s.run.current).Element
	}
	s.nodes.Each(func(_ internal.NodeID, node *internal.Node[NodeType]) {
		switch node.Status {
		case internal.Open:
			snap.Open[node.Element] = true
		case internal.Closed:
			snap.Closed[node.Element] = true
		}
		if node.Parent != internal.NoParent {
			snap.CameFrom[node.Element] = s.nodes.Node(node.Parent).Element
		}
	})
	if snap.Found {
		snap.Path = s.nodes.ReconstructPath(s.run.goal)
	}
	return snap
}

// Result returns the outcome so far; it is final once a snapshot reports Done.
func (s *Stepper[NodeType]) Result() Result[NodeType] {
	return s.run.result()
}

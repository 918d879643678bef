package bestfirst

import (
	"context"
	"fmt"
	"math"

	"github.com/pdrpinto/bestfirst/internal"
)

type runSpec[NodeType comparable] struct {
	graph    Graph[NodeType]
	start    NodeType
	isGoal   func(NodeType) bool
	estimate func(NodeType) float64
	admit    func(NodeType) bool
	budget   float64
}

// expansion is the shared best-first loop. Path, range and plan searches
// only differ in the runSpec they hand it.
type expansion[NodeType comparable] struct {
	spec    runSpec[NodeType]
	options Options
	nodes   *internal.Arena[NodeType]
	open    *frontier[NodeType]

	expanded  int
	current   internal.NodeID
	goal      internal.NodeID
	done      bool
	truncated bool
}

func newExpansion[NodeType comparable](
	spec runSpec[NodeType],
	options Options,
	nodes *internal.Arena[NodeType],
	open *frontier[NodeType],
) *expansion[NodeType] {
	nodes.Reset()
	open.reset()
	e := &expansion[NodeType]{
		spec:    spec,
		options: options,
		nodes:   nodes,
		open:    open,
		current: internal.NoParent,
		goal:    internal.NoParent,
	}
	startID := nodes.Add(spec.start, internal.NoParent, 0, e.estimate(spec.start))
	e.mustInsert(startID)
	e.emit(EventDiscover, startID)
	return e
}

func (e *expansion[NodeType]) estimate(node NodeType) float64 {
	if e.spec.estimate == nil {
		return 0
	}
	return e.spec.estimate(node)
}

func (e *expansion[NodeType]) mustInsert(id internal.NodeID) {
	node := e.nodes.Node(id)
	if err := e.open.Insert(id, node.FCost); err != nil {
		panic(err)
	}
}

func (e *expansion[NodeType]) run(ctx context.Context) error {
	for !e.done {
		if err := e.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// step performs one outer iteration: pop, goal test, relax neighbors.
func (e *expansion[NodeType]) step(ctx context.Context) error {
	if e.done {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.open.IsEmpty() {
		e.done = true
		return nil
	}
	if e.options.MaxExpansions > 0 && e.expanded >= e.options.MaxExpansions {
		e.done = true
		e.truncated = true
		return nil
	}

	currentID, err := e.open.Pop()
	if err != nil {
		panic(err)
	}
	e.expanded++
	e.current = currentID
	current := *e.nodes.Node(currentID)
	e.emit(EventExpand, currentID)

	if e.spec.isGoal != nil && e.spec.isGoal(current.Element) {
		e.goal = currentID
		e.done = true
		e.emit(EventGoal, currentID)
		return nil
	}

	var parent NodeType
	hasParent := current.Parent != internal.NoParent
	if hasParent {
		parent = e.nodes.Node(current.Parent).Element
	}

	for _, neighbor := range e.spec.graph.Neighbors(current.Element) {
		if e.options.ExcludeParent && hasParent && neighbor.ID == parent {
			continue
		}
		if neighbor.Cost < 0 || math.IsNaN(neighbor.Cost) {
			e.done = true
			return fmt.Errorf("%w: step %v -> %v costs %v", ErrInvalidCost, current.Element, neighbor.ID, neighbor.Cost)
		}
		gScore := current.GScore + neighbor.Cost
		if gScore > e.spec.budget {
			continue
		}
		if e.spec.admit != nil && !e.spec.admit(neighbor.ID) {
			continue
		}

		childID, seen := e.nodes.Lookup(neighbor.ID)
		if !seen {
			childID = e.nodes.Add(neighbor.ID, currentID, gScore, gScore+e.estimate(neighbor.ID))
			e.mustInsert(childID)
			e.emit(EventDiscover, childID)
			continue
		}

		child := e.nodes.Node(childID)
		if child.Status == internal.Closed || gScore >= child.GScore {
			continue
		}
		// keep the cached heuristic, only the g part changes
		child.FCost = gScore + (child.FCost - child.GScore)
		child.GScore = gScore
		child.Parent = currentID
		e.mustInsert(childID)
		e.emit(EventRelax, childID)
	}
	return nil
}

func (e *expansion[NodeType]) found() bool { return e.goal != internal.NoParent }

func (e *expansion[NodeType]) result() Result[NodeType] {
	result := Result[NodeType]{
		ExpandedNodes: e.expanded,
		Truncated:     e.truncated,
	}
	if !e.found() {
		return result
	}
	result.Found = true
	result.Path = e.nodes.ReconstructPath(e.goal)
	result.TotalCost = e.nodes.Node(e.goal).GScore
	return result
}

func (e *expansion[NodeType]) emit(kind EventKind, id internal.NodeID) {
	if e.options.Observer == nil {
		return
	}
	node := e.nodes.Node(id)
	event := Event{
		Kind:      kind,
		Element:   node.Element,
		GScore:    node.GScore,
		FCost:     node.FCost,
		Iteration: e.expanded,
	}
	if node.Parent != internal.NoParent {
		event.Parent = e.nodes.Node(node.Parent).Element
	}
	e.options.Observer(event)
}

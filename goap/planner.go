// Package goap plans action sequences by regressing from a goal state over
// the bestfirst expansion engine.
package goap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdrpinto/bestfirst"
)

// HeuristicPolicy selects the estimate used to order the backward search.
type HeuristicPolicy uint8

const (
	// HeuristicActionCost scores a node by the cost of the action that
	// produced it. It prefers cheap immediate actions but is not
	// admissible, so plans are not guaranteed cheapest.
	HeuristicActionCost HeuristicPolicy = iota
	// HeuristicNone orders by accumulated cost only and returns the
	// cheapest plan.
	HeuristicNone
)

// ParseHeuristic maps a config name ("action-cost", "none" or empty) to a
// policy.
func ParseHeuristic(name string) (HeuristicPolicy, error) {
	switch name {
	case "", "action-cost":
		return HeuristicActionCost, nil
	case "none":
		return HeuristicNone, nil
	default:
		return 0, fmt.Errorf("unknown planner heuristic %q", name)
	}
}

// Plan is an ordered action sequence, first action first. Found is false
// when no plan exists; the caller should fall back to idle behaviour.
type Plan struct {
	Actions  []Action
	Cost     float64
	Found    bool
	Expanded int
}

// Names lists the action names in execution order.
func (p Plan) Names() []string {
	names := make([]string, len(p.Actions))
	for i, action := range p.Actions {
		names[i] = action.Name
	}
	return names
}

// Validate simulates the plan forward from current and checks that each
// action's preconditions hold when it runs and that goal holds at the end.
func (p Plan) Validate(current, goal WorldState) error {
	state := current.Clone().normalize()
	goal = goal.Clone().normalize()
	for i, action := range p.Actions {
		if !state.Satisfies(action.Preconditions) {
			return fmt.Errorf("step %d %q: preconditions %v not met in %v", i, action.Name, action.Preconditions, state)
		}
		state = state.Apply(action.Effects)
	}
	if !state.Satisfies(goal) {
		return fmt.Errorf("goal %v not met in final state %v", goal, state)
	}
	return nil
}

// Planner holds an immutable action set.
type Planner struct {
	actions   []Action
	heuristic HeuristicPolicy
	logger    *slog.Logger
	search    []bestfirst.Option
}

// Option configures a Planner.
type Option func(*Planner)

// WithHeuristic selects the search estimate. Defaults to HeuristicActionCost.
func WithHeuristic(policy HeuristicPolicy) Option {
	return func(p *Planner) { p.heuristic = policy }
}

// WithLogger sets the logger for plan records and the underlying runs.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// WithSearchOptions forwards options to the underlying engine.
func WithSearchOptions(options ...bestfirst.Option) Option {
	return func(p *Planner) { p.search = append(p.search, options...) }
}

// NewPlanner validates actions and copies them. A negative cost is
// reported as bestfirst.ErrInvalidCost.
func NewPlanner(actions []Action, options ...Option) (*Planner, error) {
	p := &Planner{
		actions: make([]Action, len(actions)),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(p)
	}
	seen := make(map[string]bool, len(actions))
	for i, action := range actions {
		if err := action.validate(); err != nil {
			return nil, err
		}
		if seen[action.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidAction, action.Name)
		}
		seen[action.Name] = true
		action.Preconditions = action.Preconditions.Clone().normalize()
		action.Effects = action.Effects.Clone().normalize()
		p.actions[i] = action
	}
	p.search = append([]bestfirst.Option{
		bestfirst.WithLogger(p.logger),
		bestfirst.WithKind("plan"),
	}, p.search...)
	return p, nil
}

// Actions returns a copy of the validated action set.
func (p *Planner) Actions() []Action { return append([]Action(nil), p.actions...) }

// planStep is a search node: the conditions still unmet after scheduling
// action (an index into the planner's actions, -1 for the goal itself).
type planStep struct {
	unmet  string
	action int
}

// regression is the backward graph for one Plan call.
type regression struct {
	actions []Action
	usable  []int
	states  map[string]WorldState
}

func (g *regression) Neighbors(step planStep) []bestfirst.Neighbor[planStep] {
	unmet := g.states[step.unmet]
	var out []bestfirst.Neighbor[planStep]
	for _, index := range g.usable {
		action := &g.actions[index]
		next, ok := regress(unmet, action)
		if !ok {
			continue
		}
		key := next.key()
		if _, known := g.states[key]; !known {
			g.states[key] = next
		}
		out = append(out, bestfirst.Neighbor[planStep]{
			ID:   planStep{unmet: key, action: index},
			Cost: action.Cost,
		})
	}
	return out
}

// Plan searches backward from goal until the remaining conditions are
// satisfied by current. An unreachable goal gives a Plan with Found false
// and a nil error.
func (p *Planner) Plan(ctx context.Context, current, goal WorldState) (Plan, error) {
	if err := goal.validate(); err != nil {
		return Plan{}, fmt.Errorf("goal: %w", err)
	}
	if err := current.validate(); err != nil {
		return Plan{}, fmt.Errorf("current state: %w", err)
	}
	current = current.Clone().normalize()
	goal = goal.Clone().normalize()

	graph := &regression{
		actions: p.actions,
		states:  make(map[string]WorldState),
	}
	for i := range p.actions {
		if usable := p.actions[i].Usable; usable == nil || usable(current) {
			graph.usable = append(graph.usable, i)
		}
	}

	goalKey := goal.key()
	graph.states[goalKey] = goal

	problem := bestfirst.Problem[planStep]{
		Graph: graph,
		Start: planStep{unmet: goalKey, action: -1},
		IsGoal: func(step planStep) bool {
			unmet := graph.states[step.unmet]
			return len(unmet) == 0 || current.Satisfies(unmet)
		},
	}
	if p.heuristic == HeuristicActionCost {
		problem.Estimate = func(step planStep) float64 {
			if step.action < 0 {
				return 0
			}
			return p.actions[step.action].Cost
		}
	}

	result, err := bestfirst.Solve(ctx, problem, p.search...)
	if err != nil {
		return Plan{Expanded: result.ExpandedNodes}, fmt.Errorf("plan for %v: %w", goal, err)
	}

	plan := Plan{Found: result.Found, Expanded: result.ExpandedNodes}
	if !result.Found {
		p.logger.Debug("no plan found",
			slog.String("goal", goal.String()),
			slog.Int("expanded", result.ExpandedNodes),
		)
		return plan, nil
	}

	// The path runs goal first; walking it backwards yields execution order.
	for i := len(result.Path) - 1; i >= 0; i-- {
		if index := result.Path[i].action; index >= 0 {
			plan.Actions = append(plan.Actions, p.actions[index])
		}
	}
	plan.Cost = result.TotalCost
	p.logger.Debug("plan found",
		slog.String("goal", goal.String()),
		slog.Any("actions", plan.Names()),
		slog.Float64("cost", plan.Cost),
		slog.Int("expanded", result.ExpandedNodes),
	)
	return plan, nil
}

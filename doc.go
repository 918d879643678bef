// Package bestfirst provides a generic best-first graph search engine.
//
// One expansion loop (open list ordered by f = g + h, FIFO among equal
// costs, lazy relaxation) backs every entry point:
//
//   - Search: A* from a start node to a target node; nil heuristic gives Dijkstra.
//   - Solve: the same loop with a caller goal predicate, used by the goap planner.
//   - Range: budget-bounded Dijkstra returning every affordable node with its cost and path.
//   - Stepper: iterate a search one expansion at a time to drive UIs or debugging tools.
//   - SearchAll: many independent searches on a worker pool.
//
// Graphs are supplied through the Graph interface, or built from a successor
// function and a cost function with Space. Each run owns its node arena and
// frontier, so runs never share mutable state. Failing to reach a target is
// reported in the result, not as an error.
package bestfirst

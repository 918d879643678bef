package bestfirst_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/pdrpinto/bestfirst"
)

// adjacency is a literal weighted digraph.
type adjacency map[string][]bestfirst.Neighbor[string]

func (a adjacency) Neighbors(node string) []bestfirst.Neighbor[string] { return a[node] }

type cell struct{ x, y int }

// openGrid is a w×h 4-connected grid without walls, neighbors in E,S,W,N order.
type openGrid struct{ w, h int }

func (g openGrid) Neighbors(c cell) []bestfirst.Neighbor[cell] {
	var out []bestfirst.Neighbor[cell]
	for _, d := range []cell{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
		n := cell{c.x + d.x, c.y + d.y}
		if n.x >= 0 && n.x < g.w && n.y >= 0 && n.y < g.h {
			out = append(out, bestfirst.Neighbor[cell]{ID: n, Cost: 1})
		}
	}
	return out
}

func manhattan(a, b cell) float64 {
	return math.Abs(float64(a.x-b.x)) + math.Abs(float64(a.y-b.y))
}

func TestSearch_FindsPath(t *testing.T) {
	graph := adjacency{
		"a": {{ID: "b", Cost: 1}, {ID: "c", Cost: 4}},
		"b": {{ID: "c", Cost: 1}, {ID: "d", Cost: 5}},
		"c": {{ID: "d", Cost: 1}},
	}
	result, err := bestfirst.Search(context.Background(), graph, "a", "d", nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !result.Found {
		t.Fatal("expected a path")
	}
	if want := []string{"a", "b", "c", "d"}; !slices.Equal(result.Path, want) {
		t.Errorf("path: got %v, want %v", result.Path, want)
	}
	if result.TotalCost != 3 {
		t.Errorf("cost: got %v, want 3", result.TotalCost)
	}
}

func TestSearch_StartIsGoal(t *testing.T) {
	result, err := bestfirst.Search(context.Background(), adjacency{}, "a", "a", nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !result.Found || !slices.Equal(result.Path, []string{"a"}) || result.TotalCost != 0 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestSearch_NoPathIsNotAnError(t *testing.T) {
	graph := adjacency{
		"a": {{ID: "b", Cost: 1}},
		"b": {{ID: "a", Cost: 1}},
		"x": {{ID: "y", Cost: 1}},
	}
	result, err := bestfirst.Search(context.Background(), graph, "a", "y", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Found || result.Path != nil {
		t.Errorf("expected not found, got %+v", result)
	}
	if result.ExpandedNodes != 2 {
		t.Errorf("expected both reachable nodes expanded, got %d", result.ExpandedNodes)
	}
}

func TestSearch_DeterministicTieBreak(t *testing.T) {
	g := openGrid{w: 3, h: 3}
	want := []cell{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}}
	for i := 0; i < 5; i++ {
		result, err := bestfirst.Search(context.Background(), g, cell{0, 0}, cell{2, 2}, manhattan)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !slices.Equal(result.Path, want) {
			t.Fatalf("run %d: got %v, want %v", i, result.Path, want)
		}
	}
}

func TestSearch_RelaxesCheaperLateDiscovery(t *testing.T) {
	// c is first queued at cost 5 from a, then reached for 2 via b before it is popped.
	graph := adjacency{
		"a": {{ID: "b", Cost: 1}, {ID: "c", Cost: 5}},
		"b": {{ID: "c", Cost: 1}},
		"c": {{ID: "d", Cost: 1}},
	}
	var relaxed []any
	observer := func(event bestfirst.Event) {
		if event.Kind == bestfirst.EventRelax {
			relaxed = append(relaxed, event.Element)
		}
	}
	result, err := bestfirst.Search(context.Background(), graph, "a", "d", nil, bestfirst.WithObserver(observer))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.TotalCost != 3 {
		t.Errorf("cost: got %v, want 3", result.TotalCost)
	}
	if want := []string{"a", "b", "c", "d"}; !slices.Equal(result.Path, want) {
		t.Errorf("path: got %v, want %v", result.Path, want)
	}
	if len(relaxed) != 1 || relaxed[0] != "c" {
		t.Errorf("expected exactly one relax of c, got %v", relaxed)
	}

	coverage, err := bestfirst.Range(context.Background(), graph, "a", 10)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if cost, _ := coverage.Cost("c"); cost != 2 {
		t.Errorf("range cost of c: got %v, want 2", cost)
	}
}

func TestSearch_NegativeCostFailsFast(t *testing.T) {
	graph := adjacency{
		"a": {{ID: "b", Cost: -1}},
	}
	_, err := bestfirst.Search(context.Background(), graph, "a", "b", nil)
	if !errors.Is(err, bestfirst.ErrInvalidCost) {
		t.Fatalf("expected ErrInvalidCost, got %v", err)
	}

	_, err = bestfirst.Search(context.Background(), adjacency{"a": {{ID: "b", Cost: math.NaN()}}}, "a", "b", nil)
	if !errors.Is(err, bestfirst.ErrInvalidCost) {
		t.Fatalf("expected ErrInvalidCost for NaN, got %v", err)
	}
}

// line is an infinite graph 0 → 1 → 2 → ...
type line struct{}

func (line) Neighbors(n int) []bestfirst.Neighbor[int] {
	return []bestfirst.Neighbor[int]{{ID: n + 1, Cost: 1}}
}

func TestSearch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	observer := func(event bestfirst.Event) {
		if event.Kind == bestfirst.EventExpand && event.Iteration >= 100 {
			cancel()
		}
	}
	result, err := bestfirst.Search(ctx, line{}, 0, -1, nil, bestfirst.WithObserver(observer))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.ExpandedNodes != 100 {
		t.Errorf("expected the run to stop after 100 expansions, got %d", result.ExpandedNodes)
	}
}

func TestSearch_MaxExpansionsTruncates(t *testing.T) {
	result, err := bestfirst.Search(context.Background(), line{}, 0, -1, nil, bestfirst.WithMaxExpansions(50))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Found || !result.Truncated || result.ExpandedNodes != 50 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestSearch_ExcludeParentDoesNotChangeAnswer(t *testing.T) {
	g := openGrid{w: 6, h: 4}
	for _, exclude := range []bool{true, false} {
		result, err := bestfirst.Search(context.Background(), g, cell{0, 3}, cell{5, 0}, manhattan,
			bestfirst.WithExcludeParent(exclude))
		if err != nil {
			t.Fatalf("exclude=%v: %v", exclude, err)
		}
		if result.TotalCost != 8 || len(result.Path) != 9 {
			t.Errorf("exclude=%v: got cost %v, %d cells", exclude, result.TotalCost, len(result.Path))
		}
	}
}

func TestSpaceAndFilter(t *testing.T) {
	space := bestfirst.Space[int]{
		Successors: func(n int) []int { return []int{n + 1, n + 2} },
		Cost: func(from, to int) float64 {
			return float64(to-from) * float64(to-from)
		},
	}
	// steps of 1 cost 1, steps of 2 cost 4, so walking one at a time wins
	result, err := bestfirst.Search(context.Background(), space, 0, 4, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.TotalCost != 4 || !slices.Equal(result.Path, []int{0, 1, 2, 3, 4}) {
		t.Errorf("unexpected result %+v", result)
	}

	// odd numbers are impassable
	even := bestfirst.Filter[int](space, func(n int) bool { return n%2 == 0 })
	result, err = bestfirst.Search(context.Background(), even, 0, 4, nil)
	if err != nil {
		t.Fatalf("filtered search: %v", err)
	}
	if result.TotalCost != 8 || !slices.Equal(result.Path, []int{0, 2, 4}) {
		t.Errorf("unexpected filtered result %+v", result)
	}
}

func TestSolve_GoalPredicateAndAdmit(t *testing.T) {
	result, err := bestfirst.Solve(context.Background(), bestfirst.Problem[int]{
		Graph:  line{},
		Start:  3,
		IsGoal: func(n int) bool { return n%5 == 0 },
	})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !result.Found || !slices.Equal(result.Path, []int{3, 4, 5}) {
		t.Errorf("unexpected result %+v", result)
	}

	result, err = bestfirst.Solve(context.Background(), bestfirst.Problem[int]{
		Graph:  line{},
		Start:  0,
		IsGoal: func(n int) bool { return n == 10 },
		Admit:  func(n int) bool { return n < 5 },
	})
	if err != nil {
		t.Fatalf("solve with admit: %v", err)
	}
	if result.Found || result.ExpandedNodes != 5 {
		t.Errorf("admit should wall off the goal, got %+v", result)
	}
}

// randomGraph builds a digraph on n nodes with non-negative integer costs.
func randomGraph(r *rand.Rand, n int, density float64) (bestfirst.GraphFunc[int], [][]float64) {
	inf := math.Inf(1)
	dist := make([][]float64, n)
	edges := make([][]bestfirst.Neighbor[int], n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = inf
		}
		dist[i][i] = 0
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && r.Float64() < density {
				cost := float64(r.Intn(10))
				edges[i] = append(edges[i], bestfirst.Neighbor[int]{ID: j, Cost: cost})
				dist[i][j] = cost
			}
		}
	}
	// Floyd-Warshall
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if d := dist[i][k] + dist[k][j]; d < dist[i][j] {
					dist[i][j] = d
				}
			}
		}
	}
	graph := bestfirst.GraphFunc[int](func(node int) []bestfirst.Neighbor[int] { return edges[node] })
	return graph, dist
}

func pathCost(t *testing.T, graph bestfirst.Graph[int], path []int) float64 {
	t.Helper()
	total := 0.0
	for i := 1; i < len(path); i++ {
		best := math.Inf(1)
		for _, nb := range graph.Neighbors(path[i-1]) {
			if nb.ID == path[i] && nb.Cost < best {
				best = nb.Cost
			}
		}
		if math.IsInf(best, 1) {
			t.Fatalf("path %v uses missing edge %d -> %d", path, path[i-1], path[i])
		}
		total += best
	}
	return total
}

func TestSearch_OptimalAgainstBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	const n = 9
	for trial := 0; trial < 20; trial++ {
		graph, dist := randomGraph(r, n, 0.3)
		for goal := 0; goal < n; goal++ {
			// half the true distance never overestimates
			heuristic := func(from, to int) float64 {
				if math.IsInf(dist[from][to], 1) {
					return 0
				}
				return dist[from][to] / 2
			}
			for start := 0; start < n; start++ {
				for name, h := range map[string]bestfirst.Heuristic[int]{"dijkstra": nil, "astar": heuristic} {
					result, err := bestfirst.Search(context.Background(), graph, start, goal, h)
					if err != nil {
						t.Fatalf("trial %d %s %d->%d: %v", trial, name, start, goal, err)
					}
					want := dist[start][goal]
					if math.IsInf(want, 1) {
						if result.Found {
							t.Fatalf("trial %d %s %d->%d: found path %v on unreachable pair", trial, name, start, goal, result.Path)
						}
						continue
					}
					if !result.Found {
						t.Fatalf("trial %d %s %d->%d: missed path of cost %v", trial, name, start, goal, want)
					}
					if result.TotalCost != want {
						t.Fatalf("trial %d %s %d->%d: cost %v, want %v", trial, name, start, goal, result.TotalCost, want)
					}
					if got := pathCost(t, graph, result.Path); got != want {
						t.Fatalf("trial %d %s %d->%d: path %v sums to %v, want %v", trial, name, start, goal, result.Path, got, want)
					}
				}
			}
		}
	}
}

// Package grid is a 2D occupancy grid usable as a bestfirst.Graph.
package grid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pdrpinto/bestfirst"
)

// Point is a cell coordinate.
type Point struct {
	X, Y int
}

func (p Point) String() string { return fmt.Sprintf("%d,%d", p.X, p.Y) }

// ParsePoint reads the "x,y" form produced by String.
func ParsePoint(s string) (Point, error) {
	var p Point
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d,%d", &p.X, &p.Y); err != nil {
		return Point{}, fmt.Errorf("parse point %q: %w", s, err)
	}
	return p, nil
}

// Direction vectors, cardinals first so 4-connected expansion is a prefix
// of the 8-connected order: E, S, W, N, SE, SW, NW, NE.
var dirVectors = [8]Point{
	{1, 0}, {0, 1}, {-1, 0}, {0, -1},
	{1, 1}, {-1, 1}, {-1, -1}, {1, -1},
}

const (
	costCardinal = 1.0
	costDiagonal = math.Sqrt2
)

// Grid is a rectangular map of walkable and blocked cells.
type Grid struct {
	Width, Height int
	// Diagonal enables 8-connected movement. Diagonal steps that would
	// cut the corner of a wall are never offered.
	Diagonal bool

	walls []bool
}

// New returns a width×height grid with no walls.
func New(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		walls:  make([]bool, width*height),
	}
}

// In reports whether p lies inside the grid.
func (g *Grid) In(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// SetWall marks p blocked or walkable. Points outside the grid are ignored.
func (g *Grid) SetWall(p Point, blocked bool) {
	if g.In(p) {
		g.walls[p.Y*g.Width+p.X] = blocked
	}
}

// Blocked is true for walls and for any point outside the grid.
func (g *Grid) Blocked(p Point) bool {
	return !g.In(p) || g.walls[p.Y*g.Width+p.X]
}

// Walls lists blocked cells in row-major order.
func (g *Grid) Walls() []Point {
	var out []Point
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.walls[y*g.Width+x] {
				out = append(out, Point{x, y})
			}
		}
	}
	return out
}

// Neighbors implements bestfirst.Graph.
func (g *Grid) Neighbors(p Point) []bestfirst.Neighbor[Point] {
	count := 4
	if g.Diagonal {
		count = 8
	}
	out := make([]bestfirst.Neighbor[Point], 0, count)
	for d := 0; d < count; d++ {
		v := dirVectors[d]
		next := Point{p.X + v.X, p.Y + v.Y}
		if g.Blocked(next) {
			continue
		}
		cost := costCardinal
		if v.X != 0 && v.Y != 0 {
			if g.Blocked(Point{p.X + v.X, p.Y}) || g.Blocked(Point{p.X, p.Y + v.Y}) {
				continue
			}
			cost = costDiagonal
		}
		out = append(out, bestfirst.Neighbor[Point]{ID: next, Cost: cost})
	}
	return out
}

// Manhattan is admissible for 4-connected grids.
func Manhattan(a, b Point) float64 {
	return float64(abs(a.X-b.X) + abs(a.Y-b.Y))
}

// Octile is admissible for 8-connected grids with √2 diagonals.
func Octile(a, b Point) float64 {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	return float64(max(dx, dy)) + (math.Sqrt2-1)*float64(min(dx, dy))
}

// Heuristic picks the admissible estimate matching the grid connectivity.
func (g *Grid) Heuristic() bestfirst.Heuristic[Point] {
	if g.Diagonal {
		return Octile
	}
	return Manhattan
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Map is a parsed ASCII map.
type Map struct {
	Grid  *Grid
	Start Point
	Goal  Point
	// HasStart and HasGoal report whether the markers were present.
	HasStart, HasGoal bool
}

var ErrEmptyMap = errors.New("empty map")

// Parse reads an ASCII map: '#' is a wall, 'S' the start, 'G' the goal and
// any other rune walkable floor. Short rows are padded with floor.
func Parse(r io.Reader) (*Map, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyMap
	}

	width := 0
	for _, row := range rows {
		width = max(width, len([]rune(row)))
	}
	m := &Map{Grid: New(width, len(rows))}
	for y, row := range rows {
		for x, cell := range []rune(row) {
			p := Point{x, y}
			switch cell {
			case '#':
				m.Grid.SetWall(p, true)
			case 'S':
				if m.HasStart {
					return nil, fmt.Errorf("map has more than one start (second at %v)", p)
				}
				m.Start, m.HasStart = p, true
			case 'G':
				if m.HasGoal {
					return nil, fmt.Errorf("map has more than one goal (second at %v)", p)
				}
				m.Goal, m.HasGoal = p, true
			}
		}
	}
	return m, nil
}

// Render draws the grid back to ASCII with path cells marked '*'.
func (m *Map) Render(path []Point) string {
	onPath := make(map[Point]bool, len(path))
	for _, p := range path {
		onPath[p] = true
	}
	var b strings.Builder
	for y := 0; y < m.Grid.Height; y++ {
		for x := 0; x < m.Grid.Width; x++ {
			p := Point{x, y}
			switch {
			case m.HasStart && p == m.Start:
				b.WriteByte('S')
			case m.HasGoal && p == m.Goal:
				b.WriteByte('G')
			case m.Grid.Blocked(p):
				b.WriteByte('#')
			case onPath[p]:
				b.WriteByte('*')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

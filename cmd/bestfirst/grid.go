package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/bestfirst"
	"github.com/pdrpinto/bestfirst/grid"
	"github.com/pdrpinto/bestfirst/internal/config"
)

func loadMap(path string, diagonal bool) (*grid.Map, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := grid.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Grid.Diagonal = diagonal
	return m, nil
}

// pointFlag resolves a --from/--to value, falling back to a map marker.
func pointFlag(value string, marker grid.Point, hasMarker bool, name string) (grid.Point, error) {
	if value != "" {
		return grid.ParsePoint(value)
	}
	if !hasMarker {
		return grid.Point{}, fmt.Errorf("--%s not given and map has no marker for it", name)
	}
	return marker, nil
}

// PathCmd prints the shortest path between two cells of an ASCII map.
func PathCmd(loadConfig func() (config.Config, error)) *cobra.Command {
	var mapFile, from, to string
	c := &cobra.Command{
		Use:   "path",
		Short: "shortest path on an ASCII grid map",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := cfg.Logger(cmd.ErrOrStderr())
			m, err := loadMap(mapFile, cfg.Search.Diagonal)
			if err != nil {
				return err
			}
			start, err := pointFlag(from, m.Start, m.HasStart, "from")
			if err != nil {
				return err
			}
			goal, err := pointFlag(to, m.Goal, m.HasGoal, "to")
			if err != nil {
				return err
			}

			result, err := bestfirst.Search(context.Background(), m.Grid, start, goal,
				m.Grid.Heuristic(), cfg.SearchOptions(logger)...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !result.Found {
				fmt.Fprintf(out, "no path from %v to %v (%d expanded)\n", start, goal, result.ExpandedNodes)
				return nil
			}
			fmt.Fprint(out, m.Render(result.Path))
			fmt.Fprintf(out, "cost %.3f, %d steps, %d expanded\n", result.TotalCost, len(result.Path)-1, result.ExpandedNodes)
			return nil
		},
	}
	c.Flags().StringVar(&mapFile, "map", "", "ASCII map file")
	c.Flags().StringVar(&from, "from", "", "start cell x,y (default: S marker)")
	c.Flags().StringVar(&to, "to", "", "goal cell x,y (default: G marker)")
	_ = c.MarkFlagRequired("map")
	return c
}

// RangeCmd lists every cell reachable from a start within --budget.
func RangeCmd(loadConfig func() (config.Config, error)) *cobra.Command {
	var mapFile, from string
	var budget float64
	c := &cobra.Command{
		Use:   "range",
		Short: "every cell reachable within a cost budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := cfg.Logger(cmd.ErrOrStderr())
			m, err := loadMap(mapFile, cfg.Search.Diagonal)
			if err != nil {
				return err
			}
			start, err := pointFlag(from, m.Start, m.HasStart, "from")
			if err != nil {
				return err
			}
			if m.Grid.Blocked(start) {
				return errors.New("start cell is blocked")
			}

			coverage, err := bestfirst.Range(context.Background(), m.Grid, start, budget, cfg.SearchOptions(logger)...)
			if err != nil {
				return err
			}
			costs := coverage.Costs()
			cells := make([]grid.Point, 0, len(costs))
			for p := range costs {
				cells = append(cells, p)
			}
			sort.Slice(cells, func(i, j int) bool {
				if costs[cells[i]] != costs[cells[j]] {
					return costs[cells[i]] < costs[cells[j]]
				}
				if cells[i].Y != cells[j].Y {
					return cells[i].Y < cells[j].Y
				}
				return cells[i].X < cells[j].X
			})

			out := cmd.OutOrStdout()
			fmt.Fprint(out, m.Render(cells))
			for _, p := range cells {
				fmt.Fprintf(out, "%v\t%.3f\n", p, costs[p])
			}
			fmt.Fprintf(out, "%d cells within %.3f\n", len(cells), budget)
			return nil
		},
	}
	c.Flags().StringVar(&mapFile, "map", "", "ASCII map file")
	c.Flags().StringVar(&from, "from", "", "start cell x,y (default: S marker)")
	c.Flags().Float64Var(&budget, "budget", 5, "maximum cumulative cost")
	_ = c.MarkFlagRequired("map")
	return c
}

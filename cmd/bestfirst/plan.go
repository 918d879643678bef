package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/bestfirst/goap"
	"github.com/pdrpinto/bestfirst/internal/config"
)

// parseState reads key=value pairs. Values parse as bool, then number,
// then fall back to string; a bare key means true.
func parseState(pairs []string) (goap.WorldState, error) {
	state := make(goap.WorldState, len(pairs))
	for _, pair := range pairs {
		key, raw, hasValue := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("bad condition %q", pair)
		}
		if !hasValue {
			state[key] = true
			continue
		}
		raw = strings.TrimSpace(raw)
		if b, err := strconv.ParseBool(raw); err == nil {
			state[key] = b
		} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
			state[key] = f
		} else {
			state[key] = raw
		}
	}
	return state, nil
}

// PlanCmd plans an action sequence from --state to --goal over an action
// set file.
func PlanCmd(loadConfig func() (config.Config, error)) *cobra.Command {
	var actionsFile string
	var goalPairs, statePairs []string
	c := &cobra.Command{
		Use:   "plan",
		Short: "goal-oriented action plan from an action set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := cfg.Logger(cmd.ErrOrStderr())

			actions, err := goap.LoadActionsFile(actionsFile)
			if err != nil {
				return err
			}
			goal, err := parseState(goalPairs)
			if err != nil {
				return err
			}
			current, err := parseState(statePairs)
			if err != nil {
				return err
			}
			planner, err := goap.NewPlanner(actions, cfg.PlannerOptions(logger)...)
			if err != nil {
				return err
			}

			plan, err := planner.Plan(context.Background(), current, goal)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !plan.Found {
				fmt.Fprintf(out, "no plan reaches %v (%d expanded)\n", goal, plan.Expanded)
				return nil
			}
			for i, action := range plan.Actions {
				fmt.Fprintf(out, "%d. %s (cost %g)\n", i+1, action.Name, action.Cost)
			}
			fmt.Fprintf(out, "total cost %g, %d expanded\n", plan.Cost, plan.Expanded)
			return nil
		},
	}
	c.Flags().StringVar(&actionsFile, "actions", "", "action set file (.yaml, .yml, .hjson, .json)")
	c.Flags().StringSliceVar(&goalPairs, "goal", nil, "goal conditions key=value")
	c.Flags().StringSliceVar(&statePairs, "state", nil, "current world state key=value")
	_ = c.MarkFlagRequired("actions")
	_ = c.MarkFlagRequired("goal")
	return c
}

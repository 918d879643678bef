package goap

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/bestfirst"
)

var ErrInvalidAction = errors.New("invalid action")

// Action is one step the planner may schedule.
type Action struct {
	Name          string     `yaml:"name" json:"name"`
	Preconditions WorldState `yaml:"preconditions" json:"preconditions"`
	Effects       WorldState `yaml:"effects" json:"effects"`
	Cost          float64    `yaml:"cost" json:"cost"`

	// Usable is an optional procedural precondition evaluated against the
	// current world state before planning; false removes the action from
	// this plan.
	Usable func(current WorldState) bool `yaml:"-" json:"-"`
}

func (a *Action) validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAction)
	}
	if a.Cost < 0 || math.IsNaN(a.Cost) {
		return fmt.Errorf("action %q: %w: %v", a.Name, bestfirst.ErrInvalidCost, a.Cost)
	}
	if len(a.Effects) == 0 {
		return fmt.Errorf("%w: %q has no effects", ErrInvalidAction, a.Name)
	}
	if err := a.Preconditions.validate(); err != nil {
		return fmt.Errorf("%w: %q preconditions: %v", ErrInvalidAction, a.Name, err)
	}
	if err := a.Effects.validate(); err != nil {
		return fmt.Errorf("%w: %q effects: %v", ErrInvalidAction, a.Name, err)
	}
	return nil
}

// ActionSet is the on-disk layout read by LoadActions.
type ActionSet struct {
	Actions []Action `yaml:"actions" json:"actions"`
}

// LoadActions decodes an action set. format is "yaml" or "hjson" (HJSON
// also accepts plain JSON).
func LoadActions(r io.Reader, format string) ([]Action, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read actions: %w", err)
	}

	var set ActionSet
	switch format {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &set)
	case "hjson", "json":
		err = hjson.Unmarshal(data, &set)
	default:
		return nil, fmt.Errorf("unknown action set format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s actions: %w", format, err)
	}
	return set.Actions, nil
}

// LoadActionsFile picks the format from the file extension.
func LoadActionsFile(path string) ([]Action, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	actions, err := LoadActions(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return actions, nil
}

// Package config loads the YAML settings shared by the CLI and the demo
// server.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/bestfirst"
	"github.com/pdrpinto/bestfirst/goap"
)

type Config struct {
	Log     Log     `yaml:"log"`
	Search  Search  `yaml:"search"`
	Planner Planner `yaml:"planner"`
	Viz     Viz     `yaml:"viz"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

type Search struct {
	ExcludeParent bool `yaml:"exclude_parent"`
	MaxExpansions int  `yaml:"max_expansions"`
	Workers       int  `yaml:"workers"`
	// Diagonal enables 8-connected movement on grid maps.
	Diagonal bool `yaml:"diagonal"`
}

type Planner struct {
	Heuristic string `yaml:"heuristic"` // action-cost or none
}

type Viz struct {
	Listen string `yaml:"listen"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:     Log{Level: "info", Format: "text"},
		Search:  Search{ExcludeParent: true},
		Planner: Planner{Heuristic: "action-cost"},
		Viz:     Viz{Listen: ":8080"},
	}
}

// Load reads path over the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	defer file.Close()
	if err := cfg.decode(file); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return c.Validate()
}

// Validate checks every enumerated setting and rejects negative
// limits.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Search.MaxExpansions < 0 {
		return fmt.Errorf("search.max_expansions must not be negative, got %d", c.Search.MaxExpansions)
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must not be negative, got %d", c.Search.Workers)
	}
	if _, err := goap.ParseHeuristic(c.Planner.Heuristic); err != nil {
		return err
	}
	return nil
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return l, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}

// Logger builds the slog logger described by the Log section.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SearchOptions translates the Search section into engine options.
func (c Config) SearchOptions(logger *slog.Logger) []bestfirst.Option {
	options := []bestfirst.Option{
		bestfirst.WithLogger(logger),
		bestfirst.WithExcludeParent(c.Search.ExcludeParent),
		bestfirst.WithMaxExpansions(c.Search.MaxExpansions),
	}
	if c.Search.Workers > 0 {
		options = append(options, bestfirst.WithWorkers(c.Search.Workers))
	}
	return options
}

// PlannerOptions translates the Planner section, forwarding search options.
func (c Config) PlannerOptions(logger *slog.Logger) []goap.Option {
	policy, _ := goap.ParseHeuristic(c.Planner.Heuristic)
	return []goap.Option{
		goap.WithLogger(logger),
		goap.WithHeuristic(policy),
		goap.WithSearchOptions(c.SearchOptions(logger)...),
	}
}

// Package config loads the run configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/world"
)

// Config is the complete run configuration.
type Config struct {
	Seed                     int64         `yaml:"seed"` // 0 = time-based
	Size                     int           `yaml:"size"`
	StartingPopPerSettlement int           `yaml:"starting_population_per_settlement"`
	Jobs                     []Ratio       `yaml:"jobs"`
	Tiles                    []Ratio       `yaml:"tiles"`
	Terrain                  string        `yaml:"terrain"` // uniform | clustered
	StepInterval             time.Duration `yaml:"step_interval"`
	LogLevel                 string        `yaml:"log_level"`
	API                      APIConfig     `yaml:"api"`
	History                  HistoryConfig `yaml:"history"`

	// From the environment only.
	AdminKey     string `yaml:"-"`
	RandomOrgKey string `yaml:"-"`
}

// Ratio is one named integer weight of a probability table.
type Ratio struct {
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
}

// APIConfig controls the observation API in served mode.
type APIConfig struct {
	Port int `yaml:"port"`
}

// HistoryConfig controls the statistics history database.
type HistoryConfig struct {
	Path string `yaml:"path"` // Empty disables history
}

const (
	TerrainUniform   = "uniform"
	TerrainClustered = "clustered"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Size:                     8,
		StartingPopPerSettlement: 5,
		Jobs: []Ratio{
			{Name: "builder", Weight: 1},
			{Name: "processor", Weight: 1},
			{Name: "harvester", Weight: 2},
		},
		Tiles: []Ratio{
			{Name: "settlement", Weight: 1},
			{Name: "resource_site", Weight: 6},
			{Name: "open", Weight: 3},
		},
		Terrain:      TerrainUniform,
		StepInterval: time.Second,
		LogLevel:     "info",
		API:          APIConfig{Port: 8080},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("WORLDSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("WORLDSIM_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("WORLDSIM_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WORLDSIM_SIZE: %w", err)
		}
		c.Size = size
	}
	c.AdminKey = os.Getenv("WORLDSIM_ADMIN_KEY")
	c.RandomOrgKey = os.Getenv("RANDOM_ORG_API_KEY")
	return nil
}

func (c *Config) normalize() {
	c.Terrain = strings.ToLower(strings.TrimSpace(c.Terrain))
	if c.Terrain == "" {
		c.Terrain = TerrainUniform
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
}

// Validate checks ranges and that both ratio lists build valid tables.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("size must be > 0, got %d", c.Size)
	}
	if c.StartingPopPerSettlement < 0 {
		return fmt.Errorf("starting_population_per_settlement must be >= 0, got %d", c.StartingPopPerSettlement)
	}
	if c.Terrain != TerrainUniform && c.Terrain != TerrainClustered {
		return fmt.Errorf("terrain must be %q or %q, got %q", TerrainUniform, TerrainClustered, c.Terrain)
	}
	if c.StepInterval <= 0 {
		return fmt.Errorf("step_interval must be > 0, got %s", c.StepInterval)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	if _, err := c.JobTable(); err != nil {
		return err
	}
	if _, err := c.TileTable(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps log_level onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", c.LogLevel)
}

// JobTable builds the job probability table.
func (c Config) JobTable() (world.Table[agents.Job], error) {
	var ratios []world.Ratio[agents.Job]
	for _, r := range c.Jobs {
		job, err := agents.ParseJob(r.Name)
		if err != nil {
			return world.Table[agents.Job]{}, fmt.Errorf("jobs: %w", err)
		}
		ratios = append(ratios, world.Ratio[agents.Job]{Category: job, Weight: r.Weight})
	}
	if err := checkWeights("jobs", c.Jobs); err != nil {
		return world.Table[agents.Job]{}, err
	}
	return world.BuildTable(ratios), nil
}

// TileTable builds the tile-kind probability table.
func (c Config) TileTable() (world.Table[world.TileKind], error) {
	var ratios []world.Ratio[world.TileKind]
	for _, r := range c.Tiles {
		kind, err := parseTileKind(r.Name)
		if err != nil {
			return world.Table[world.TileKind]{}, fmt.Errorf("tiles: %w", err)
		}
		ratios = append(ratios, world.Ratio[world.TileKind]{Category: kind, Weight: r.Weight})
	}
	if err := checkWeights("tiles", c.Tiles); err != nil {
		return world.Table[world.TileKind]{}, err
	}
	return world.BuildTable(ratios), nil
}

// checkWeights rejects what BuildTable would panic on.
func checkWeights(field string, ratios []Ratio) error {
	if len(ratios) == 0 {
		return fmt.Errorf("%s: at least one entry required", field)
	}
	total := 0
	for _, r := range ratios {
		if r.Weight < 0 {
			return fmt.Errorf("%s: %s has negative weight %d", field, r.Name, r.Weight)
		}
		total += r.Weight
	}
	if total == 0 {
		return fmt.Errorf("%s: weights sum to zero", field)
	}
	return nil
}

func parseTileKind(name string) (world.TileKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "open":
		return world.TileOpen, nil
	case "resource_site", "resourcesite":
		return world.TileResourceSite, nil
	case "settlement":
		return world.TileSettlement, nil
	}
	return 0, fmt.Errorf("unknown tile kind %q", name)
}

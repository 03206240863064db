package engine

import (
	"log/slog"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/entropy"
	"github.com/talgya/mini-economy/internal/world"
)

// GenesisConfig holds everything needed to create a fresh world.
type GenesisConfig struct {
	Size                     int
	StartingPopPerSettlement int
	Jobs                     world.Table[agents.Job]
	Tiles                    world.Table[world.TileKind]
	Clustered                bool
	Seed                     int64
}

// Genesis generates a grid, settles its starting population and returns the
// ready-to-run simulation. All randomness derives from cfg.Seed.
func Genesis(cfg GenesisConfig) *Simulation {
	grid, settlements := world.Generate(world.GenConfig{
		Size:      cfg.Size,
		Tiles:     cfg.Tiles,
		Clustered: cfg.Clustered,
		Seed:      cfg.Seed,
	}, entropy.NewSeeded(cfg.Seed))

	spawner := agents.NewSpawner(cfg.Jobs, entropy.NewSeeded(cfg.Seed+300))

	var population []*agents.Agent
	for _, pos := range settlements {
		population = append(population, spawner.SpawnPopulation(cfg.StartingPopPerSettlement, pos, 0)...)
	}

	sim := NewSimulation(grid, population, spawner, entropy.NewSeeded(cfg.Seed+400))

	counts := grid.KindCounts()
	slog.Info("world generated",
		"id", sim.ID,
		"size", cfg.Size,
		"clustered", cfg.Clustered,
		"settlements", counts[world.TileSettlement],
		"resource_sites", counts[world.TileResourceSite],
		"open", counts[world.TileOpen],
		"population", len(population),
	)
	return sim
}

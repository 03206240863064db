// Simulation ties the grid, the population and the growth procedure together
// and advances them one step at a time.
package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/entropy"
	"github.com/talgya/mini-economy/internal/world"
)

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Simulation holds the complete state of one world.
type Simulation struct {
	ID      uuid.UUID
	Grid    *world.Grid
	Agents  []*agents.Agent // Processing order; newborns are appended
	Spawner *agents.Spawner // Birth procedure and job probability table
	Rand    entropy.Source  // Birth-chance rolls
	Steps   uint64          // Completed steps
	Events  []Event         // Recent events, oldest first
	Stats   SimStats
}

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "exhausted", "founded", "birth"
}

// SimStats tracks aggregate world statistics after the latest step.
type SimStats struct {
	Population     int                     `json:"population"`
	JobCounts      [agents.NumJobs]int     `json:"job_counts"`
	Carrying       int                     `json:"carrying"`
	Births         int                     `json:"births"` // During the latest step
	TotalBirths    int                     `json:"total_births"`
	Settlements    int                     `json:"settlements"`
	TileCounts     [world.NumTileKinds]int `json:"tile_counts"`
	RawTotal       int                     `json:"raw_total"`
	ProcessedTotal int                     `json:"processed_total"`
}

// StepSummary describes one completed step.
type StepSummary struct {
	Step        uint64        `json:"step"`
	Population  int           `json:"population"`
	Pairs       int           `json:"pairs"`
	Births      int           `json:"births"`
	Settlements int           `json:"settlements"`
	Duration    time.Duration `json:"duration_ns"`
	Stats       SimStats      `json:"stats"`
}

// NewSimulation creates a Simulation from a generated grid and population.
func NewSimulation(g *world.Grid, ag []*agents.Agent, spawner *agents.Spawner, rnd entropy.Source) *Simulation {
	sim := &Simulation{
		ID:      uuid.New(),
		Grid:    g,
		Agents:  ag,
		Spawner: spawner,
		Rand:    rnd,
	}
	sim.updateStats(0)
	return sim
}

// JobTable returns the world's job probability table.
func (s *Simulation) JobTable() world.Table[agents.Job] {
	return s.Spawner.Jobs()
}

// CurrentTick returns the number of completed steps.
func (s *Simulation) CurrentTick() uint64 {
	return s.Steps
}

// Step runs one tick: every agent acts in population order, then the growth
// procedure runs, then the step counter advances.
func (s *Simulation) Step() StepSummary {
	start := time.Now()
	tick := s.Steps

	for _, a := range s.Agents {
		intent := agents.Decide(a)
		s.Events = append(s.Events, ResolveIntent(s.Grid, a, intent, tick)...)
	}

	pairs, births := s.processGrowth(tick)
	s.updateStats(births)
	s.Steps++

	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}

	elapsed := time.Since(start)
	slog.Debug("simulation step",
		"step", tick,
		"pairs", pairs,
		"settlements", s.Stats.Settlements,
		"newborns", births,
		"population", s.Stats.Population,
		"took", elapsed,
	)

	return StepSummary{
		Step:        tick,
		Population:  s.Stats.Population,
		Pairs:       pairs,
		Births:      births,
		Settlements: s.Stats.Settlements,
		Duration:    elapsed,
		Stats:       s.Stats,
	}
}

func (s *Simulation) updateStats(births int) {
	var st SimStats
	st.Population = len(s.Agents)
	for _, a := range s.Agents {
		st.JobCounts[a.Job]++
		if a.Carrying != nil {
			st.Carrying++
		}
	}
	st.Births = births
	st.TotalBirths = s.Stats.TotalBirths + births
	st.TileCounts = s.Grid.KindCounts()
	st.Settlements = st.TileCounts[world.TileSettlement]
	totals := s.Grid.Totals()
	st.RawTotal = totals[world.ResourceRaw]
	st.ProcessedTotal = totals[world.ResourceProcessed]
	s.Stats = st
}

// Agent spawning: the birth procedure shared by world generation and
// population growth.
package agents

import (
	"github.com/talgya/mini-economy/internal/entropy"
	"github.com/talgya/mini-economy/internal/world"
)

// DefaultJobRatios gives harvesters twice the weight of the other jobs.
func DefaultJobRatios() []world.Ratio[Job] {
	return []world.Ratio[Job]{
		{Category: JobBuilder, Weight: 1},
		{Category: JobProcessor, Weight: 1},
		{Category: JobHarvester, Weight: 2},
	}
}

// Spawner creates agents with jobs drawn from a job probability table.
type Spawner struct {
	jobs   world.Table[Job]
	src    entropy.Source
	nextID AgentID
}

// NewSpawner creates an agent spawner drawing jobs from table with src.
func NewSpawner(table world.Table[Job], src entropy.Source) *Spawner {
	return &Spawner{
		jobs:   table,
		src:    src,
		nextID: 1,
	}
}

// Jobs returns the job probability table.
func (s *Spawner) Jobs() world.Table[Job] {
	return s.jobs
}

// Birth creates one empty-handed agent at pos.
func (s *Spawner) Birth(pos world.Coord, tick uint64) *Agent {
	id := s.nextID
	s.nextID++

	return &Agent{
		ID:       id,
		Job:      s.jobs.Sample(s.src.Float64()),
		Position: pos,
		BornTick: tick,
	}
}

// SpawnPopulation creates a batch of agents at pos.
func (s *Spawner) SpawnPopulation(count int, pos world.Coord, tick uint64) []*Agent {
	agents := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		agents = append(agents, s.Birth(pos, tick))
	}
	return agents
}

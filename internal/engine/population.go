// Population growth: agents sharing a settlement tile pair up and each pair
// has a small chance of producing a newborn every step.
package engine

import (
	"fmt"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/world"
)

const (
	// BirthChance is the winning threshold of a birth roll: a pair produces a
	// newborn when its roll in [0, BirthRollRange) is at most BirthChance.
	BirthChance = 2
	// BirthRollRange is the exclusive upper bound of a birth roll.
	BirthRollRange = 1000
)

// processGrowth runs the settlement census and birth rolls. Newborns join
// the population only after every settlement has been counted and rolled.
// Returns the number of pairs found and the number of births.
func (s *Simulation) processGrowth(tick uint64) (int, int) {
	var settlements []world.Coord
	tiles := s.Grid.Tiles()
	for i := range tiles {
		if tiles[i].Kind == world.TileSettlement {
			settlements = append(settlements, tiles[i].Position())
		}
	}
	if len(settlements) == 0 {
		return 0, 0
	}

	occupancy := make(map[world.Coord]int, len(settlements))
	for _, pos := range settlements {
		occupancy[pos] = 0
	}
	for _, a := range s.Agents {
		if _, ok := occupancy[a.Position]; ok {
			occupancy[a.Position]++
		}
	}

	var newborns []*agents.Agent
	totalPairs := 0
	for _, pos := range settlements {
		pairs := occupancy[pos] / 2
		totalPairs += pairs
		for i := 0; i < pairs; i++ {
			roll := int(s.Rand.Float64() * BirthRollRange)
			if roll <= BirthChance {
				newborns = append(newborns, s.Spawner.Birth(pos, tick))
			}
		}
	}

	for _, child := range newborns {
		s.Events = append(s.Events, Event{
			Tick:        tick,
			Description: fmt.Sprintf("%s #%d born at (%d, %d)", agents.JobName(child.Job), child.ID, child.Position.X, child.Position.Y),
			Category:    "birth",
		})
	}
	s.Agents = append(s.Agents, newborns...)

	return totalPairs, len(newborns)
}

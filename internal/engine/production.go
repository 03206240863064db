// Job effects: resolving an agent's intent against the tile it stands on.
// A gather or deposit that cannot happen where the agent is turns into one
// step toward the nearest tile where it could.
package engine

import (
	"fmt"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/world"
)

// FoundingThreshold is the processed material an open tile must exceed to
// become a settlement.
const FoundingThreshold = 200

// ResolveIntent executes intent for agent a and returns any notable events.
func ResolveIntent(g *world.Grid, a *agents.Agent, intent agents.Intent, tick uint64) []Event {
	switch a.Job {
	case agents.JobHarvester:
		return resolveHarvester(g, a, intent, tick)
	case agents.JobProcessor:
		return resolveProcessor(g, a, intent, tick)
	case agents.JobBuilder:
		return resolveBuilder(g, a, intent, tick)
	}
	panic(fmt.Sprintf("engine: unhandled job %d", a.Job))
}

func resolveHarvester(g *world.Grid, a *agents.Agent, intent agents.Intent, tick uint64) []Event {
	tile := g.At(a.Position)

	switch intent.Kind {
	case agents.ActionGather:
		if tile.Kind == intent.Target && tile.Inventory.Take(world.ResourceRaw) {
			a.Carry(world.ResourceRaw)
			if !tile.Inventory.Has(world.ResourceRaw) {
				tile.Kind = world.TileOpen
				return []Event{{
					Tick:        tick,
					Description: fmt.Sprintf("resource site at (%d, %d) exhausted", a.Position.X, a.Position.Y),
					Category:    "exhausted",
				}}
			}
			return nil
		}
		travel(g, a, func(t *world.Tile) bool {
			return t.Kind != world.TileSettlement && t.Inventory.Has(world.ResourceRaw)
		})
		return nil

	case agents.ActionDeposit:
		deposit(g, a, tile, intent.Target)
		return nil
	}
	return nil
}

func resolveProcessor(g *world.Grid, a *agents.Agent, intent agents.Intent, tick uint64) []Event {
	tile := g.At(a.Position)

	switch intent.Kind {
	case agents.ActionGather:
		if a.IsCarrying(world.ResourceRaw) {
			if tile.Kind == intent.Target {
				// Conversion uses only the carried unit; the tile is untouched.
				a.Carry(world.ResourceProcessed)
				return nil
			}
			travel(g, a, func(t *world.Tile) bool {
				return t.Kind == world.TileSettlement
			})
			return nil
		}
		if tile.Kind == intent.Target && tile.Inventory.Take(world.ResourceRaw) {
			a.Carry(world.ResourceRaw)
			return nil
		}
		travel(g, a, func(t *world.Tile) bool {
			return t.Kind != world.TileResourceSite && t.Inventory.Has(world.ResourceRaw)
		})
		return nil

	case agents.ActionDeposit:
		deposit(g, a, tile, intent.Target)
		return nil
	}
	return nil
}

func resolveBuilder(g *world.Grid, a *agents.Agent, intent agents.Intent, tick uint64) []Event {
	tile := g.At(a.Position)

	switch intent.Kind {
	case agents.ActionGather:
		if tile.Kind == intent.Target && tile.Inventory.Take(world.ResourceProcessed) {
			a.Carry(world.ResourceProcessed)
			return nil
		}
		travel(g, a, func(t *world.Tile) bool {
			return t.Kind != world.TileOpen && t.Inventory.Has(world.ResourceProcessed)
		})
		return nil

	case agents.ActionDeposit:
		if !deposit(g, a, tile, intent.Target) {
			return nil
		}
		if tile.Kind == world.TileOpen && tile.Inventory[world.ResourceProcessed] > FoundingThreshold {
			tile.Kind = world.TileSettlement
			return []Event{{
				Tick:        tick,
				Description: fmt.Sprintf("settlement founded at (%d, %d)", a.Position.X, a.Position.Y),
				Category:    "founded",
			}}
		}
		return nil
	}
	return nil
}

// deposit puts the carried unit on tile if it is of the target kind, and
// otherwise moves the agent toward the nearest tile that is. Reports whether
// the unit was deposited.
func deposit(g *world.Grid, a *agents.Agent, tile *world.Tile, target world.TileKind) bool {
	if tile.Kind != target {
		travel(g, a, func(t *world.Tile) bool {
			return t.Kind == target
		})
		return false
	}
	if a.Carrying != nil {
		tile.Inventory.Add(*a.Carrying)
	}
	a.Drop()
	return true
}

// travel moves the agent one step toward the nearest tile accepted by match.
// With no match anywhere the agent stays put.
func travel(g *world.Grid, a *agents.Agent, match func(*world.Tile) bool) {
	target := g.NearestMatching(a.Position, match)
	a.Position = agents.MoveToward(a.Position, target)
}

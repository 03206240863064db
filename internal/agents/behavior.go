// Agent behavior: every tick an agent picks an intent from its job and what
// it carries, without looking at the tile beneath it. The engine then
// resolves the intent against the grid.
package agents

import (
	"fmt"

	"github.com/talgya/mini-economy/internal/world"
)

// ActionKind enumerates the intents an agent can form.
type ActionKind uint8

const (
	ActionGather  ActionKind = iota // Pick up (or convert) a resource on a tile of Target kind
	ActionDeposit                   // Put the carried resource down on a tile of Target kind
)

// Intent is what an agent means to do this tick.
type Intent struct {
	Kind   ActionKind
	Target world.TileKind
}

// String renders an intent as Gather(Settlement), Deposit(Open), etc.
func (i Intent) String() string {
	verb := "Gather"
	if i.Kind == ActionDeposit {
		verb = "Deposit"
	}
	return fmt.Sprintf("%s(%s)", verb, world.TileName(i.Target))
}

// Decide determines an agent's intent from its job and carried resource.
func Decide(a *Agent) Intent {
	switch a.Job {
	case JobHarvester:
		if a.Carrying != nil {
			return Intent{Kind: ActionDeposit, Target: world.TileSettlement}
		}
		return Intent{Kind: ActionGather, Target: world.TileResourceSite}

	case JobProcessor:
		if a.Carrying == nil {
			return Intent{Kind: ActionGather, Target: world.TileSettlement}
		}
		switch *a.Carrying {
		case world.ResourceRaw:
			// Gathering while holding raw material is the conversion step.
			return Intent{Kind: ActionGather, Target: world.TileSettlement}
		case world.ResourceProcessed:
			return Intent{Kind: ActionDeposit, Target: world.TileSettlement}
		}

	case JobBuilder:
		if a.Carrying != nil {
			return Intent{Kind: ActionDeposit, Target: world.TileOpen}
		}
		return Intent{Kind: ActionGather, Target: world.TileSettlement}
	}

	panic(fmt.Sprintf("agents: no intent for job %d", a.Job))
}

// MoveToward advances one step along each axis from `from` toward `to`.
// Agents close in diagonally first and arrive after max(|dx|, |dy|) steps.
func MoveToward(from, to world.Coord) world.Coord {
	return world.Coord{
		X: from.X + world.Sign(to.X-from.X),
		Y: from.Y + world.Sign(to.Y-from.Y),
	}
}

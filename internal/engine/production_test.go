package engine

import (
	"testing"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/world"
)

// setTile configures one tile of g.
func setTile(g *world.Grid, x, y int, kind world.TileKind, raw, processed int) *world.Tile {
	t := g.TileAt(x, y)
	t.Kind = kind
	t.Inventory[world.ResourceRaw] = raw
	t.Inventory[world.ResourceProcessed] = processed
	return t
}

func act(g *world.Grid, a *agents.Agent) []Event {
	return ResolveIntent(g, a, agents.Decide(a), 0)
}

func TestHarvesterGather(t *testing.T) {
	g := world.NewGrid(2, 1)
	site := setTile(g, 0, 0, world.TileResourceSite, 2, 0)
	a := &agents.Agent{Job: agents.JobHarvester}

	if ev := act(g, a); len(ev) != 0 {
		t.Fatalf("unexpected events %v", ev)
	}
	if !a.IsCarrying(world.ResourceRaw) {
		t.Fatalf("harvester not carrying raw after gather")
	}
	if site.Inventory[world.ResourceRaw] != 1 || site.Kind != world.TileResourceSite {
		t.Errorf("site = %v %v, want ResourceSite with 1 raw", world.TileName(site.Kind), site.Inventory)
	}
}

func TestHarvesterExhaustsSite(t *testing.T) {
	g := world.NewGrid(1, 1)
	site := setTile(g, 0, 0, world.TileResourceSite, 1, 0)
	a := &agents.Agent{Job: agents.JobHarvester}

	ev := act(g, a)
	if len(ev) != 1 || ev[0].Category != "exhausted" {
		t.Fatalf("events = %v, want one exhausted event", ev)
	}
	if site.Kind != world.TileOpen || site.Inventory[world.ResourceRaw] != 0 {
		t.Errorf("site = %v %v, want empty Open tile", world.TileName(site.Kind), site.Inventory)
	}
}

func TestHarvesterDeposit(t *testing.T) {
	g := world.NewGrid(3, 1)
	site := setTile(g, 0, 0, world.TileResourceSite, 5, 0)
	home := setTile(g, 2, 0, world.TileSettlement, 0, 0)

	a := &agents.Agent{Job: agents.JobHarvester}
	act(g, a) // gather

	// Walk to the settlement: (0,0) -> (1,0) -> (2,0).
	for i := 0; i < 2; i++ {
		act(g, a)
	}
	if a.Position != (world.Coord{X: 2, Y: 0}) {
		t.Fatalf("harvester at %v, want (2, 0)", a.Position)
	}
	if home.Inventory[world.ResourceRaw] != 0 {
		t.Fatalf("deposit happened on arrival tick")
	}

	act(g, a)
	if a.Carrying != nil {
		t.Errorf("harvester still carrying after deposit")
	}
	// One unit left the site and one arrived at the settlement.
	if site.Inventory[world.ResourceRaw] != 4 || home.Inventory[world.ResourceRaw] != 1 {
		t.Errorf("site raw = %d, settlement raw = %d, want 4 and 1",
			site.Inventory[world.ResourceRaw], home.Inventory[world.ResourceRaw])
	}
}

func TestProcessorCycle(t *testing.T) {
	g := world.NewGrid(1, 1)
	home := setTile(g, 0, 0, world.TileSettlement, 3, 0)
	a := &agents.Agent{Job: agents.JobProcessor}

	act(g, a)
	if !a.IsCarrying(world.ResourceRaw) || home.Inventory[world.ResourceRaw] != 2 {
		t.Fatalf("after take: carrying=%v inventory=%v", a.Carrying, home.Inventory)
	}

	act(g, a)
	if !a.IsCarrying(world.ResourceProcessed) {
		t.Fatalf("raw not converted")
	}
	if home.Inventory != (world.Inventory{2, 0}) {
		t.Errorf("conversion touched the tile: %v", home.Inventory)
	}

	act(g, a)
	if a.Carrying != nil || home.Inventory != (world.Inventory{2, 1}) {
		t.Errorf("after deposit: carrying=%v inventory=%v, want empty and {2 1}", a.Carrying, home.Inventory)
	}
}

func TestProcessorIgnoresResourceSites(t *testing.T) {
	g := world.NewGrid(3, 1)
	setTile(g, 0, 0, world.TileResourceSite, 9, 0)
	setTile(g, 2, 0, world.TileSettlement, 1, 0)

	a := &agents.Agent{Job: agents.JobProcessor, Position: world.Coord{X: 0, Y: 0}}
	act(g, a)
	if a.Carrying != nil {
		t.Fatalf("processor took raw from a resource site")
	}
	if a.Position != (world.Coord{X: 1, Y: 0}) {
		t.Errorf("processor at %v, want (1, 0) heading for the settlement", a.Position)
	}
}

func TestBuilderFounding(t *testing.T) {
	tests := []struct {
		before      int
		wantKind    world.TileKind
		wantFounded bool
	}{
		{FoundingThreshold - 1, world.TileOpen, false},
		{FoundingThreshold, world.TileSettlement, true},
	}
	for _, tc := range tests {
		g := world.NewGrid(1, 1)
		plot := setTile(g, 0, 0, world.TileOpen, 0, tc.before)
		a := &agents.Agent{Job: agents.JobBuilder}
		a.Carry(world.ResourceProcessed)

		ev := act(g, a)
		if plot.Inventory[world.ResourceProcessed] != tc.before+1 {
			t.Errorf("before=%d: processed = %d, want %d", tc.before, plot.Inventory[world.ResourceProcessed], tc.before+1)
		}
		if plot.Kind != tc.wantKind {
			t.Errorf("before=%d: kind = %s, want %s", tc.before, world.TileName(plot.Kind), world.TileName(tc.wantKind))
		}
		if founded := len(ev) == 1 && ev[0].Category == "founded"; founded != tc.wantFounded {
			t.Errorf("before=%d: events = %v, want founded=%v", tc.before, ev, tc.wantFounded)
		}
	}
}

func TestBuilderCycle(t *testing.T) {
	g := world.NewGrid(2, 1)
	home := setTile(g, 0, 0, world.TileSettlement, 0, 1)
	plot := setTile(g, 1, 0, world.TileOpen, 0, 0)
	a := &agents.Agent{Job: agents.JobBuilder}

	act(g, a) // take processed
	if !a.IsCarrying(world.ResourceProcessed) || home.Inventory[world.ResourceProcessed] != 0 {
		t.Fatalf("after gather: carrying=%v inventory=%v", a.Carrying, home.Inventory)
	}
	act(g, a) // step onto open land
	if a.Position != (world.Coord{X: 1, Y: 0}) {
		t.Fatalf("builder at %v, want (1, 0)", a.Position)
	}
	act(g, a) // deposit
	if a.Carrying != nil || plot.Inventory[world.ResourceProcessed] != 1 {
		t.Errorf("after deposit: carrying=%v plot=%v", a.Carrying, plot.Inventory)
	}
}

func TestTravelWithoutTargetStaysPut(t *testing.T) {
	g := world.NewGrid(4, 4)
	a := &agents.Agent{Job: agents.JobHarvester, Position: world.Coord{X: 1, Y: 2}}
	act(g, a)
	if a.Position != (world.Coord{X: 1, Y: 2}) {
		t.Errorf("harvester moved to %v with nothing to gather", a.Position)
	}

	a.Carry(world.ResourceRaw)
	act(g, a) // no settlement anywhere
	if a.Position != (world.Coord{X: 1, Y: 2}) || !a.IsCarrying(world.ResourceRaw) {
		t.Errorf("harvester = %+v, want unmoved and still carrying", a)
	}
}

func TestTravelPicksNearest(t *testing.T) {
	g := world.NewGrid(7, 7)
	setTile(g, 6, 6, world.TileResourceSite, 10, 0)
	setTile(g, 1, 3, world.TileResourceSite, 10, 0)
	a := &agents.Agent{Job: agents.JobHarvester, Position: world.Coord{X: 3, Y: 3}}

	act(g, a)
	if a.Position != (world.Coord{X: 2, Y: 3}) {
		t.Errorf("harvester at %v, want (2, 3)", a.Position)
	}
}

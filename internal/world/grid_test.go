package world

import (
	"math/rand"
	"testing"
)

func TestTileAtPositions(t *testing.T) {
	g := NewGrid(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			got := g.TileAt(x, y).Position()
			if got != (Coord{X: x, Y: y}) {
				t.Errorf("TileAt(%d, %d).Position() = %v", x, y, got)
			}
		}
	}
	if len(g.Tiles()) != 12 {
		t.Errorf("len(Tiles()) = %d, want 12", len(g.Tiles()))
	}
}

func TestTileAtPositionsSurviveMutation(t *testing.T) {
	g := NewGrid(3, 3)
	tile := g.TileAt(1, 2)
	tile.Kind = TileSettlement
	tile.Inventory.Add(ResourceProcessed)

	if got := g.TileAt(1, 2).Position(); got != (Coord{X: 1, Y: 2}) {
		t.Errorf("Position() after mutation = %v, want (1, 2)", got)
	}
	if g.TileAt(1, 2).Kind != TileSettlement {
		t.Errorf("TileAt did not return the stored tile")
	}
}

func TestTileAtOutOfBoundsPanics(t *testing.T) {
	g := NewGrid(2, 2)
	tests := []struct{ x, y int }{
		{-1, 0}, {0, -1}, {2, 0}, {0, 2},
	}
	for _, tc := range tests {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("TileAt(%d, %d) did not panic", tc.x, tc.y)
				}
			}()
			g.TileAt(tc.x, tc.y)
		}()
	}
}

func TestNearestMatching(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		from    Coord
		matches []Coord
		want    Coord
	}{
		{"self", 5, 5, Coord{2, 2}, []Coord{{2, 2}, {2, 3}}, Coord{2, 2}},
		{"closer ring wins", 5, 5, Coord{2, 2}, []Coord{{0, 0}, {3, 3}}, Coord{3, 3}},
		{"tie breaks on y", 5, 5, Coord{2, 2}, []Coord{{1, 2}, {3, 1}}, Coord{3, 1}},
		{"tie breaks on x", 5, 5, Coord{2, 2}, []Coord{{3, 3}, {1, 3}}, Coord{1, 3}},
		{"far corner", 5, 5, Coord{0, 0}, []Coord{{4, 4}}, Coord{4, 4}},
		{"wide grid", 6, 2, Coord{0, 0}, []Coord{{5, 1}}, Coord{5, 1}},
		{"tall grid", 2, 6, Coord{1, 5}, []Coord{{0, 0}}, Coord{0, 0}},
		{"clipped ring", 5, 5, Coord{0, 4}, []Coord{{2, 2}, {4, 4}}, Coord{2, 2}},
		{"no match", 4, 4, Coord{1, 1}, nil, Coord{1, 1}},
	}

	for _, tc := range tests {
		g := NewGrid(tc.w, tc.h)
		for _, c := range tc.matches {
			g.At(c).Kind = TileSettlement
		}
		got := g.NearestMatching(tc.from, func(t *Tile) bool { return t.Kind == TileSettlement })
		if got != tc.want {
			t.Errorf("%s: NearestMatching(%v) = %v, want %v", tc.name, tc.from, got, tc.want)
		}
	}
}

// bruteNearest picks the match with the smallest (distance, y, x).
func bruteNearest(g *Grid, from Coord, match func(*Tile) bool) (Coord, bool) {
	best, found := from, false
	bestD := 0
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if !match(g.TileAt(x, y)) {
				continue
			}
			c := Coord{X: x, Y: y}
			d := Chebyshev(from, c)
			if !found || d < bestD {
				best, bestD, found = c, d, true
			}
		}
	}
	return best, found
}

func TestNearestMatchingAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	match := func(t *Tile) bool { return t.Kind == TileResourceSite && t.Inventory.Has(ResourceRaw) }

	for trial := 0; trial < 300; trial++ {
		w, h := 1+rng.Intn(9), 1+rng.Intn(9)
		g := NewGrid(w, h)
		density := rng.Float64() * 0.3
		for i := range g.Tiles() {
			if rng.Float64() < density {
				g.Tiles()[i].Kind = TileResourceSite
				g.Tiles()[i].Inventory[ResourceRaw] = 1
			}
		}
		from := Coord{X: rng.Intn(w), Y: rng.Intn(h)}

		got := g.NearestMatching(from, match)
		want, found := bruteNearest(g, from, match)

		if !g.InBounds(got) {
			t.Fatalf("trial %d: result %v out of bounds", trial, got)
		}
		if got != want {
			t.Fatalf("trial %d (%dx%d from %v): got %v, want %v", trial, w, h, from, got, want)
		}
		if !found && got != from {
			t.Fatalf("trial %d: no match but got %v, want %v", trial, got, from)
		}
		if found && !match(g.At(got)) {
			t.Fatalf("trial %d: returned tile %v does not match", trial, got)
		}
	}
}

func TestInventory(t *testing.T) {
	var inv Inventory
	if inv.Take(ResourceRaw) {
		t.Errorf("Take on empty inventory succeeded")
	}
	if got := inv.Add(ResourceRaw); got != 1 {
		t.Errorf("Add = %d, want 1", got)
	}
	if !inv.Has(ResourceRaw) || inv.Has(ResourceProcessed) {
		t.Errorf("Has mismatch after Add: %v", inv)
	}
	if !inv.Take(ResourceRaw) || inv[ResourceRaw] != 0 {
		t.Errorf("Take did not remove the unit: %v", inv)
	}
}

func TestChebyshev(t *testing.T) {
	tests := []struct {
		a, b Coord
		want int
	}{
		{Coord{0, 0}, Coord{0, 0}, 0},
		{Coord{0, 0}, Coord{2, 2}, 2},
		{Coord{1, 4}, Coord{3, 1}, 3},
		{Coord{5, 0}, Coord{0, 1}, 5},
	}
	for _, tc := range tests {
		if got := Chebyshev(tc.a, tc.b); got != tc.want {
			t.Errorf("Chebyshev(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestKindCountsAndTotals(t *testing.T) {
	g := NewGrid(3, 1)
	g.TileAt(0, 0).Kind = TileResourceSite
	g.TileAt(0, 0).Inventory[ResourceRaw] = 7
	g.TileAt(2, 0).Kind = TileSettlement
	g.TileAt(2, 0).Inventory[ResourceRaw] = 2
	g.TileAt(2, 0).Inventory[ResourceProcessed] = 3

	counts := g.KindCounts()
	if counts != [NumTileKinds]int{1, 1, 1} {
		t.Errorf("KindCounts() = %v, want [1 1 1]", counts)
	}
	totals := g.Totals()
	if totals[ResourceRaw] != 9 || totals[ResourceProcessed] != 3 {
		t.Errorf("Totals() = %v, want [9 3]", totals)
	}
}

package world

import "fmt"

// Grid holds the fixed-size tile array of a world.
type Grid struct {
	width  int
	height int
	tiles  []Tile // row-major, index = y*width + x
}

// NewGrid creates a width×height grid of empty Open tiles.
func NewGrid(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("world: invalid grid size %dx%d", width, height))
	}
	g := &Grid{
		width:  width,
		height: height,
		tiles:  make([]Tile, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.tiles[y*width+x].pos = Coord{X: x, Y: y}
		}
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether c addresses a tile of the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// TileAt returns the tile at (x, y). Panics if the coordinate is outside the
// grid: agents only ever move toward in-bounds targets, so an escape is a bug.
func (g *Grid) TileAt(x, y int) *Tile {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		panic(fmt.Sprintf("world: tile (%d, %d) out of bounds for %dx%d grid", x, y, g.width, g.height))
	}
	return &g.tiles[y*g.width+x]
}

// At is TileAt for a Coord.
func (g *Grid) At(c Coord) *Tile {
	return g.TileAt(c.X, c.Y)
}

// Tiles returns the backing tile slice in row-major order. Callers may change
// tile kinds and inventories but not the slice itself.
func (g *Grid) Tiles() []Tile {
	return g.tiles
}

// NearestMatching searches outward from `from` in square rings of increasing
// Chebyshev distance and returns the first tile accepted by match. Within a
// ring, tiles are visited by ascending y, then ascending x. Returns from
// unchanged when no tile in the grid matches.
func (g *Grid) NearestMatching(from Coord, match func(*Tile) bool) Coord {
	limit := g.width
	if g.height > limit {
		limit = g.height
	}

	for d := 0; d < limit; d++ {
		for oy := -d; oy <= d; oy++ {
			y := from.Y + oy
			if y < 0 || y >= g.height {
				continue
			}
			// Interior rows of a ring only contribute their two edge cells.
			step := 2 * d
			if oy == -d || oy == d {
				step = 1
			}
			for ox := -d; ox <= d; ox += step {
				x := from.X + ox
				if x >= 0 && x < g.width && match(&g.tiles[y*g.width+x]) {
					return Coord{X: x, Y: y}
				}
			}
		}
	}
	return from
}

// KindCounts returns the number of tiles of each kind.
func (g *Grid) KindCounts() [NumTileKinds]int {
	var counts [NumTileKinds]int
	for i := range g.tiles {
		counts[g.tiles[i].Kind]++
	}
	return counts
}

// Totals returns the quantity of each resource stored across all tiles.
func (g *Grid) Totals() Inventory {
	var total Inventory
	for i := range g.tiles {
		for r, qty := range g.tiles[i].Inventory {
			total[r] += qty
		}
	}
	return total
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d)", g.width, g.height)
}

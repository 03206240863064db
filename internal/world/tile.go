// Package world provides the tile grid, resources, and spatial search.
// Coordinates are (x, y) with the origin in the top-left corner; tiles are
// stored row-major.
package world

// ResourceKind enumerates the goods that tiles store and agents carry.
type ResourceKind uint8

const (
	ResourceRaw       ResourceKind = iota // Harvested from resource sites
	ResourceProcessed                     // Produced by processors inside settlements
)

// NumResources is the total number of resource kinds.
const NumResources = 2

// ResourceName returns a human-readable name for a resource kind.
func ResourceName(r ResourceKind) string {
	switch r {
	case ResourceRaw:
		return "RawMaterial"
	case ResourceProcessed:
		return "ProcessedMaterial"
	default:
		return "Unknown"
	}
}

// TileKind determines which gather and deposit actions a tile supports.
type TileKind uint8

const (
	TileOpen         TileKind = iota // Empty land, building ground for new settlements
	TileResourceSite                 // Yields raw material until exhausted
	TileSettlement                   // Resource sink and population hub
)

// NumTileKinds is the total number of tile kinds.
const NumTileKinds = 3

// TileName returns a human-readable name for a tile kind.
func TileName(k TileKind) string {
	switch k {
	case TileOpen:
		return "Open"
	case TileResourceSite:
		return "ResourceSite"
	case TileSettlement:
		return "Settlement"
	default:
		return "Unknown"
	}
}

// Glyph returns the single character used to draw a tile kind on the console map.
func Glyph(k TileKind) byte {
	switch k {
	case TileOpen:
		return 'p'
	case TileResourceSite:
		return 'f'
	case TileSettlement:
		return 'c'
	default:
		return '?'
	}
}

// Inventory is a fixed-size array holding the quantity of each resource kind.
type Inventory [NumResources]int

// Has reports whether at least one unit of r is stored.
func (inv *Inventory) Has(r ResourceKind) bool {
	return inv[r] > 0
}

// Take removes one unit of r. Returns false if none was stored.
func (inv *Inventory) Take(r ResourceKind) bool {
	if inv[r] <= 0 {
		return false
	}
	inv[r]--
	return true
}

// Add stores one unit of r and returns the resulting quantity.
func (inv *Inventory) Add(r ResourceKind) int {
	inv[r]++
	return inv[r]
}

// Tile is a single cell of the grid.
type Tile struct {
	Kind      TileKind
	Inventory Inventory

	pos Coord // fixed at creation
}

// Position returns the tile's grid coordinate.
func (t *Tile) Position() Coord {
	return t.pos
}

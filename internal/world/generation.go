// World generation: tile kinds drawn from a probability table, either
// independently per tile or from layered simplex noise for clustered terrain.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/mini-economy/internal/entropy"
)

// MaxStartingRaw bounds the raw material a resource site starts with: [0, MaxStartingRaw).
const MaxStartingRaw = 1000

// GenConfig holds world generation parameters.
type GenConfig struct {
	Size      int             // Grid side length
	Tiles     Table[TileKind] // Tile-kind probability table
	Clustered bool            // Draw tile kinds from noise instead of independent draws
	Seed      int64           // Noise seed (clustered terrain only)
}

// DefaultTileRatios mirrors a woodland map: mostly resource sites, a few settlements.
func DefaultTileRatios() []Ratio[TileKind] {
	return []Ratio[TileKind]{
		{Category: TileSettlement, Weight: 1},
		{Category: TileResourceSite, Weight: 6},
		{Category: TileOpen, Weight: 3},
	}
}

// Generate builds a Size×Size grid and returns it together with the
// coordinates of its settlements in row-major order.
func Generate(cfg GenConfig, src entropy.Source) (*Grid, []Coord) {
	g := NewGrid(cfg.Size, cfg.Size)

	var noise opensimplex.Noise
	if cfg.Clustered {
		noise = opensimplex.NewNormalized(cfg.Seed)
	}

	var settlements []Coord
	for y := 0; y < cfg.Size; y++ {
		for x := 0; x < cfg.Size; x++ {
			var draw float64
			if noise != nil {
				draw = clampUnit(octaveNoise(noise, float64(x), float64(y), 3, 0.18, 0.5))
			} else {
				draw = src.Float64()
			}

			tile := g.TileAt(x, y)
			tile.Kind = cfg.Tiles.Sample(draw)
			switch tile.Kind {
			case TileResourceSite:
				tile.Inventory[ResourceRaw] = int(src.Float64() * MaxStartingRaw)
			case TileSettlement:
				tile.Inventory[ResourceProcessed] = 0
				settlements = append(settlements, tile.Position())
			case TileOpen:
			}
		}
	}

	return g, settlements
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// clampUnit forces v into [0, 1).
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return math.Nextafter(1, 0)
	}
	return v
}

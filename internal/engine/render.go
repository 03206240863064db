package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/world"
)

// Render writes the grid size, population summary per job and the tile map.
func (s *Simulation) Render(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "(%d, %d)\tWorld population is %s:\n",
		s.Grid.Width(), s.Grid.Height(), humanize.Comma(int64(len(s.Agents))))

	var counts [agents.NumJobs]int
	for _, a := range s.Agents {
		counts[a.Job]++
	}
	for _, r := range s.JobTable().Ranges() {
		pct := int(r.Share() * 100)
		fmt.Fprintf(&b, "{%s, %d%%, %s} ", agents.JobName(r.Category), pct, humanize.Comma(int64(counts[r.Category])))
	}
	b.WriteByte('\n')

	b.WriteString(MapString(s.Grid))

	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the rendered world.
func (s *Simulation) String() string {
	var b strings.Builder
	_ = s.Render(&b)
	return b.String()
}

// MapRows returns one glyph string per grid row.
func MapRows(g *world.Grid) []string {
	rows := make([]string, 0, g.Height())
	line := make([]byte, g.Width())
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			line[x] = world.Glyph(g.TileAt(x, y).Kind)
		}
		rows = append(rows, string(line))
	}
	return rows
}

// MapString returns the glyph map, one newline-terminated line per row.
func MapString(g *world.Grid) string {
	var b strings.Builder
	for _, row := range MapRows(g) {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}

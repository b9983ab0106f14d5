package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flexpos/pkg/geom"
)

// Layer identifies what a grid cell depicts. Later layers draw over
// earlier ones.
type Layer uint8

const (
	LayerNone Layer = iota
	LayerMargin
	LayerScrollable
	LayerBox
	LayerOrigin
	LayerOverlay
	LayerLabel
)

// Cell is one character of a [Grid].
type Cell struct {
	Rune  rune
	Layer Layer
}

// Grid is a character canvas onto which rectangles in viewport coordinates
// are projected. Each cell covers world.Width/cols by world.Height/rows
// units.
type Grid struct {
	cols, rows     int
	scaleX, scaleY float64
	cells          []Cell
}

// NewGrid returns an empty cols×rows grid covering a world of the given
// size. A zero world dimension maps one unit to one cell.
func NewGrid(cols, rows int, world geom.Size) *Grid {
	cols, rows = max(0, cols), max(0, rows)
	g := &Grid{cols: cols, rows: rows, scaleX: 1, scaleY: 1, cells: make([]Cell, cols*rows)}
	if world.Width > 0 {
		g.scaleX = float64(cols) / world.Width
	}
	if world.Height > 0 {
		g.scaleY = float64(rows) / world.Height
	}
	for i := range g.cells {
		g.cells[i] = Cell{Rune: ' '}
	}
	return g
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

// At returns the cell at (col, row). Out-of-range positions return an
// empty cell.
func (g *Grid) At(col, row int) Cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return Cell{Rune: ' '}
	}
	return g.cells[row*g.cols+col]
}

// Set writes r at (col, row) unless the cell already holds a higher layer.
func (g *Grid) Set(col, row int, r rune, layer Layer) {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return
	}
	c := &g.cells[row*g.cols+col]
	if layer >= c.Layer {
		*c = Cell{Rune: r, Layer: layer}
	}
}

// span returns the inclusive cell range covered by [lo, hi) on one axis.
// Zero-length spans still occupy one cell so point origins stay visible.
func span(lo, hi, scale float64) (int, int) {
	a := int(math.Floor(lo * scale))
	b := int(math.Ceil(hi*scale)) - 1
	if b < a {
		b = a
	}
	return a, b
}

func (g *Grid) cellsOf(r geom.Rect) (c0, r0, c1, r1 int) {
	c0, c1 = span(r.Left, r.Right, g.scaleX)
	r0, r1 = span(r.Top, r.Bottom, g.scaleY)
	return
}

// Fill paints every cell covered by r.
func (g *Grid) Fill(r geom.Rect, ch rune, layer Layer) {
	c0, r0, c1, r1 := g.cellsOf(r)
	for row := max(r0, 0); row <= min(r1, g.rows-1); row++ {
		for col := max(c0, 0); col <= min(c1, g.cols-1); col++ {
			g.Set(col, row, ch, layer)
		}
	}
}

// Outline paints the border of r with ch.
func (g *Grid) Outline(r geom.Rect, ch rune, layer Layer) {
	c0, r0, c1, r1 := g.cellsOf(r)
	for col := c0; col <= c1; col++ {
		g.Set(col, r0, ch, layer)
		g.Set(col, r1, ch, layer)
	}
	for row := r0; row <= r1; row++ {
		g.Set(c0, row, ch, layer)
		g.Set(c1, row, ch, layer)
	}
}

// Label writes text on the first row of r, clipped to r's width.
func (g *Grid) Label(r geom.Rect, text string, layer Layer) {
	c0, r0, c1, _ := g.cellsOf(r)
	col := c0
	for _, ch := range text {
		if col > c1 {
			break
		}
		g.Set(col, r0, ch, layer)
		col++
	}
}

// String returns the grid as plain text, one line per row with trailing
// blanks removed.
func (g *Grid) String() string {
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		line := make([]rune, g.cols)
		for col := range line {
			line[col] = g.cells[row*g.cols+col].Rune
		}
		b.WriteString(strings.TrimRight(string(line), " "))
		if row < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Styles maps layers to lipgloss styles for [Grid.Render].
type Styles struct {
	Margin     lipgloss.Style
	Scrollable lipgloss.Style
	Box        lipgloss.Style
	Origin     lipgloss.Style
	Overlay    lipgloss.Style
	Label      lipgloss.Style
}

// DefaultStyles returns the terminal palette used by the playground.
func DefaultStyles() Styles {
	return Styles{
		Margin:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Scrollable: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Box:        lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Origin:     lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
		Overlay:    lipgloss.NewStyle().Foreground(lipgloss.Color("36")),
		Label:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("36")).Bold(true),
	}
}

func (s Styles) style(l Layer) (lipgloss.Style, bool) {
	switch l {
	case LayerMargin:
		return s.Margin, true
	case LayerScrollable:
		return s.Scrollable, true
	case LayerBox:
		return s.Box, true
	case LayerOrigin:
		return s.Origin, true
	case LayerOverlay:
		return s.Overlay, true
	case LayerLabel:
		return s.Label, true
	}
	return lipgloss.Style{}, false
}

// Render returns the grid with each run of same-layer cells styled.
func (g *Grid) Render(st Styles) string {
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		start := 0
		for col := 1; col <= g.cols; col++ {
			if col < g.cols && g.cells[row*g.cols+col].Layer == g.cells[row*g.cols+start].Layer {
				continue
			}
			run := make([]rune, 0, col-start)
			for _, c := range g.cells[row*g.cols+start : row*g.cols+col] {
				run = append(run, c.Rune)
			}
			if style, ok := st.style(g.cells[row*g.cols+start].Layer); ok {
				b.WriteString(style.Render(string(run)))
			} else {
				b.WriteString(string(run))
			}
			start = col
		}
		if row < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

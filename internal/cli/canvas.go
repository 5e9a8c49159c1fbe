package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/interaction"
	"github.com/matzehuels/seatmap/pkg/style"
)

// terminalBackground is blended with section fills by their opacity.
var terminalBackground, _ = colorful.Hex("#1c1c1c")

// canvas rasterizes a diagram onto a grid of terminal cells. Each cell is
// hit-tested at its centre once per resize, so pointer lookups are O(1).
type canvas struct {
	cols, rows int
	tf         geom.Transformer
	hit        [][]string
}

func newCanvas(d *diagram.Diagram, cols, rows int) canvas {
	c := canvas{cols: max(cols, 1), rows: max(rows, 1)}
	tf, err := geom.NewTransformer(geom.ViewBox{Width: float64(c.cols), Height: float64(c.rows)}, geom.YAxisDown)
	if err != nil {
		return canvas{}
	}
	c.tf = tf
	c.hit = make([][]string, c.rows)
	for row := range c.hit {
		c.hit[row] = make([]string, c.cols)
		if d == nil {
			continue
		}
		for col := range c.hit[row] {
			p := tf.ToNormalized(geom.Point{X: float64(col) + 0.5, Y: float64(row) + 0.5})
			if id, ok := d.Hit(p); ok {
				c.hit[row][col] = id
			}
		}
	}
	return c
}

// at returns the section under a cell, or "".
func (c canvas) at(col, row int) string {
	if row < 0 || row >= len(c.hit) || col < 0 || col >= len(c.hit[row]) {
		return ""
	}
	return c.hit[row][col]
}

// cellOf maps a normalized point to its cell.
func (c canvas) cellOf(p geom.Point) (col, row int) {
	s := c.tf.ToSurface(p)
	return int(s.X), int(s.Y)
}

// edge reports whether a section cell borders a different section.
func (c canvas) edge(col, row int) bool {
	id := c.at(col, row)
	return c.at(col-1, row) != id || c.at(col+1, row) != id ||
		c.at(col, row-1) != id || c.at(col, row+1) != id
}

type cellKey struct {
	fg, bg string
	bold   bool
}

type cell struct {
	r   rune
	key cellKey
}

// frame is one drawing of the canvas.
type frame struct {
	cells  [][]cell
	styles map[cellKey]lipgloss.Style
}

// paint draws the sections with their current styles, then the labels and
// the tooltip on top.
func (c canvas) paint(d *diagram.Diagram, styles map[string]style.Style, labels bool, tip *interaction.Tooltip) string {
	f := frame{cells: make([][]cell, c.rows), styles: map[cellKey]lipgloss.Style{}}
	for row := range f.cells {
		f.cells[row] = make([]cell, c.cols)
		for col := range f.cells[row] {
			f.cells[row][col] = c.sectionCell(col, row, styles)
		}
	}
	if labels && d != nil {
		for _, id := range d.IDs() {
			p, _ := d.Label(id)
			col, row := c.cellOf(p)
			f.text(col-len(id)/2, row, id, cellKey{fg: "#ffffff", bold: styles[id].EmphasizeLabel})
		}
	}
	if tip != nil {
		f.box(int(tip.Position.Left), int(tip.Position.Top), int(tip.Size.W), tip.Lines)
	}
	return f.String()
}

func (c canvas) sectionCell(col, row int, styles map[string]style.Style) cell {
	id := c.at(col, row)
	if id == "" {
		return cell{r: ' '}
	}
	s := styles[id]
	if c.edge(col, row) {
		return cell{r: ' ', key: cellKey{bg: blend(s.Stroke, s.StrokeOpacity)}}
	}
	return cell{r: ' ', key: cellKey{bg: blend(s.Fill, s.FillOpacity)}}
}

// blend mixes hex over the terminal background at opacity.
func blend(hex string, opacity float64) string {
	col, err := style.ParseColor(hex)
	if err != nil {
		return ""
	}
	return terminalBackground.BlendRgb(col, opacity).Clamped().Hex()
}

// text writes s starting at (col, row), keeping each cell's background.
func (f *frame) text(col, row int, s string, key cellKey) {
	if row < 0 || row >= len(f.cells) {
		return
	}
	for i, r := range []rune(s) {
		x := col + i
		if x < 0 || x >= len(f.cells[row]) {
			continue
		}
		k := key
		if k.bg == "" {
			k.bg = f.cells[row][x].key.bg
		}
		f.cells[row][x] = cell{r: r, key: k}
	}
}

// box draws a bordered tooltip with its top-left corner at (left, top).
func (f *frame) box(left, top, width int, lines []string) {
	border := cellKey{fg: string(colorGray), bg: "#303030"}
	body := cellKey{fg: "#eeeeee", bg: "#303030"}
	inner := width - 2
	if inner < 0 {
		return
	}
	f.text(left, top, "╭"+strings.Repeat("─", inner)+"╮", border)
	for i, line := range lines {
		pad := inner - 2 - lipgloss.Width(line)
		if pad < 0 {
			pad = 0
		}
		f.text(left, top+1+i, "│", border)
		f.text(left+1, top+1+i, " "+line+strings.Repeat(" ", pad)+" ", body)
		f.text(left+width-1, top+1+i, "│", border)
	}
	f.text(left, top+1+len(lines), "╰"+strings.Repeat("─", inner)+"╯", border)
}

// String renders the frame, styling runs of equal cells together.
func (f *frame) String() string {
	var b strings.Builder
	var run strings.Builder
	for row, cells := range f.cells {
		if row > 0 {
			b.WriteByte('\n')
		}
		for i := 0; i < len(cells); {
			key := cells[i].key
			run.Reset()
			for ; i < len(cells) && cells[i].key == key; i++ {
				run.WriteRune(cells[i].r)
			}
			b.WriteString(f.style(key).Render(run.String()))
		}
	}
	return b.String()
}

func (f *frame) style(k cellKey) lipgloss.Style {
	if s, ok := f.styles[k]; ok {
		return s
	}
	s := lipgloss.NewStyle().Bold(k.bold)
	if k.fg != "" {
		s = s.Foreground(lipgloss.Color(k.fg))
	}
	if k.bg != "" {
		s = s.Background(lipgloss.Color(k.bg))
	}
	f.styles[k] = s
	return s
}

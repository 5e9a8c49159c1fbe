package detail

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	panelTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	panelLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	panelValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	panelMissing = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Italic(true)
)

// TextRenderer renders a bordered terminal panel.
type TextRenderer struct {
	Width int // total width including border; 0 means unconstrained
}

// Render implements [Renderer].
func (r TextRenderer) Render(c Content) (string, error) {
	var b strings.Builder
	b.WriteString(panelTitle.Render(c.Title))
	b.WriteString("\n")
	if c.Missing {
		b.WriteString(panelMissing.Render("No details for this section"))
		b.WriteString("\n")
	}
	row := func(label, value string) {
		b.WriteString(panelLabel.Render(label))
		b.WriteString(panelValue.Render(value))
		b.WriteString("\n")
	}
	row("Row", c.Row)
	row("Price", c.Price)
	row("Available", strconv.Itoa(c.TicketCount))
	if c.Capacity > 0 {
		row("Capacity", strconv.Itoa(c.Capacity))
	}
	b.WriteString("\n")
	b.WriteString(c.Description)

	style := panelBorder
	if r.Width > 0 {
		style = style.Width(r.Width - 2)
	}
	return style.Render(b.String()), nil
}

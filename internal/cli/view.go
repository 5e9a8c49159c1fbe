package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seatmap/pkg/detail"
	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/interaction"
	"github.com/matzehuels/seatmap/pkg/pipeline"
	"github.com/matzehuels/seatmap/pkg/records"
	"github.com/matzehuels/seatmap/pkg/style"
	"github.com/matzehuels/seatmap/pkg/tooltip"
)

const (
	panelWidth = 34
	headerRows = 1
	footerRows = 1
)

// viewCommand opens the terminal chart viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var recordsSrc string

	cmd := &cobra.Command{
		Use:   "view [diagram]",
		Short: "Browse a seating chart in the terminal",
		Long: `Draw a seating chart in the terminal. Hover a section with the mouse to
see its tooltip; click it to open the detail panel. Press l to toggle
labels, r to reload and esc to clear the selection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions(diagramArg(args))
			if cmd.Flags().Changed("records") {
				opts.Records = recordsSrc
			}
			return c.runView(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&recordsSrc, "records", "r", "", "section records: file, URL, sqlite:path or mongodb:// URI")
	return cmd
}

func (c *CLI) runView(ctx context.Context, opts pipeline.Options) error {
	if opts.Diagram == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no diagram: pass one or set diagram.source")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	// Log lines would tear the alternate screen.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.logOut)

	m := newViewModel(ctx, runner, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if vm, ok := final.(*viewModel); ok && vm.err != nil {
		return vm.err
	}
	return nil
}

// =============================================================================
// Keys
// =============================================================================

type viewKeys struct {
	Labels   key.Binding
	Reload   key.Binding
	Deselect key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var defaultViewKeys = viewKeys{
	Labels:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "labels")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Deselect: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "deselect")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k viewKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Labels, k.Reload, k.Deselect, k.Quit}
}

func (k viewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Labels, k.Reload}, {k.Deselect, k.Help, k.Quit}}
}

// =============================================================================
// Model
// =============================================================================

// loadedMsg carries the result of a (re)load.
type loadedMsg struct {
	diagram *diagram.Diagram
	records records.Lookup
	err     error
}

// viewModel is the bubbletea model of the viewer. It is also the
// controller's surface: the controller pushes styles, tooltips and details
// into it and View draws whatever was pushed last.
type viewModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	opts   pipeline.Options

	ctrl    *interaction.Controller
	diagram *diagram.Diagram
	canvas  canvas

	width, height int
	labels        bool
	under         string // section under the pointer

	styles   map[string]style.Style
	tip      *interaction.Tooltip
	detail   *detail.Content
	status   string
	err      error
	keys     viewKeys
	help     help.Model
	fullHelp bool
}

func newViewModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) *viewModel {
	m := &viewModel{
		ctx:    ctx,
		runner: runner,
		opts:   opts,
		labels: !opts.NoLabels,
		styles: map[string]style.Style{},
		keys:   defaultViewKeys,
		help:   help.New(),
	}
	m.ctrl = interaction.New(m, interaction.Options{
		Offset: tooltip.Offset{DX: 2, DY: 1, Margin: 1},
	})
	return m
}

func (m *viewModel) Init() tea.Cmd {
	return m.load
}

func (m *viewModel) load() tea.Msg {
	d, recs, err := m.runner.Load(m.ctx, m.opts)
	return loadedMsg{diagram: d, records: recs, err: err}
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.reload(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Labels):
			m.labels = !m.labels
		case key.Matches(msg, m.keys.Reload):
			m.status = "reloading..."
			return m, m.load
		case key.Matches(msg, m.keys.Deselect):
			m.ctrl.Deselect()
			m.detail = nil
		case key.Matches(msg, m.keys.Help):
			m.fullHelp = !m.fullHelp
			m.help.ShowAll = m.fullHelp
		}
	case tea.MouseMsg:
		m.mouse(msg)
	}
	return m, nil
}

// reload swaps in a freshly loaded chart. Hover and selection start over.
func (m *viewModel) reload(msg loadedMsg) {
	if msg.err != nil {
		if m.diagram == nil {
			m.err = msg.err
		}
		m.status = "reload failed: " + errors.UserMessage(msg.err)
		return
	}
	m.ctrl.Reload(nil, nil)
	m.styles = map[string]style.Style{}
	m.detail = nil
	m.under = ""
	m.diagram = msg.diagram
	m.ctrl.SetResolver(style.NewResolver(*m.opts.Palette, msg.diagram))
	m.ctrl.Reload(msg.diagram, msg.records)
	m.resize()
	m.status = fmt.Sprintf("%d sections, %d records", len(msg.diagram.IDs()), len(msg.records))
}

func (m *viewModel) chartSize() (cols, rows int) {
	return max(m.width-panelWidth-1, 10), max(m.height-headerRows-footerRows, 5)
}

func (m *viewModel) resize() {
	if m.width == 0 || m.diagram == nil {
		return
	}
	cols, rows := m.chartSize()
	m.canvas = newCanvas(m.diagram, cols, rows)
	m.ctrl.SetViewport(tooltip.Size{W: float64(cols), H: float64(rows)})
}

// mouse turns terminal mouse events into pointer events.
func (m *viewModel) mouse(msg tea.MouseMsg) {
	if m.diagram == nil {
		return
	}
	col, row := msg.X, msg.Y-headerRows
	id := m.canvas.at(col, row)
	cursor := tooltip.Point{X: float64(col), Y: float64(row)}

	switch msg.Action {
	case tea.MouseActionMotion:
		switch {
		case id == m.under && id != "":
			m.ctrl.PointerMove(cursor)
		case id != m.under:
			if m.under != "" {
				m.ctrl.PointerLeave(m.under)
			}
			if id != "" {
				m.ctrl.PointerEnter(id, cursor)
			}
			m.under = id
		}
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if id == "" {
			m.ctrl.Deselect()
			m.detail = nil
		} else {
			m.ctrl.Click(id)
		}
	}
}

func (m *viewModel) View() string {
	if m.err != nil {
		return printableError(m.err)
	}
	if m.diagram == nil || m.width == 0 {
		return StyleDim.Render("Loading " + m.opts.Diagram + "...")
	}

	title := m.diagram.Name
	if title == "" {
		title = m.opts.Diagram
	}
	header := StyleTitle.Render(title) + "  " + StyleDim.Render(m.status)

	chart := m.canvas.paint(m.diagram, m.styles, m.labels, m.tip)
	body := lipgloss.JoinHorizontal(lipgloss.Top, chart, " ", m.panel())

	return header + "\n" + body + "\n" + m.help.View(m.keys)
}

func (m *viewModel) panel() string {
	if m.detail == nil {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Foreground(colorDim).
			Width(panelWidth-2).
			Padding(0, 1).
			Render("Click a section for details")
	}
	out, err := detail.TextRenderer{Width: panelWidth}.Render(*m.detail)
	if err != nil {
		return err.Error()
	}
	return out
}

func printableError(err error) string {
	return lipgloss.NewStyle().Foreground(colorRed).Render(iconError+" "+errors.UserMessage(err)) + "\n"
}

// ApplyStyle implements interaction.Surface.
func (m *viewModel) ApplyStyle(id string, s style.Style) { m.styles[id] = s }

// ShowTooltip implements interaction.Surface.
func (m *viewModel) ShowTooltip(t interaction.Tooltip) { m.tip = &t }

// HideTooltip implements interaction.Surface.
func (m *viewModel) HideTooltip() { m.tip = nil }

// RenderDetail implements interaction.Surface.
func (m *viewModel) RenderDetail(c detail.Content) { m.detail = &c }

// TooltipSize implements interaction.Measurer in terminal cells.
func (m *viewModel) TooltipSize(c detail.Content) tooltip.Size {
	lines := detail.TooltipLines(c)
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	return tooltip.Size{W: float64(w + 4), H: float64(len(lines) + 2)}
}

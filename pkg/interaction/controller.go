package interaction

import (
	"github.com/matzehuels/seatmap/pkg/detail"
	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/observability"
	"github.com/matzehuels/seatmap/pkg/records"
	"github.com/matzehuels/seatmap/pkg/style"
	"github.com/matzehuels/seatmap/pkg/tooltip"
)

// State is the interaction state owned by a controller.
type State = style.Interaction

// Tooltip is a tooltip to show or move.
type Tooltip struct {
	SectionID string           `json:"section"`
	Content   detail.Content   `json:"content"`
	Lines     []string         `json:"lines"`
	Position  tooltip.Position `json:"position"`
	Size      tooltip.Size     `json:"size"`
}

// Surface receives the effects of interaction events.
type Surface interface {
	ApplyStyle(id string, s style.Style)
	// ShowTooltip shows the tooltip, or moves it if already visible.
	ShowTooltip(t Tooltip)
	HideTooltip()
	RenderDetail(c detail.Content)
}

// Measurer is implemented by surfaces that can size a tooltip from its
// content. Surfaces without it get [Options.TooltipSize].
type Measurer interface {
	TooltipSize(c detail.Content) tooltip.Size
}

// Binder attaches per-section event sources, such as DOM listeners on a
// browser client. The returned function detaches the binding.
type Binder interface {
	Attach(id string) (detach func())
}

// Options configures a [Controller].
type Options struct {
	Resolver    *style.Resolver
	Binder      Binder
	Viewport    tooltip.Size
	TooltipSize tooltip.Size
	Offset      tooltip.Offset
}

// Controller is the interaction state machine for one surface.
type Controller struct {
	surface  Surface
	resolver *style.Resolver
	binder   Binder

	diagram *diagram.Diagram
	records records.Lookup

	state      State
	tooltipFor string
	cursor     tooltip.Point
	viewport   tooltip.Size
	tipSize    tooltip.Size
	offset     tooltip.Offset
	detaches   []func()
}

// New returns a controller with no diagram loaded. Call [Controller.Reload]
// before dispatching events; events received earlier are ignored.
func New(surface Surface, opts Options) *Controller {
	if opts.Resolver == nil {
		opts.Resolver = style.NewResolver(style.DefaultPalette(), nil)
	}
	if opts.TooltipSize == (tooltip.Size{}) {
		opts.TooltipSize = tooltip.Size{W: 200, H: 100}
	}
	if opts.Offset == (tooltip.Offset{}) {
		opts.Offset = tooltip.DefaultOffset
	}
	return &Controller{
		surface:  surface,
		resolver: opts.Resolver,
		binder:   opts.Binder,
		viewport: opts.Viewport,
		tipSize:  opts.TooltipSize,
		offset:   opts.Offset,
		records:  records.Lookup{},
	}
}

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// Diagram returns the loaded diagram, or nil.
func (c *Controller) Diagram() *diagram.Diagram { return c.diagram }

// Bindings returns the number of attached per-section bindings.
func (c *Controller) Bindings() int { return len(c.detaches) }

// SetViewport updates the viewport used for tooltip placement.
func (c *Controller) SetViewport(vp tooltip.Size) {
	c.viewport = vp
	if c.tooltipFor != "" {
		c.showTooltip(c.tooltipFor)
	}
}

// SetResolver replaces the style resolver and restyles every section.
func (c *Controller) SetResolver(r *style.Resolver) {
	c.resolver = r
	c.restyleAll()
}

// Reload replaces the diagram and records. Previous bindings are detached
// first, the state is reset, and every section is restyled from scratch.
func (c *Controller) Reload(d *diagram.Diagram, recs records.Lookup) {
	for _, detach := range c.detaches {
		detach()
	}
	c.detaches = c.detaches[:0]

	c.diagram = d
	if recs == nil {
		recs = records.Lookup{}
	}
	c.records = recs
	c.state = State{}
	c.hideTooltip()

	if d == nil {
		return
	}
	if c.binder != nil {
		for _, id := range d.IDs() {
			c.detaches = append(c.detaches, c.binder.Attach(id))
		}
	}
	c.restyleAll()
	observability.Interaction().OnReload(len(d.IDs()))
}

// PointerEnter marks id as hovered and shows its tooltip at cursor.
func (c *Controller) PointerEnter(id string, cursor tooltip.Point) {
	if !c.known(id) {
		return
	}
	c.cursor = cursor
	prev := c.state.HoveredID
	c.state.HoveredID = id
	if prev != "" && prev != id {
		c.restyle(prev)
	}
	c.restyle(id)
	c.showTooltip(id)
	c.emit(EventPointerEnter, id)
}

// PointerLeave clears the hover if id is the hovered section, hides its
// tooltip and restyles it.
func (c *Controller) PointerLeave(id string) {
	if !c.known(id) {
		return
	}
	if c.state.HoveredID == id {
		c.state.HoveredID = ""
	}
	if c.tooltipFor == id {
		c.tooltipFor = ""
		c.surface.HideTooltip()
	}
	c.restyle(id)
	c.emit(EventPointerLeave, id)
}

// PointerMove repositions the tooltip while a section is hovered. A tooltip
// hidden by a click stays hidden until the pointer enters a section again.
func (c *Controller) PointerMove(cursor tooltip.Point) {
	c.cursor = cursor
	if c.state.HoveredID == "" || c.tooltipFor == "" {
		return
	}
	c.showTooltip(c.tooltipFor)
}

// Click selects id, restyling the previous selection, hiding the tooltip and
// rendering the detail panel. Clicking the selected section changes nothing.
func (c *Controller) Click(id string) {
	if !c.known(id) {
		return
	}
	c.hideTooltip()
	if c.state.SelectedID == id {
		return
	}
	prev := c.state.SelectedID
	c.state.SelectedID = id
	if prev != "" {
		c.restyle(prev)
	}
	c.restyle(id)
	c.surface.RenderDetail(detail.Lookup(id, c.records))
	c.emit(EventClick, id)
}

// Deselect clears the selection.
func (c *Controller) Deselect() {
	prev := c.state.SelectedID
	if prev == "" {
		return
	}
	c.state.SelectedID = ""
	c.restyle(prev)
	c.emit(EventDeselect, prev)
}

func (c *Controller) known(id string) bool {
	return c.diagram != nil && c.diagram.Has(id)
}

func (c *Controller) restyle(id string) {
	c.surface.ApplyStyle(id, c.resolver.Resolve(id, c.state))
}

func (c *Controller) restyleAll() {
	if c.diagram == nil {
		return
	}
	c.resolver.RestyleAll(c.diagram.IDs(), c.state, c.surface.ApplyStyle)
}

func (c *Controller) showTooltip(id string) {
	content := detail.Lookup(id, c.records)
	size := c.tipSize
	if m, ok := c.surface.(Measurer); ok {
		size = m.TooltipSize(content)
	}
	c.tooltipFor = id
	c.surface.ShowTooltip(Tooltip{
		SectionID: id,
		Content:   content,
		Lines:     detail.TooltipLines(content),
		Position:  tooltip.Place(c.cursor, size, c.viewport, c.offset),
		Size:      size,
	})
}

func (c *Controller) hideTooltip() {
	if c.tooltipFor == "" {
		return
	}
	c.tooltipFor = ""
	c.surface.HideTooltip()
}

func (c *Controller) emit(kind EventKind, id string) {
	observability.Interaction().OnTransition(string(kind), id, c.state.SelectedID, c.state.HoveredID)
}

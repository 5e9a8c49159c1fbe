package sink

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/seatmap/pkg/detail"
	"github.com/matzehuels/seatmap/pkg/diagram"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/style"
	"github.com/matzehuels/seatmap/pkg/tooltip"
)

const sectionCSS = `
    .section { transition: fill 0.15s ease, stroke-width 0.15s ease; cursor: pointer; }
    .label { font-family: sans-serif; pointer-events: none; fill: #222; }
    .label.emph { font-weight: bold; }
    .popup { pointer-events: none; }
    .popup rect { fill: #fff; fill-opacity: 0.95; stroke: #333; stroke-width: 1; }
    .popup text { font-family: sans-serif; fill: #222; }`

// sectionJS mirrors style.Resolver and tooltip.Place so an exported SVG
// behaves like the live surfaces without a server.
const sectionJS = `
    const svg = document.querySelector('svg');
    const vb = svg.viewBox.baseVal;
    const state = { selected: cfg.selected || '', hovered: '' };
    function resolve(id) {
      if (id && id === state.selected) return Object.assign({ cls: 'section selected', emph: true }, cfg.palette.selected);
      if (id && id === state.hovered) return Object.assign({ cls: 'section hovered', emph: true }, cfg.palette.hover);
      return Object.assign({ cls: 'section', emph: false }, cfg.palette.idle, cfg.overrides[id] || {});
    }
    function each(sel, id, fn) {
      svg.querySelectorAll(sel).forEach(el => { if (el.dataset.section === id) fn(el); });
    }
    function restyle(id) {
      if (!id) return;
      const s = resolve(id);
      each('.section', id, el => {
        el.setAttribute('class', s.cls);
        el.setAttribute('fill', s.fill);
        el.setAttribute('fill-opacity', s.fill_opacity);
        el.setAttribute('stroke', s.stroke);
        el.setAttribute('stroke-opacity', s.stroke_opacity);
        el.setAttribute('stroke-width', s.stroke_width);
      });
      each('.label', id, el => el.classList.toggle('emph', s.emph));
    }
    function axis(c, extent, limit, offset, margin) {
      let v = c + offset;
      if (v + extent > limit) v = c - extent - margin;
      if (v < 0) v = margin;
      return v;
    }
    function local(evt) {
      const pt = svg.createSVGPoint();
      pt.x = evt.clientX; pt.y = evt.clientY;
      const p = pt.matrixTransform(svg.getScreenCTM().inverse());
      return { x: p.x - vb.x, y: p.y - vb.y };
    }
    let shown = null;
    function popupFor(id) {
      let found = null;
      svg.querySelectorAll('.popup').forEach(el => { if (el.dataset.for === id) found = el; });
      return found;
    }
    function place(evt) {
      if (!shown) return;
      const c = local(evt);
      const w = parseFloat(shown.dataset.w), h = parseFloat(shown.dataset.h);
      const x = vb.x + axis(c.x, w, vb.width, cfg.offset.dx, cfg.offset.margin);
      const y = vb.y + axis(c.y, h, vb.height, cfg.offset.dy, cfg.offset.margin);
      shown.setAttribute('transform', 'translate(' + x.toFixed(1) + ',' + y.toFixed(1) + ')');
    }
    function hide() {
      if (shown) shown.setAttribute('visibility', 'hidden');
      shown = null;
    }
    svg.querySelectorAll('.section').forEach(el => {
      const id = el.dataset.section;
      el.addEventListener('mouseenter', evt => {
        const prev = state.hovered;
        state.hovered = id;
        if (prev && prev !== id) restyle(prev);
        restyle(id);
        hide();
        shown = popupFor(id);
        if (shown) { place(evt); shown.setAttribute('visibility', 'visible'); }
      });
      el.addEventListener('mousemove', place);
      el.addEventListener('mouseleave', () => {
        if (state.hovered === id) state.hovered = '';
        if (shown && shown.dataset.for === id) hide();
        restyle(id);
      });
      el.addEventListener('click', () => {
        hide();
        if (state.selected === id) return;
        const prev = state.selected;
        state.selected = id;
        restyle(prev);
        restyle(id);
        svg.dispatchEvent(new CustomEvent('sectionselect', { detail: id }));
      });
    });`

const (
	popupFontSize   = 13.0
	popupLineHeight = 17.0
	popupPadding    = 8.0
	pointRadius     = 4.0
)

// RenderSVG renders the diagram as SVG. The y axis defaults to down, the
// SVG convention.
func RenderSVG(d *diagram.Diagram, opts ...Option) ([]byte, error) {
	o := newOptions(geom.YAxisDown, opts)
	l, err := buildLayout(d, o)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s" width="%.0f" height="%.0f">`+"\n",
		l.ViewBox, l.Width, l.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", sectionCSS)

	if l.Background != "" {
		renderBackground(&buf, l, o.bgOpacity)
	}

	buf.WriteString("  <g class=\"sections\">\n")
	for _, s := range l.Shapes {
		renderShape(&buf, s)
	}
	buf.WriteString("  </g>\n")

	if len(l.Labels) > 0 {
		size := labelSize(l.ViewBox)
		buf.WriteString("  <g class=\"labels\">\n")
		for _, lb := range l.Labels {
			renderLabel(&buf, lb, size)
		}
		buf.WriteString("  </g>\n")
	}

	if o.popups {
		for _, id := range d.IDs() {
			renderPopup(&buf, detail.Lookup(id, o.records))
		}
		if err := renderScript(&buf, d, o); err != nil {
			return nil, err
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func renderBackground(buf *bytes.Buffer, l Layout, opacity float64) {
	vb := l.ViewBox
	fmt.Fprintf(buf, `  <image class="background" href="%s" x="%s" y="%s" width="%s" height="%s" opacity="%s" preserveAspectRatio="none"/>`+"\n",
		escapeXML(l.Background), num(vb.MinX), num(vb.MinY), num(vb.Width), num(vb.Height), num(opacity))
}

func renderShape(buf *bytes.Buffer, s Shape) {
	st := s.Style
	attrs := fmt.Sprintf(`class="%s" data-section="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-opacity="%s" stroke-width="%s"`,
		st.Class, escapeXML(s.ID), escapeXML(st.Fill), num(st.FillOpacity), escapeXML(st.Stroke), num(st.StrokeOpacity), num(st.StrokeWidth))

	if s.Geometry.Kind == geom.KindPoint {
		p := s.Geometry.Point
		fmt.Fprintf(buf, `    <circle %s cx="%s" cy="%s" r="%s"/>`+"\n", attrs, num(p.X), num(p.Y), num(pointRadius))
		return
	}
	fmt.Fprintf(buf, `    <path %s fill-rule="evenodd" d="%s"><title>%s</title></path>`+"\n",
		attrs, pathData(s.Geometry), escapeXML(s.CompositeID))
}

// pathData writes every ring of every polygon as a closed subpath.
func pathData(g geom.Geometry) string {
	var sb strings.Builder
	for _, poly := range g.Polygons {
		for _, ring := range poly {
			for i, p := range ring {
				if i == 0 {
					sb.WriteString("M")
				} else {
					sb.WriteString(" L")
				}
				sb.WriteString(num(p.X))
				sb.WriteByte(' ')
				sb.WriteString(num(p.Y))
			}
			if len(ring) > 0 {
				sb.WriteString(" Z ")
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func labelSize(vb geom.ViewBox) float64 {
	return math.Max(8, math.Min(vb.Width, vb.Height)/40)
}

func renderLabel(buf *bytes.Buffer, lb Label, size float64) {
	class := "label"
	if lb.Emphasized {
		class = "label emph"
	}
	fmt.Fprintf(buf, `    <text class="%s" data-section="%s" x="%s" y="%s" font-size="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		class, escapeXML(lb.ID), num(lb.At.X), num(lb.At.Y), num(size), escapeXML(lb.ID))
}

func renderPopup(buf *bytes.Buffer, c detail.Content) {
	lines := detail.TooltipLines(c)
	w, h := popupSize(lines)
	fmt.Fprintf(buf, `  <g class="popup" data-for="%s" data-w="%s" data-h="%s" visibility="hidden">`+"\n",
		escapeXML(c.SectionID), num(w), num(h))
	fmt.Fprintf(buf, `    <rect width="%s" height="%s" rx="4"/>`+"\n", num(w), num(h))
	fmt.Fprintf(buf, `    <text font-size="%s">`, num(popupFontSize))
	for i, line := range lines {
		y := popupPadding + popupFontSize + float64(i)*popupLineHeight
		weight := ""
		if i == 0 {
			weight = ` font-weight="bold"`
		}
		fmt.Fprintf(buf, `<tspan x="%s" y="%s"%s>%s</tspan>`, num(popupPadding), num(y), weight, escapeXML(line))
	}
	buf.WriteString("</text>\n  </g>\n")
}

// popupSize estimates the popup box from the longest line; SVG has no text
// metrics before layout.
func popupSize(lines []string) (float64, float64) {
	longest := 0
	for _, l := range lines {
		longest = max(longest, len([]rune(l)))
	}
	w := float64(longest)*popupFontSize*0.6 + 2*popupPadding
	h := float64(len(lines))*popupLineHeight + 2*popupPadding
	return w, h
}

type scriptConfig struct {
	Palette   style.Palette                `json:"palette"`
	Overrides map[string]map[string]string `json:"overrides"`
	Offset    tooltip.Offset               `json:"offset"`
	Selected  string                       `json:"selected"`
}

func renderScript(buf *bytes.Buffer, d *diagram.Diagram, o options) error {
	r := o.resolver
	if r == nil {
		r = style.NewResolver(style.DefaultPalette(), d)
	}
	cfg := scriptConfig{
		Palette:   r.Palette,
		Overrides: make(map[string]map[string]string, len(r.Overrides)),
		Offset:    o.offset,
		Selected:  o.state.SelectedID,
	}
	for id, ov := range r.Overrides {
		m := map[string]string{}
		if ov.Fill != "" {
			m["fill"] = ov.Fill
		}
		if ov.Stroke != "" {
			m["stroke"] = ov.Stroke
		}
		cfg.Overrides[id] = m
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode script config: %w", err)
	}
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[\n    const cfg = %s;%s\n  ]]></script>\n", data, sectionJS)
	return nil
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

package detail

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
)

var panelTemplate = template.Must(template.New("detail").Parse(`<section class="detail-panel{{if .Missing}} missing{{end}}" data-section="{{.SectionID}}">
<h3>{{.Title}}</h3>
{{- if .Missing}}
<p class="detail-empty">No details for this section</p>
{{- end}}
<dl>
<dt>Row</dt><dd>{{.Row}}</dd>
<dt>Price</dt><dd>{{.Price}}</dd>
<dt>Available</dt><dd>{{.TicketCount}}</dd>
{{- if gt .Capacity 0}}
<dt>Capacity</dt><dd>{{.Capacity}}</dd>
{{- end}}
</dl>
<div class="detail-description">{{.DescriptionHTML}}</div>
</section>
`))

// HTMLRenderer renders an HTML fragment. The description is Markdown; raw
// HTML inside it is dropped by goldmark.
type HTMLRenderer struct{}

// Render implements [Renderer].
func (HTMLRenderer) Render(c Content) (string, error) {
	var desc bytes.Buffer
	if err := markdown.Convert([]byte(c.Description), &desc); err != nil {
		return "", err
	}
	var out bytes.Buffer
	err := panelTemplate.Execute(&out, struct {
		Content
		DescriptionHTML template.HTML
	}{c, template.HTML(desc.String())})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Package detail builds and renders the section detail panel and tooltip
// text.
//
// [Build] turns an optional record into [Content]. A missing record is not an
// error: it produces placeholder content with Missing set, which renderers
// show as "no details" instead of failing.
package detail

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/seatmap/pkg/records"
)

// Placeholder values for sections without a record.
const (
	UnknownValue  = "Unknown"
	NoDescription = "No description"
)

// Content is everything a detail panel or tooltip shows for one section.
type Content struct {
	SectionID   string `json:"section_id"`
	Title       string `json:"title"`
	Row         string `json:"row"`
	Price       string `json:"price"`
	TicketCount int    `json:"ticket_count"`
	Capacity    int    `json:"capacity,omitempty"`
	Description string `json:"description"`
	Missing     bool   `json:"missing"`
}

// Build returns the content for id. ok reports whether rec was found.
func Build(id string, rec records.SectionRecord, ok bool) Content {
	c := Content{
		SectionID: id,
		Title:     "Section " + id,
	}
	if !ok {
		c.Row = UnknownValue
		c.Price = UnknownValue
		c.Description = NoDescription
		c.Missing = true
		return c
	}
	c.Row = orUnknown(rec.Row.String())
	c.Price = orUnknown(rec.Price.String())
	c.TicketCount = rec.TicketCount
	c.Capacity = rec.Capacity
	c.Description = rec.Description
	if c.Description == "" {
		c.Description = NoDescription
	}
	return c
}

// Lookup builds content for id from a record mapping.
func Lookup(id string, recs records.Lookup) Content {
	rec, ok := recs.Get(id)
	return Build(id, rec, ok)
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}

// TooltipLines is the short form shown next to the pointer.
func TooltipLines(c Content) []string {
	lines := []string{
		c.Title,
		"Row: " + c.Row,
		"Price: " + c.Price,
		"Available: " + strconv.Itoa(c.TicketCount),
	}
	if c.Capacity > 0 {
		lines = append(lines, fmt.Sprintf("Capacity: %d", c.Capacity))
	}
	return lines
}

// Renderer renders detail content for a particular surface.
type Renderer interface {
	Render(c Content) (string, error)
}

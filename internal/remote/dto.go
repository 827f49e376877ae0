package remote

import (
	"time"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/drambot/internal/core"
)

// reviewDTO is the wire shape of a review resource. Ids are strings and
// timestamps RFC 3339 on this boundary; the body may carry rich text.
type reviewDTO struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	Distillery string   `json:"distillery"`
	Region     string   `json:"region"`
	Rating     float64  `json:"rating"`
	Body       string   `json:"body"`
	UpdatedAt  string   `json:"updatedAt,omitempty"`
	Notes      []string `json:"notes,omitempty"`
}

func (d reviewDTO) toHighlight() core.RemoteHighlight {
	h := core.RemoteHighlight{
		ID:         d.ID,
		Name:       d.Name,
		Distillery: d.Distillery,
		Region:     d.Region,
		Rating:     d.Rating,
		Summary:    flatten(d.Body),
	}
	// A bad timestamp is not worth failing a sync over; it stays zero.
	if t, err := time.Parse(time.RFC3339, d.UpdatedAt); err == nil {
		h.UpdatedAt = t
	}
	return h
}

func fromRecord(r core.Record) reviewDTO {
	return reviewDTO{
		Name:       r.Name,
		Distillery: r.Distillery,
		Region:     r.Region,
		Rating:     r.Rating,
		Body:       r.Story,
		Notes:      r.Notes,
	}
}

// flatten strips any markup out of a rich-text body so prompt context
// stays plain text.
func flatten(s string) string {
	text, err := html2text.FromString(s, html2text.Options{TextOnly: true})
	if err != nil {
		return s
	}
	return text
}

package core

import (
	"strconv"
	"strings"
	"time"
)

// Provenance tells which partition of the merged collection a record
// belongs to.
type Provenance string

const (
	// ProvenanceCore marks records from the bundled reference dataset.
	// They are loaded once at startup and never mutated.
	ProvenanceCore Provenance = "core"
	// ProvenanceAnnex marks user-contributed records. Only these may be
	// updated or removed.
	ProvenanceAnnex Provenance = "annex"
)

// Record is a single whisky in the merged collection. IDs are unique across
// both partitions.
type Record struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Distillery string     `json:"distillery"`
	Region     string     `json:"region"`
	Type       string     `json:"type"`
	// Age holds years as digits ("12") or an age statement such as "NAS".
	Age        string     `json:"age"`
	ABV        float64    `json:"abv"`
	Rating     float64    `json:"rating"`
	Notes      []string   `json:"notes"`
	Story      string     `json:"story,omitempty"`
	Provenance Provenance `json:"provenance"`
	// LastUpdated is stamped on annex records on every mutation.
	LastUpdated time.Time `json:"last_updated"`
}

// Validate checks the structural rules every record must satisfy.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.Distillery) == "" {
		return &ValidationError{Field: "distillery", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.Region) == "" {
		return &ValidationError{Field: "region", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.Type) == "" {
		return &ValidationError{Field: "type", Reason: "must not be empty"}
	}
	if r.ABV <= 0 || r.ABV > 100 {
		return &ValidationError{Field: "abv", Reason: "must be in (0, 100]"}
	}
	if r.Rating < 0 || r.Rating > 100 {
		return &ValidationError{Field: "rating", Reason: "must be in [0, 100]"}
	}
	if len(r.Notes) == 0 {
		return &ValidationError{Field: "notes", Reason: "needs at least one tasting note"}
	}
	for _, n := range r.Notes {
		if strings.TrimSpace(n) == "" {
			return &ValidationError{Field: "notes", Reason: "tasting notes must not be blank"}
		}
	}
	return nil
}

// RemoteHighlight is a community review fetched from a DramBot server,
// flattened to plain text for prompt context. It never joins the merged
// collection and carries the server's string id untouched.
type RemoteHighlight struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Distillery string    `json:"distillery"`
	Region     string    `json:"region"`
	Rating     float64   `json:"rating"`
	Summary    string    `json:"summary"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NumericAge returns the age in years when the age field is a plain number,
// or false for statements like "NAS".
func (r Record) NumericAge() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.Age), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

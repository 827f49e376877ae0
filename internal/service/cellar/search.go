package cellar

import (
	"strings"

	"github.com/sandevgo/drambot/internal/core"
)

// Filters narrow a search. Zero values and nil pointers are no-ops, and
// every set filter must match (AND semantics).
type Filters struct {
	Region    string
	Type      string
	AgeMin    *float64
	AgeMax    *float64
	RatingMin *float64
	RatingMax *float64

	// UserAdded partitions strictly by provenance: true keeps annex
	// records only, false keeps core records only.
	UserAdded *bool
}

// Search matches query as a case-insensitive substring over the textual
// fields of each record, then applies the filters.
func (e *Engine) Search(query string, f Filters) []core.Record {
	q := strings.ToLower(strings.TrimSpace(query))

	var out []core.Record
	for _, r := range e.All() {
		if q != "" && !matchesQuery(r, q) {
			continue
		}
		if !matchesFilters(r, f) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesQuery(r core.Record, q string) bool {
	hay := strings.ToLower(strings.Join([]string{
		r.Name,
		r.Distillery,
		r.Region,
		r.Type,
		strings.Join(r.Notes, " "),
		r.Story,
	}, " "))
	return strings.Contains(hay, q)
}

func matchesFilters(r core.Record, f Filters) bool {
	if f.Region != "" && !strings.EqualFold(r.Region, f.Region) {
		return false
	}
	if f.Type != "" && !strings.EqualFold(r.Type, f.Type) {
		return false
	}

	if f.AgeMin != nil || f.AgeMax != nil {
		age, ok := r.NumericAge()
		if !ok {
			// Age-bounded searches only ever see numeric ages; "NAS"
			// cannot satisfy a range.
			return false
		}
		if f.AgeMin != nil && age < *f.AgeMin {
			return false
		}
		if f.AgeMax != nil && age > *f.AgeMax {
			return false
		}
	}

	if f.RatingMin != nil && r.Rating < *f.RatingMin {
		return false
	}
	if f.RatingMax != nil && r.Rating > *f.RatingMax {
		return false
	}

	if f.UserAdded != nil && (r.Provenance == core.ProvenanceAnnex) != *f.UserAdded {
		return false
	}
	return true
}

package cellar

import (
	"sort"
	"time"

	"github.com/sandevgo/drambot/internal/core"
)

// Stats summarizes the merged collection.
type Stats struct {
	Total      int
	CoreCount  int
	AnnexCount int

	// Types holds the distinct type values, sorted.
	Types []string

	// MeanAge averages the numeric ages; non-numeric age statements
	// ("NAS") are ignored. Zero when no record has a numeric age.
	MeanAge float64

	// LastMutation is the most recent annex change, zero when the annex
	// has never been written.
	LastMutation time.Time
}

func (e *Engine) Stats() Stats {
	annex := e.annex.Get()

	s := Stats{
		CoreCount:  len(e.core),
		AnnexCount: len(annex),
		Total:      len(e.core) + len(annex),
	}

	seen := make(map[string]bool)
	var ageSum float64
	var ageCount int

	for _, r := range e.All() {
		if !seen[r.Type] {
			seen[r.Type] = true
			s.Types = append(s.Types, r.Type)
		}
		if age, ok := r.NumericAge(); ok {
			ageSum += age
			ageCount++
		}
	}
	sort.Strings(s.Types)
	if ageCount > 0 {
		s.MeanAge = ageSum / float64(ageCount)
	}

	for _, r := range annex {
		if r.LastUpdated.After(s.LastMutation) {
			s.LastMutation = r.LastUpdated
		}
	}
	return s
}

// Highlights returns up to n records for prompt context: the most
// recently updated annex records first, topped up with core records in
// insertion order.
func (e *Engine) Highlights(n int) []core.Record {
	if n <= 0 {
		return nil
	}

	annex := e.annex.Get()
	recent := make([]core.Record, len(annex))
	copy(recent, annex)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].LastUpdated.After(recent[j].LastUpdated)
	})

	out := make([]core.Record, 0, n)
	for _, r := range recent {
		if len(out) == n {
			return out
		}
		out = append(out, r)
	}
	for _, r := range e.core {
		if len(out) == n {
			return out
		}
		out = append(out, r)
	}
	return out
}

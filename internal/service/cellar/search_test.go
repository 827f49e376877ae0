package cellar

import (
	"context"
	"testing"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchEngine(t *testing.T) *Engine {
	t.Helper()
	e := smallEngine(t, []core.Record{
		{
			ID: 1, Name: "Lagavulin 16", Distillery: "Lagavulin", Region: "Islay",
			Type: "Single Malt", Age: "16", ABV: 43, Rating: 93,
			Notes: []string{"peat smoke", "iodine"}, Provenance: core.ProvenanceCore,
		},
		{
			ID: 2, Name: "Glenkinchie 12", Distillery: "Glenkinchie", Region: "Lowlands",
			Type: "Single Malt", Age: "12", ABV: 43, Rating: 82,
			Notes: []string{"cut grass", "lemon"}, Provenance: core.ProvenanceCore,
		},
		{
			ID: 3, Name: "Buffalo Trace", Distillery: "Buffalo Trace", Region: "Kentucky",
			Type: "Bourbon", Age: "NAS", ABV: 45, Rating: 84,
			Notes: []string{"caramel", "new oak"}, Provenance: core.ProvenanceCore,
			Story: "Kentucky straight bourbon from the old Ancient Age plant.",
		},
	})

	d := draft("Ledaig 10")
	d.Region = "Islands"
	d.Age = "10"
	d.Rating = 88
	d.Notes = []string{"farmyard peat", "brine"}
	_, err := e.Add(context.Background(), d)
	require.NoError(t, err)
	return e
}

func ids(records []core.Record) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestSearch_QueryIsCaseInsensitiveSubstring(t *testing.T) {
	e := searchEngine(t)

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{name: "name match", query: "lagavulin", want: []int{1}},
		{name: "mixed case", query: "LAGAVULIN", want: []int{1}},
		{name: "note match", query: "peat", want: []int{1, 4}},
		{name: "story match", query: "ancient age", want: []int{3}},
		{name: "region match", query: "lowlands", want: []int{2}},
		{name: "no match", query: "rum", want: []int{}},
		{name: "empty query matches everything", query: "", want: []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Search(tt.query, Filters{})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearch_Filters(t *testing.T) {
	e := searchEngine(t)

	tests := []struct {
		name    string
		filters Filters
		want    []int
	}{
		{name: "region exact", filters: Filters{Region: "islay"}, want: []int{1}},
		{name: "type exact", filters: Filters{Type: "bourbon"}, want: []int{3}},
		{name: "age minimum excludes NAS", filters: Filters{AgeMin: f64Ptr(10)}, want: []int{1, 2, 4}},
		{name: "age range inclusive", filters: Filters{AgeMin: f64Ptr(10), AgeMax: f64Ptr(12)}, want: []int{2, 4}},
		{name: "rating minimum", filters: Filters{RatingMin: f64Ptr(88)}, want: []int{1, 4}},
		{name: "rating maximum", filters: Filters{RatingMax: f64Ptr(84)}, want: []int{2, 3}},
		{name: "user added only", filters: Filters{UserAdded: boolPtr(true)}, want: []int{4}},
		{name: "core only", filters: Filters{UserAdded: boolPtr(false)}, want: []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Search("", tt.filters)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearch_FiltersComposeWithAND(t *testing.T) {
	e := searchEngine(t)

	got := e.Search("peat", Filters{RatingMin: f64Ptr(90)})
	assert.Equal(t, []int{1}, ids(got), "query AND rating filter")

	got = e.Search("peat", Filters{UserAdded: boolPtr(true)})
	assert.Equal(t, []int{4}, ids(got), "query AND provenance filter")

	got = e.Search("peat", Filters{Region: "Lowlands"})
	assert.Empty(t, got, "contradictory filters match nothing")
}

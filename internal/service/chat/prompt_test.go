package chat

import (
	"strings"
	"testing"

	"github.com/sandevgo/drambot/internal/core"
)

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func testRecords() []core.Record {
	return []core.Record{
		{
			ID: 1, Name: "Talisker 10", Distillery: "Talisker", Region: "Islands",
			Type: "Single Malt", Age: "10", ABV: 45.8, Rating: 87,
			Notes: []string{"pepper", "brine"},
		},
		{
			ID: 2, Name: "Benromach 15", Distillery: "Benromach", Region: "Speyside",
			Type: "Single Malt", Age: "15", ABV: 43, Rating: 89,
			Notes: []string{"sherry", "light smoke"},
		},
		{
			ID: 3, Name: "Millstone 100", Distillery: "Zuidam", Region: "Netherlands",
			Type: "Rye", Age: "8", ABV: 50, Rating: 85,
			Notes: []string{"spice", "vanilla"},
		},
	}
}

func TestPromptBuilder_IncludesPersonaAndSections(t *testing.T) {
	b := &promptBuilder{recordLimit: 10, tokenBudget: 10000, count: wordCount}

	remote := []core.RemoteHighlight{
		{Name: "Ardbeg Wee Beastie", Distillery: "Ardbeg", Region: "Islay", Rating: 85, Summary: "Young, loud and tarry."},
	}
	out := b.build(testRecords(), remote)

	for _, want := range []string{
		"whisky cellar companion",
		"Bottles currently in the cellar:",
		"Talisker 10",
		"Benromach 15",
		"Recent reviews from other drinkers:",
		"Ardbeg Wee Beastie",
		"Young, loud and tarry.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestPromptBuilder_RecordLimitBoundsSnapshot(t *testing.T) {
	b := &promptBuilder{recordLimit: 2, tokenBudget: 10000, count: wordCount}

	out := b.build(testRecords(), nil)
	if !strings.Contains(out, "Talisker 10") || !strings.Contains(out, "Benromach 15") {
		t.Fatalf("first two records missing:\n%s", out)
	}
	if strings.Contains(out, "Millstone 100") {
		t.Errorf("record past the limit leaked into the prompt:\n%s", out)
	}
}

func TestPromptBuilder_BudgetTrimsFromTheBack(t *testing.T) {
	records := testRecords()
	header := "\n\nBottles currently in the cellar:"
	firstLine := "\n" + recordLine(records[0])

	// Budget covers the persona, the cellar header and exactly one
	// record line. The second record and the review section must not fit.
	budget := wordCount(persona) + wordCount(header) + wordCount(firstLine)
	b := &promptBuilder{recordLimit: 10, tokenBudget: budget, count: wordCount}

	remote := []core.RemoteHighlight{
		{Name: "Ardbeg Wee Beastie", Distillery: "Ardbeg", Region: "Islay", Rating: 85, Summary: "Young, loud and tarry."},
	}
	out := b.build(records, remote)

	if !strings.Contains(out, "Talisker 10") {
		t.Fatalf("first record should fit:\n%s", out)
	}
	if strings.Contains(out, "Benromach 15") {
		t.Errorf("second record should be trimmed:\n%s", out)
	}
	if strings.Contains(out, "Recent reviews") {
		t.Errorf("review section should be dropped when over budget:\n%s", out)
	}
}

func TestPromptBuilder_PersonaOnlyWhenNothingToShow(t *testing.T) {
	b := &promptBuilder{recordLimit: 5, tokenBudget: 1000, count: wordCount}

	if out := b.build(nil, nil); out != persona {
		t.Errorf("expected bare persona, got:\n%s", out)
	}
}

func TestRecordLine(t *testing.T) {
	r := core.Record{
		Name: "Clynelish 14", Distillery: "Clynelish", Region: "Highlands",
		Type: "Single Malt", Age: "14", ABV: 46, Rating: 88,
		Notes: []string{"wax", "citrus"},
		Story: "A coastal Highland staple.",
	}

	want := "- Clynelish 14 (Clynelish, Highlands): Single Malt, age 14, 46.0% ABV, rated 88/100. Notes: wax, citrus. A coastal Highland staple."
	if got := recordLine(r); got != want {
		t.Errorf("recordLine() = %q, want %q", got, want)
	}
}

func TestHighlightLine(t *testing.T) {
	h := core.RemoteHighlight{
		Name: "Ardbeg Wee Beastie", Distillery: "Ardbeg", Region: "Islay",
		Rating: 85, Summary: "Young, loud and tarry.",
	}

	want := "- Ardbeg Wee Beastie (Ardbeg, Islay), rated 85/100: Young, loud and tarry."
	if got := highlightLine(h); got != want {
		t.Errorf("highlightLine() = %q, want %q", got, want)
	}
}

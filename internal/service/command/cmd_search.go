package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/service/cellar"
)

// searchResultCap bounds command output; the engine itself is unbounded.
const searchResultCap = 10

type SearchCommand struct {
	engine    *cellar.Engine
	formatter *ResponseFormatter
}

func NewSearchCommand(engine *cellar.Engine) *SearchCommand {
	return &SearchCommand{
		engine:    engine,
		formatter: NewResponseFormatter(),
	}
}

func (c *SearchCommand) Name() string {
	return "search"
}

func (c *SearchCommand) Description() string {
	return "Search the cellar by name, region, type or tasting note"
}

func (c *SearchCommand) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Usage("/search <text>"),
			c.formatter.Examples([]string{"/search peat", "/search sherry cask"}),
		), nil
	}

	query := strings.Join(args, " ")
	records := c.engine.Search(query, cellar.Filters{})
	if len(records) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Search"),
			c.formatter.Tip(fmt.Sprintf("Nothing in the cellar matches %q.", query)),
		), nil
	}

	lines := make([]string, 0, len(records))
	for i, r := range records {
		if i == searchResultCap {
			lines = append(lines, fmt.Sprintf("and %d more", len(records)-searchResultCap))
			break
		}
		lines = append(lines, recordSummary(r))
	}

	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("%d match(es) for %q", len(records), query)),
		c.formatter.List(lines),
	), nil
}

func recordSummary(r core.Record) string {
	line := fmt.Sprintf("**%s** (%s, %s), %.1f%% ABV, rated %.0f/100", r.Name, r.Distillery, r.Region, r.ABV, r.Rating)
	if r.Provenance == core.ProvenanceAnnex {
		line += " [yours]"
	}
	return line
}

package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/drambot/internal/service/cellar"
)

type StatsCommand struct {
	engine    *cellar.Engine
	formatter *ResponseFormatter
}

func NewStatsCommand(engine *cellar.Engine) *StatsCommand {
	return &StatsCommand{
		engine:    engine,
		formatter: NewResponseFormatter(),
	}
}

func (c *StatsCommand) Name() string {
	return "stats"
}

func (c *StatsCommand) Description() string {
	return "Show cellar totals and averages"
}

func (c *StatsCommand) Execute(ctx context.Context, args []string) (string, error) {
	s := c.engine.Stats()

	meanAge := "n/a"
	if s.MeanAge > 0 {
		meanAge = fmt.Sprintf("%.1f years", s.MeanAge)
	}
	last := "never"
	if !s.LastMutation.IsZero() {
		last = s.LastMutation.Format("2006-01-02 15:04")
	}

	return c.formatter.Combine(
		c.formatter.Info("Cellar Stats"),
		c.formatter.Label("Bottles", strconv.Itoa(s.Total)),
		c.formatter.Label("Reference collection", strconv.Itoa(s.CoreCount)),
		c.formatter.Label("Your additions", strconv.Itoa(s.AnnexCount)),
		c.formatter.Label("Types", strings.Join(s.Types, ", ")),
		c.formatter.Label("Average age", meanAge),
		c.formatter.Label("Last cellar change", last),
	), nil
}

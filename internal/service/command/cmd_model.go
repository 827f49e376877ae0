package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/service/settings"
)

type ModelCommand struct {
	settings  *settings.Manager
	formatter *ResponseFormatter
}

func NewModelCommand(mgr *settings.Manager) *ModelCommand {
	return &ModelCommand{
		settings:  mgr,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show or change current model"
}

func (c *ModelCommand) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		cur := c.settings.Current()
		model := cur.Model
		if model == "" {
			model = "(provider default)"
		}
		return c.formatter.Combine(
			c.formatter.Info("Current Model"),
			c.formatter.Label("Provider", string(cur.Provider)),
			c.formatter.Label("Model", model),
			c.formatter.Usage("/model [provider]/[model]"),
			c.formatter.Examples([]string{
				"/model openai/gpt-4o-mini",
				"/model anthropic/claude-3-5-sonnet-latest",
				"/model gemini/gemini-2.0-flash",
			}),
		), nil
	}

	provider, model, ok := strings.Cut(args[0], "/")
	if !ok || provider == "" || model == "" {
		return c.formatter.Combine(
			c.formatter.Usage("/model [provider]/[model]"),
			c.formatter.Examples([]string{"/model openai/gpt-4o-mini"}),
		), nil
	}

	p := core.Provider(strings.ToLower(provider))
	next, err := c.settings.Update(ctx, settings.Patch{Provider: &p, Model: &model})
	if err != nil {
		return "", fmt.Errorf("failed to set model: %w", err)
	}

	return c.formatter.Success(fmt.Sprintf("Model changed to: `%s/%s`", next.Provider, next.Model)), nil
}

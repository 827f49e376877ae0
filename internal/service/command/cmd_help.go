package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/sandevgo/drambot/internal/core"
)

type HelpCommand struct {
	commands  func() []core.Command
	formatter *ResponseFormatter
}

// NewHelpCommand takes a closure so the list can include commands
// registered after this one.
func NewHelpCommand(commands func() []core.Command) *HelpCommand {
	return &HelpCommand{
		commands:  commands,
		formatter: NewResponseFormatter(),
	}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "List available commands"
}

func (c *HelpCommand) Execute(ctx context.Context, args []string) (string, error) {
	cmds := append([]core.Command(nil), c.commands()...)
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })

	lines := make([]string, len(cmds))
	for i, cmd := range cmds {
		lines[i] = fmt.Sprintf("`/%s`  %s", cmd.Name(), cmd.Description())
	}

	return c.formatter.Combine(
		c.formatter.Info("Commands"),
		c.formatter.List(lines),
		c.formatter.Tip(fmt.Sprintf("Anything without a leading / goes straight to %s.", core.DramName)),
	), nil
}

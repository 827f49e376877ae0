package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/drambot/internal/core"
)

type Router struct {
	commands map[string]core.Command
}

func New(commands []core.Command) *Router {
	r := &Router{
		commands: make(map[string]core.Command, len(commands)),
	}

	for _, cmd := range commands {
		r.commands[cmd.Name()] = cmd
	}
	return r
}

// Execute runs the command named by input. The second return is false when
// the input is not a slash command and should go to the conversation
// instead. Command names match case-insensitively.
func (r *Router) Execute(ctx context.Context, input string) (string, bool) {
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	cmd, ok := r.commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command: /%s. Try /help.", name), true
	}

	result, err := cmd.Execute(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return result, true
}

func (r *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		res = append(res, cmd)
	}
	return res
}

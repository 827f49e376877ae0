package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/drambot/internal/service/chat"
)

type ClearCommand struct {
	session   *chat.Session
	formatter *ResponseFormatter
}

func NewClearCommand(session *chat.Session) *ClearCommand {
	return &ClearCommand{
		session:   session,
		formatter: NewResponseFormatter(),
	}
}

func (c *ClearCommand) Name() string {
	return "clear"
}

func (c *ClearCommand) Description() string {
	return "Wipe the conversation history"
}

func (c *ClearCommand) Execute(ctx context.Context, args []string) (string, error) {
	if err := c.session.Clear(ctx); err != nil {
		return "", fmt.Errorf("failed to clear conversation: %w", err)
	}
	return c.formatter.Success("Conversation cleared"), nil
}

package core

import "context"

// CmdRouter dispatches slash commands typed into the chat transport. There
// is a single local conversation, so commands carry no session routing.
type CmdRouter interface {
	Execute(ctx context.Context, input string) (string, bool)
	ListCommands() []Command
}

// Command is one slash command. Name is matched without the leading
// slash; args arrive already split on whitespace.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args []string) (string, error)
}

package command

import (
	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/service/cellar"
	"github.com/sandevgo/drambot/internal/service/chat"
	"github.com/sandevgo/drambot/internal/service/settings"
)

func NewCommands(
	session *chat.Session,
	engine *cellar.Engine,
	mgr *settings.Manager,
	exportDir string,
) []core.Command {
	cmds := []core.Command{
		NewClearCommand(session),
		NewExportCommand(session, exportDir),
		NewSearchCommand(engine),
		NewStatsCommand(engine),
		NewModelCommand(mgr),
	}
	cmds = append(cmds, NewHelpCommand(func() []core.Command { return cmds }))
	return cmds
}

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/drambot/internal/service/chat"
)

type ExportCommand struct {
	session   *chat.Session
	dir       string
	formatter *ResponseFormatter
}

// NewExportCommand writes transcript files into dir.
func NewExportCommand(session *chat.Session, dir string) *ExportCommand {
	return &ExportCommand{
		session:   session,
		dir:       dir,
		formatter: NewResponseFormatter(),
	}
}

func (c *ExportCommand) Name() string {
	return "export"
}

func (c *ExportCommand) Description() string {
	return "Save the conversation to a file (md, html or json)"
}

func (c *ExportCommand) Execute(ctx context.Context, args []string) (string, error) {
	format := "md"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	tr := c.session.Export()
	if len(tr.Messages) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Export"),
			c.formatter.Tip("Nothing to export yet. Say something first."),
		), nil
	}

	var data []byte
	switch format {
	case "md", "markdown":
		format = "md"
		data = []byte(chat.TranscriptMarkdown(tr))
	case "html":
		data = []byte(chat.TranscriptHTML(tr))
	case "json":
		var err error
		data, err = json.MarshalIndent(tr, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode transcript: %w", err)
		}
	default:
		return c.formatter.Combine(
			c.formatter.Usage("/export [md|html|json]"),
			c.formatter.Examples([]string{"/export", "/export html"}),
		), nil
	}

	name := fmt.Sprintf("dram-transcript-%s.%s", tr.ExportedAt.Format("20060102-150405"), format)
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}

	return c.formatter.Combine(
		c.formatter.Success("Transcript saved"),
		c.formatter.Label("File", path),
	), nil
}

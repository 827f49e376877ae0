package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/pkg/conv"
)

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s conversation</title>
</head>
<body>
%s</body>
</html>
`

// TranscriptMarkdown renders an exported conversation as a markdown
// document, one section per message.
func TranscriptMarkdown(tr core.Transcript) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s conversation\n\nExported %s.\n", core.DramName, tr.ExportedAt.Format(time.RFC1123))

	for _, m := range tr.Messages {
		body := m.Content
		if m.Pending {
			body = "_(awaiting reply)_"
		}
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", roleLabel(m.Role), body)
	}
	return sb.String()
}

// TranscriptHTML renders the markdown export through the sanitizing
// HTML pipeline and wraps it in a standalone page.
func TranscriptHTML(tr core.Transcript) string {
	body := conv.MarkdownToHTML([]byte(TranscriptMarkdown(tr)))
	return fmt.Sprintf(htmlShell, core.DramName, body)
}

func roleLabel(role string) string {
	switch role {
	case core.RoleUser:
		return "You"
	case core.RoleAssistant:
		return core.DramName
	default:
		return role
	}
}

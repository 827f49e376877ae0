package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/drambot/internal/core"
)

func exportFixture() core.Transcript {
	return core.Transcript{
		ExportedAt: time.Date(2026, 8, 25, 19, 30, 0, 0, time.UTC),
		Messages: []core.ChatMessage{
			{ID: "01A", Role: core.RoleUser, Content: "what pairs with blue cheese?"},
			{ID: "01B", Role: core.RoleAssistant, Content: "A sweet, sherried dram. **Glenfarclas** works."},
		},
	}
}

func TestTranscriptMarkdown(t *testing.T) {
	md := TranscriptMarkdown(exportFixture())

	for _, want := range []string{
		"# DramBot conversation",
		"Exported Tue, 25 Aug 2026 19:30:00 UTC.",
		"## You",
		"what pairs with blue cheese?",
		"## DramBot",
		"**Glenfarclas**",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown export missing %q:\n%s", want, md)
		}
	}

	if you := strings.Index(md, "## You"); you > strings.Index(md, "## DramBot") {
		t.Error("messages rendered out of order")
	}
}

func TestTranscriptMarkdown_PendingPlaceholder(t *testing.T) {
	tr := exportFixture()
	tr.Messages = append(tr.Messages, core.ChatMessage{ID: "01C", Role: core.RoleAssistant, Pending: true})

	md := TranscriptMarkdown(tr)
	if !strings.Contains(md, "_(awaiting reply)_") {
		t.Errorf("pending placeholder not rendered:\n%s", md)
	}
}

func TestTranscriptHTML_SanitizesContent(t *testing.T) {
	tr := exportFixture()
	tr.Messages[0].Content = "look at this <script>alert('xss')</script> trick"

	out := TranscriptHTML(tr)

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("export is not a standalone page")
	}
	for _, want := range []string{
		"<title>DramBot conversation</title>",
		"<h2>You</h2>",
		"<h2>DramBot</h2>",
		"<strong>Glenfarclas</strong>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html export missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<script>") || strings.Contains(out, "alert(") {
		t.Errorf("script content leaked into export:\n%s", out)
	}
}

package conv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	docPolicy  = bluemonday.UGCPolicy()
)

func init() {
	docPolicy.AllowAttrs("class").OnElements("code")
}

// MarkdownToHTML renders markdown into HTML fit for a saved document.
// Raw HTML smuggled into the source survives only as far as the
// sanitizer allows, so script and event-handler content never reaches
// the output.
func MarkdownToHTML(md []byte) string {
	// 1. Render HTML
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	// 2. Sanitize tags
	sanitized := docPolicy.SanitizeBytes(unsafeHTML)

	return string(sanitized)
}

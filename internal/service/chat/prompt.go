package chat

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/drambot/internal/core"
)

// persona is the static voice of the assistant. Everything else in the
// system prompt is live cellar context appended below it.
const persona = `You are DramBot, a whisky cellar companion. You help the user
explore their collection, compare drams and decide what to pour next.
Speak plainly and keep answers short. When the cellar snapshot below is
relevant, lean on it; when it is not, say so instead of inventing
bottles, ages or ratings.`

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

func countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}

// promptBuilder assembles the system prompt from the persona and the
// cellar snapshot, keeping the result inside a token budget so the prompt
// cannot grow without bound as the cellar does.
type promptBuilder struct {
	recordLimit int
	tokenBudget int
	count       func(string) int
}

func newPromptBuilder(recordLimit, tokenBudget int) *promptBuilder {
	return &promptBuilder{
		recordLimit: recordLimit,
		tokenBudget: tokenBudget,
		count:       countTokens,
	}
}

func (b *promptBuilder) build(records []core.Record, remote []core.RemoteHighlight) string {
	var sb strings.Builder
	sb.WriteString(persona)
	used := b.count(persona)

	if len(records) > b.recordLimit {
		records = records[:b.recordLimit]
	}
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, recordLine(r))
	}
	used = b.appendSection(&sb, used, "Bottles currently in the cellar:", lines)

	reviews := make([]string, 0, len(remote))
	for _, h := range remote {
		reviews = append(reviews, highlightLine(h))
	}
	b.appendSection(&sb, used, "Recent reviews from other drinkers:", reviews)

	return sb.String()
}

// appendSection writes the header and as many lines as fit in what is
// left of the budget. Lines are consumed in order, so the most recent
// records survive trimming. A section whose header plus first line does
// not fit is dropped whole.
func (b *promptBuilder) appendSection(sb *strings.Builder, used int, header string, lines []string) int {
	if len(lines) == 0 {
		return used
	}

	head := "\n\n" + header
	if used+b.count(head)+b.count("\n"+lines[0]) > b.tokenBudget {
		return used
	}
	sb.WriteString(head)
	used += b.count(head)

	for _, line := range lines {
		text := "\n" + line
		cost := b.count(text)
		if used+cost > b.tokenBudget {
			break
		}
		sb.WriteString(text)
		used += cost
	}
	return used
}

func recordLine(r core.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- %s (%s, %s): %s, age %s, %.1f%% ABV, rated %.0f/100.",
		r.Name, r.Distillery, r.Region, r.Type, r.Age, r.ABV, r.Rating)
	if len(r.Notes) > 0 {
		fmt.Fprintf(&sb, " Notes: %s.", strings.Join(r.Notes, ", "))
	}
	if r.Story != "" {
		fmt.Fprintf(&sb, " %s", r.Story)
	}
	return sb.String()
}

func highlightLine(h core.RemoteHighlight) string {
	line := fmt.Sprintf("- %s (%s, %s), rated %.0f/100", h.Name, h.Distillery, h.Region, h.Rating)
	if h.Summary != "" {
		line += ": " + h.Summary
	}
	return line
}

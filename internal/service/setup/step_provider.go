package setup

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/drambot/internal/core"
)

// ProviderStep selects the chat backend.
type ProviderStep struct {
	labels []string
	values []core.Provider
	cursor int
}

func NewProviderStep() Step {
	return &ProviderStep{
		labels: []string{"OpenAI", "Anthropic", "Gemini", "Relay (a shared DramBot server)"},
		values: []core.Provider{
			core.ProviderOpenAI,
			core.ProviderAnthropic,
			core.ProviderGemini,
			core.ProviderRelay,
		},
	}
}

func (s *ProviderStep) Init() tea.Cmd {
	return nil
}

func (s *ProviderStep) Update(msg tea.Msg, state *State, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.labels)-1 {
				s.cursor++
			}
		case "enter":
			state.Provider = s.values[s.cursor]
			return nil, nil
		}
	}
	return s, nil
}

func (s *ProviderStep) View(state *State) string {
	var b strings.Builder
	b.WriteString("Select your chat provider:\n\n")
	for i, label := range s.labels {
		cursor := " "
		if s.cursor == i {
			cursor = "❯"
			b.WriteString(selStyle.Render(fmt.Sprintf("%s %s", cursor, label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("%s %s", cursor, label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}

package setup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/drambot/internal/core"
)

// ModelStep picks the model id sent to the provider. Leaving it blank
// keeps the provider's default.
type ModelStep struct {
	input    textinput.Model
	provider core.Provider
}

func NewModelStep() Step {
	return &ModelStep{}
}

func (s *ModelStep) Init() tea.Cmd {
	return nil
}

func (s *ModelStep) initProvider(state *State) bool {
	if state.Provider == "" {
		return false
	}
	s.provider = state.Provider

	s.input = textinput.New()
	s.input.Focus()
	s.input.CharLimit = 128
	s.input.Width = 40

	switch s.provider {
	case core.ProviderOpenAI:
		s.input.Placeholder = "gpt-4o-mini"
	case core.ProviderAnthropic:
		s.input.Placeholder = "claude-3-5-sonnet-latest"
	case core.ProviderGemini:
		s.input.Placeholder = "gemini-2.0-flash"
	case core.ProviderRelay:
		s.input.Placeholder = "press Enter to skip (the server chooses)"
	default:
		return false
	}
	return true
}

func (s *ModelStep) Update(msg tea.Msg, state *State, width, height int) (Step, tea.Cmd) {
	if s.provider == "" {
		if !s.initProvider(state) {
			return nil, nil
		}
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			state.Model = strings.TrimSpace(s.input.Value())
			return nil, nil
		}
	}
	return s, cmd
}

func (s *ModelStep) View(state *State) string {
	if s.provider == "" {
		if !s.initProvider(state) {
			return "Loading..."
		}
	}

	return fmt.Sprintf("Model for %s (press Enter for the default):\n\n%s\n", s.provider, s.input.View())
}

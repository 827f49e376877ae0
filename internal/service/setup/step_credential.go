package setup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/drambot/internal/core"
)

// CredentialStep collects the provider credential. It configures itself
// lazily because the provider is not known until the previous step ran.
type CredentialStep struct {
	input    textinput.Model
	provider core.Provider
	title    string
}

func NewCredentialStep() Step {
	return &CredentialStep{}
}

func (s *CredentialStep) Init() tea.Cmd {
	return nil
}

func (s *CredentialStep) initProvider(state *State) bool {
	if state.Provider == "" {
		return false
	}
	s.provider = state.Provider

	s.input = textinput.New()
	s.input.Focus()
	s.input.CharLimit = 255
	s.input.Width = 40
	s.input.EchoMode = textinput.EchoPassword
	s.input.EchoCharacter = '•'

	switch s.provider {
	case core.ProviderOpenAI:
		s.title = "OpenAI API Key"
		s.input.Placeholder = "sk-..."
	case core.ProviderAnthropic:
		s.title = "Anthropic API Key"
		s.input.Placeholder = "sk-ant-..."
	case core.ProviderGemini:
		s.title = "Gemini API Key"
		s.input.Placeholder = "AIza..."
	case core.ProviderRelay:
		s.title = "Relay Access Token"
		s.input.Placeholder = "token from your DramBot server"
	default:
		return false
	}
	return true
}

func (s *CredentialStep) Update(msg tea.Msg, state *State, width, height int) (Step, tea.Cmd) {
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
			value := strings.TrimSpace(s.input.Value())
			if value == "" {
				// A credential is required; stay on this screen.
				return s, cmd
			}
			state.Credential = value
			return nil, nil
		}
	}
	return s, cmd
}

func (s *CredentialStep) View(state *State) string {
	if s.provider == "" {
		if !s.initProvider(state) {
			return "Loading..."
		}
	}

	return fmt.Sprintf("Enter your %s:\n\n%s\n\n(press enter to confirm)\n", s.title, s.input.View())
}

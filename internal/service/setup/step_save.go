package setup

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// SaveStep hands the collected state to the caller's save function.
type SaveStep struct {
	save  SaveFunc
	err   error
	saved bool
}

func NewSaveStep(save SaveFunc) Step {
	return &SaveStep{save: save}
}

func (s *SaveStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveStep) Update(msg tea.Msg, state *State, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		// Stay on the error screen until the user quits.
		return s, nil
	}

	if err := s.save(state); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveStep) View(state *State) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

package setup

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// StorageStep selects where the local store lives.
type StorageStep struct {
	labels []string
	values []string
	cursor int
}

func NewStorageStep() Step {
	return &StorageStep{
		labels: []string{"File (single JSON document)", "SQLite (runtime database)"},
		values: []string{"file", "sqlite"},
	}
}

func (s *StorageStep) Init() tea.Cmd {
	return nil
}

func (s *StorageStep) Update(msg tea.Msg, state *State, width, height int) (Step, tea.Cmd) {
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
			state.Backend = s.values[s.cursor]
			return nil, nil
		}
	}
	return s, nil
}

func (s *StorageStep) View(state *State) string {
	var b strings.Builder
	b.WriteString("Where should DramBot keep its data?\n\n")
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

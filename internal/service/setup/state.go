package setup

import "github.com/sandevgo/drambot/internal/core"

// State accumulates the choices made across wizard steps.
type State struct {
	Provider   core.Provider
	Credential string
	Model      string
	Backend    string
}

// SaveFunc persists a finished State. The wizard owns the screens, the
// caller owns the wiring: the backend choice in State may require a
// different store than the one the process started with.
type SaveFunc func(*State) error

func NewState() *State {
	return &State{}
}

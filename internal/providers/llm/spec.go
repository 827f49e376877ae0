package llm

import (
	"encoding/json"

	"github.com/sandevgo/drambot/internal/core"
)

// ProviderSpec is one provider variant: where to send a chat request, how
// to shape its body, and how to read the reply back out. Every envelope
// difference between providers lives behind these fields, so the session
// never inspects response shapes itself.
type ProviderSpec struct {
	Name         core.Provider
	BaseURL      string
	DefaultModel string

	// Path builds the request path for the chosen model. Most providers
	// ignore the model here and carry it in the body instead.
	Path func(model string) string

	Headers       func(credential string) map[string]string
	BuildBody     func(model string, req core.ChatRequest) any
	ParseResponse func(data []byte) (string, error)
}

// extractErrorMessage digs a human-readable message out of a provider
// error body. Providers wrap it differently; fall back to the raw body.
func extractErrorMessage(data []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}

	return string(data)
}

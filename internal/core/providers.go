package core

import "context"

// Provider identifies which chat backend the session talks to.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"

	// ProviderRelay sends the conversation to a DramBot server instead of
	// a vendor API. The server holds its own provider credentials.
	ProviderRelay Provider = "relay"
)

// KnownProviders is the closed set accepted by settings validation.
var KnownProviders = map[Provider]bool{
	ProviderOpenAI:    true,
	ProviderAnthropic: true,
	ProviderGemini:    true,
	ProviderRelay:     true,
}

// ChatRequest carries everything a provider needs for a single completion.
// System travels separately from Messages because providers disagree on
// where the system prompt lives in the wire envelope.
type ChatRequest struct {
	System      string
	Messages    []ChatMessage
	Model       string
	Temperature float64
	MaxTokens   int
}

// ChatClient produces one assistant reply for a conversation. Implementations
// must honor ctx cancellation and return the reply text with surrounding
// whitespace trimmed.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

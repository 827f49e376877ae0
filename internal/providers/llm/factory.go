package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/pkg/log"
)

// SpecFor maps a provider enum value to its wire variant. relayBaseURL is
// only consulted for the relay variant.
func SpecFor(provider core.Provider, relayBaseURL string) (ProviderSpec, error) {
	switch provider {
	case core.ProviderOpenAI:
		return openAISpec(), nil
	case core.ProviderAnthropic:
		return anthropicSpec(), nil
	case core.ProviderGemini:
		return geminiSpec(), nil
	case core.ProviderRelay:
		if relayBaseURL == "" {
			return ProviderSpec{}, fmt.Errorf("relay provider requires a server URL")
		}
		return relaySpec(relayBaseURL), nil
	default:
		return ProviderSpec{}, fmt.Errorf("unknown llm provider: %s", provider)
	}
}

// NewProvider creates the chat client for the given variant.
func NewProvider(ctx context.Context, spec ProviderSpec, credential, model string) core.ChatClient {
	if model == "" {
		model = spec.DefaultModel
	}

	log.FromCtx(ctx).Info().
		Str("provider", string(spec.Name)).
		Str("model", model).
		Msg("starting llm provider")

	return NewClient(spec, credential, model)
}

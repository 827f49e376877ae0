package llm

import (
	"encoding/json"
	"fmt"

	"github.com/sandevgo/drambot/internal/core"
)

// relaySpec targets a DramBot server's chat endpoint. The server picks the
// model and holds the vendor credentials, so the envelope stays minimal.
func relaySpec(baseURL string) ProviderSpec {
	return ProviderSpec{
		Name:    core.ProviderRelay,
		BaseURL: baseURL,
		Path: func(string) string {
			return "/api/chat"
		},
		Headers: func(credential string) map[string]string {
			if credential == "" {
				return nil
			}
			return map[string]string{
				"Authorization": "Bearer " + credential,
			}
		},
		BuildBody: func(_ string, req core.ChatRequest) any {
			type msg struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			}

			messages := make([]msg, 0, len(req.Messages))
			for _, m := range req.Messages {
				messages = append(messages, msg{Role: m.Role, Content: m.Content})
			}

			return map[string]any{
				"messages":     messages,
				"systemPrompt": req.System,
			}
		},
		ParseResponse: func(data []byte) (string, error) {
			var result struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal(data, &result); err != nil {
				return "", fmt.Errorf("decode: %w", err)
			}
			if result.Content == "" {
				return "", fmt.Errorf("empty content: %s", string(data))
			}
			return result.Content, nil
		},
	}
}

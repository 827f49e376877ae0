package llm

import (
	"encoding/json"
	"fmt"

	"github.com/sandevgo/drambot/internal/core"
)

func anthropicSpec() ProviderSpec {
	return ProviderSpec{
		Name:         core.ProviderAnthropic,
		BaseURL:      "https://api.anthropic.com",
		DefaultModel: "claude-3-5-haiku-latest",
		Path: func(string) string {
			return "/v1/messages"
		},
		Headers: func(credential string) map[string]string {
			return map[string]string{
				"x-api-key":         credential,
				"anthropic-version": "2023-06-01",
			}
		},
		BuildBody: func(model string, req core.ChatRequest) any {
			type msg struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			}

			// The system prompt rides in its own top-level field here,
			// never in the messages array.
			var messages []msg
			for _, m := range req.Messages {
				if m.Role == core.RoleSystem {
					continue
				}
				messages = append(messages, msg{Role: m.Role, Content: m.Content})
			}

			body := map[string]any{
				"model":       model,
				"max_tokens":  req.MaxTokens,
				"temperature": req.Temperature,
				"messages":    messages,
			}
			if req.System != "" {
				body["system"] = req.System
			}
			return body
		},
		ParseResponse: func(data []byte) (string, error) {
			var result struct {
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			}
			if err := json.Unmarshal(data, &result); err != nil {
				return "", fmt.Errorf("decode: %w", err)
			}

			var text string
			for _, c := range result.Content {
				if c.Type == "text" {
					text += c.Text
				}
			}
			return text, nil
		},
	}
}

package llm

import (
	"encoding/json"
	"fmt"

	"github.com/sandevgo/drambot/internal/core"
)

func openAISpec() ProviderSpec {
	return ProviderSpec{
		Name:         core.ProviderOpenAI,
		BaseURL:      "https://api.openai.com",
		DefaultModel: "gpt-4o-mini",
		Path: func(string) string {
			return "/v1/chat/completions"
		},
		Headers: func(credential string) map[string]string {
			return map[string]string{
				"Authorization": "Bearer " + credential,
			}
		},
		BuildBody: func(model string, req core.ChatRequest) any {
			type msg struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			}

			messages := make([]msg, 0, len(req.Messages)+1)
			if req.System != "" {
				messages = append(messages, msg{Role: core.RoleSystem, Content: req.System})
			}
			for _, m := range req.Messages {
				messages = append(messages, msg{Role: m.Role, Content: m.Content})
			}

			return map[string]any{
				"model":       model,
				"messages":    messages,
				"temperature": req.Temperature,
				"max_tokens":  req.MaxTokens,
			}
		},
		ParseResponse: func(data []byte) (string, error) {
			var result struct {
				Choices []struct {
					Message struct {
						Content string `json:"content"`
					} `json:"message"`
				} `json:"choices"`
			}
			if err := json.Unmarshal(data, &result); err != nil {
				return "", fmt.Errorf("decode: %w", err)
			}
			if len(result.Choices) == 0 {
				return "", fmt.Errorf("empty choices: %s", string(data))
			}
			return result.Choices[0].Message.Content, nil
		},
	}
}

package llm

import (
	"encoding/json"
	"fmt"

	"github.com/sandevgo/drambot/internal/core"
)

func geminiSpec() ProviderSpec {
	return ProviderSpec{
		Name:         core.ProviderGemini,
		BaseURL:      "https://generativelanguage.googleapis.com",
		DefaultModel: "gemini-2.0-flash",
		Path: func(model string) string {
			return fmt.Sprintf("/v1beta/models/%s:generateContent", model)
		},
		Headers: func(credential string) map[string]string {
			return map[string]string{
				"x-goog-api-key": credential,
			}
		},
		BuildBody: func(_ string, req core.ChatRequest) any {
			type part struct {
				Text string `json:"text"`
			}
			type content struct {
				Role  string `json:"role,omitempty"`
				Parts []part `json:"parts"`
			}

			// Assistant turns are role "model" here, and the system prompt
			// is a separate systemInstruction block.
			var contents []content
			for _, m := range req.Messages {
				role := m.Role
				switch role {
				case core.RoleSystem:
					continue
				case core.RoleAssistant:
					role = "model"
				}
				contents = append(contents, content{Role: role, Parts: []part{{Text: m.Content}}})
			}

			body := map[string]any{
				"contents": contents,
				"generationConfig": map[string]any{
					"temperature":     req.Temperature,
					"maxOutputTokens": req.MaxTokens,
				},
			}
			if req.System != "" {
				body["systemInstruction"] = content{Parts: []part{{Text: req.System}}}
			}
			return body
		},
		ParseResponse: func(data []byte) (string, error) {
			var result struct {
				Candidates []struct {
					Content struct {
						Parts []struct {
							Text string `json:"text"`
						} `json:"parts"`
					} `json:"content"`
				} `json:"candidates"`
			}
			if err := json.Unmarshal(data, &result); err != nil {
				return "", fmt.Errorf("decode: %w", err)
			}
			if len(result.Candidates) == 0 {
				return "", fmt.Errorf("empty candidates: %s", string(data))
			}

			var text string
			for _, p := range result.Candidates[0].Content.Parts {
				text += p.Text
			}
			return text, nil
		},
	}
}

package core

import "time"

const (
	DramName          = "DramBot"
	DramUserAgent     = "DramBot-Agent/0.1"
	DramRepositoryURL = "https://github.com/sandevgo/drambot"
	DramVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry in the conversation log.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	// Pending marks the transient placeholder shown while a response is in
	// flight. The log holds at most one pending message at any time.
	Pending bool `json:"pending,omitempty"`
}

// Transcript is a point-in-time export of the conversation log.
type Transcript struct {
	ExportedAt time.Time     `json:"exported_at"`
	Messages   []ChatMessage `json:"messages"`
}

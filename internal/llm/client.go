// Package llm provides interfaces and implementations for the inference service.
// Every caller must treat an error or unparsable answer as "unavailable" and
// fall back to a deterministic path; the engine never depends on a reachable
// inference endpoint.
package llm

import (
	"context"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for inference providers.
type Client interface {
	// Chat sends messages and returns the raw text response.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON sends messages and parses the response as JSON into result.
	ChatJSON(ctx context.Context, messages []Message, result any) error
}

// System and User build messages for the common two-part prompt shape.
func System(content string) Message { return Message{Role: "system", Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: "user", Content: content} }

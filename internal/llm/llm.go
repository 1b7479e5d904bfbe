// Package llm is the port to the external text-generation provider.
package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyReply is returned when the provider answers with no choices.
var ErrEmptyReply = errors.New("empty reply from model")

// Role of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion call. ImageDataURL, when set, is attached to
// the last user message.
type Request struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	Messages     []Message
	ImageDataURL string
}

// Generator maps a prompt to free text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// StripCodeFence removes a surrounding ```/```json fence that models
// sometimes add around JSON answers.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Package coach builds coaching prompts and runs the conversational coach.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/omarshanyour/nutrimind-backend/internal/keylock"
	"github.com/omarshanyour/nutrimind-backend/internal/llm"

	log "github.com/sirupsen/logrus"
)

// ErrEmptyMessage rejects blank user messages.
var ErrEmptyMessage = errors.New("message is empty")

const (
	chatMaxTokens    = 350
	quickTemperature = 0.65

	// DefaultChatTemperature is the provider's default sampling temperature.
	DefaultChatTemperature = 1.0

	fallbackReply      = "I understood your question, but couldn't put my answer together properly. Try asking again a bit differently."
	quickFallbackReply = "My mind blanked for a second. Ask again?"
	repeatDisclaimer   = "\n\n(Switching it up so I'm not just repeating myself. Want to come at this from another angle?)"
)

const quickSystemPrompt = `You are NutriMind, a clear, simple and very smart performance coach.

Rules:
- Keep answers short, readable and friendly.
- 2-4 paragraphs at most, or clean bullet points.
- Give real examples: food amounts, timing, simple student meals.
- Use the baseline and last 7 days quietly; do not repeat them back.
- No emojis and no giant paragraphs.
- If anything sounds medical, tell them to talk to a professional.

Use the JSON below privately to guide your answer:

`

// Coach answers chat messages with per-session memory.
type Coach struct {
	gen         llm.Generator
	transcripts TranscriptStore
	chatModel   string
	quickModel  string

	chatTemperature float64
	locks           *keylock.Striped
}

// Option customises a Coach.
type Option func(*Coach)

// WithChatTemperature sets the sampling temperature of conversational replies.
func WithChatTemperature(t float64) Option {
	return func(c *Coach) {
		c.chatTemperature = t
	}
}

// New creates a coach. chatModel serves the conversational coach and
// quickModel the single-turn variant.
func New(gen llm.Generator, transcripts TranscriptStore, chatModel, quickModel string, opts ...Option) *Coach {
	c := &Coach{
		gen:             gen,
		transcripts:     transcripts,
		chatModel:       chatModel,
		quickModel:      quickModel,
		chatTemperature: DefaultChatTemperature,
		locks:           keylock.New(keylock.DefaultStripes),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reply records message in the session transcript, asks the model with the
// personalized system prompt and the last MaxTranscript messages, and stores
// the answer. A reply identical to the previous assistant reply gets a short
// disclaimer appended. Turns within one session run one at a time.
func (c *Coach) Reply(ctx context.Context, sessionID, message string, profile *Profile, recent []DaySummary) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	defer c.locks.Lock(sessionID)()

	history, err := c.transcripts.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}

	userMsg := llm.Message{Role: llm.RoleUser, Content: message}
	if err := c.transcripts.Append(ctx, sessionID, userMsg); err != nil {
		return "", err
	}
	history = append(history, userMsg)
	if len(history) > MaxTranscript {
		history = history[len(history)-MaxTranscript:]
	}

	input := make([]llm.Message, 0, len(history)+1)
	input = append(input, llm.Message{Role: llm.RoleSystem, Content: BuildSystemPrompt(profile, recent)})
	input = append(input, history...)

	reply, err := c.gen.Generate(ctx, llm.Request{
		Model:       c.chatModel,
		Temperature: c.chatTemperature,
		MaxTokens:   chatMaxTokens,
		Messages:    input,
	})
	if err != nil {
		return "", fmt.Errorf("coach reply: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = fallbackReply
	}

	if last, ok := lastAssistant(history); ok && last == reply {
		log.Debugf("[coach] session %s: repeated reply, adding disclaimer", sessionID)
		reply += repeatDisclaimer
	}

	if err := c.transcripts.Append(ctx, sessionID, llm.Message{Role: llm.RoleAssistant, Content: reply}); err != nil {
		return "", err
	}
	return reply, nil
}

func lastAssistant(history []llm.Message) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == llm.RoleAssistant {
			return history[i].Content, true
		}
	}
	return "", false
}

// QuickContext is the structured context passed to Quick as JSON.
type QuickContext struct {
	Baseline  any `json:"baseline"`
	Today     any `json:"today"`
	Last7Days any `json:"last7Days"`
}

// Quick answers a single message without session memory, with the context
// embedded as indented JSON in the system prompt.
func (c *Coach) Quick(ctx context.Context, message string, qc QuickContext) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	if qc.Baseline == nil {
		qc.Baseline = map[string]any{}
	}
	if qc.Today == nil {
		qc.Today = map[string]any{}
	}
	if qc.Last7Days == nil {
		qc.Last7Days = []any{}
	}

	ctxJSON, err := json.MarshalIndent(qc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode quick context: %w", err)
	}

	reply, err := c.gen.Generate(ctx, llm.Request{
		Model:       c.quickModel,
		Temperature: quickTemperature,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: quickSystemPrompt + string(ctxJSON) + "\n"},
			{Role: llm.RoleUser, Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("quick coach reply: %w", err)
	}
	if reply = strings.TrimSpace(reply); reply == "" {
		reply = quickFallbackReply
	}
	return reply, nil
}

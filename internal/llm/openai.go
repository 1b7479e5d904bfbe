package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	langopenai "github.com/tmc/langchaingo/llms/openai"
)

// DefaultBaseURL is the public OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// OpenAI talks to any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	model   *langopenai.LLM
	timeout time.Duration
}

// NewOpenAI builds the adapter. token must be non-empty; callers treat a
// missing key as a configuration error before getting here.
func NewOpenAI(token, baseURL, defaultModel string, timeout time.Duration, httpClient *http.Client) (*OpenAI, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts := []langopenai.Option{
		langopenai.WithToken(token),
		langopenai.WithModel(defaultModel),
		langopenai.WithBaseURL(strings.TrimSuffix(baseURL, "/")),
	}
	if httpClient != nil {
		opts = append(opts, langopenai.WithHTTPClient(httpClient))
	}
	model, err := langopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &OpenAI{model: model, timeout: timeout}, nil
}

// Generate sends the request and returns the first choice's trimmed text.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	callOpts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.Model != "" {
		callOpts = append(callOpts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}

	resp, err := o.model.GenerateContent(ctx, toMessageContent(req), callOpts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func toMessageContent(req Request) []llms.MessageContent {
	lastUser := -1
	if req.ImageDataURL != "" {
		for i, m := range req.Messages {
			if m.Role == RoleUser {
				lastUser = i
			}
		}
	}

	out := make([]llms.MessageContent, 0, len(req.Messages))
	for i, m := range req.Messages {
		if i == lastUser {
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeHuman,
				Parts: []llms.ContentPart{
					llms.ImageURLPart(req.ImageDataURL),
					llms.TextPart(m.Content),
				},
			})
			continue
		}
		out = append(out, llms.TextParts(chatType(m.Role), m.Content))
	}
	return out
}

func chatType(r Role) llms.ChatMessageType {
	switch r {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

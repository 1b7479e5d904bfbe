package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"kcal": 500}`, `{"kcal": 500}`},
		{"```json\n{\"kcal\": 500}\n```", `{"kcal": 500}`},
		{"```JSON\n{\"kcal\": 500}\n```", `{"kcal": 500}`},
		{"```\n{\"kcal\": 500}\n```", `{"kcal": 500}`},
		{"  ```json {\"kcal\": 1}```  ", `{"kcal": 1}`},
		{"plain text with ``` inside", "plain text with ``` inside"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFence(tt.in), tt.in)
	}
}

func TestToMessageContent_AttachesImageToLastUserTurn(t *testing.T) {
	req := Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "first"},
			{Role: RoleAssistant, Content: "reply"},
			{Role: RoleUser, Content: "Estimate this meal."},
		},
		ImageDataURL: "data:image/png;base64,AAAA",
	}

	out := toMessageContent(req)
	require.Len(t, out, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, out[0].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, out[2].Role)
	assert.Len(t, out[1].Parts, 1)

	require.Len(t, out[3].Parts, 2)
	img, ok := out[3].Parts[0].(llms.ImageURLContent)
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAAA", img.URL)
	text, ok := out[3].Parts[1].(llms.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Estimate this meal.", text.Text)
}

// setupOpenAIMock starts a fake chat completions endpoint that records the
// last request body and answers with content.
func setupOpenAIMock(t *testing.T, content string) (*httptest.Server, *string) {
	t.Helper()
	var lastBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		lastBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",`+
			`"choices":[{"index":0,"message":{"role":"assistant","content":`+content+`},"finish_reason":"stop"}],`+
			`"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &lastBody
}

func TestOpenAI_Generate(t *testing.T) {
	srv, lastBody := setupOpenAIMock(t, `"  Eat more rice.  "`)

	gen, err := NewOpenAI("test-key", srv.URL+"/v1", "gpt-4o-mini", 5*time.Second, srv.Client())
	require.NoError(t, err)

	reply, err := gen.Generate(context.Background(), Request{
		Model:     "gpt-4o-mini",
		MaxTokens: 350,
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a coach"},
			{Role: RoleUser, Content: "what should I eat"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Eat more rice.", reply)
	assert.Contains(t, *lastBody, "You are a coach")
	assert.Contains(t, *lastBody, "what should I eat")
	assert.Contains(t, *lastBody, "gpt-4o-mini")
}

func TestOpenAI_GenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	gen, err := NewOpenAI("test-key", srv.URL, "gpt-4o-mini", 5*time.Second, srv.Client())
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	assert.Error(t, err)
}

func TestGeneratorFunc(t *testing.T) {
	var g Generator = GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		return req.Messages[0].Content, nil
	})
	out, err := g.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "echo"}}})
	require.NoError(t, err)
	assert.Equal(t, "echo", out)
}

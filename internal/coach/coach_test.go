package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/omarshanyour/nutrimind-backend/internal/llm"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

// scriptedGenerator returns replies in order and records every request.
type scriptedGenerator struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []llm.Request
}

func (g *scriptedGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "ok", nil
	}
	r := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return r, nil
}

func (g *scriptedGenerator) last() llm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

/* ─── Prompt ─────────────────────────────────────────────────────────── */

func TestBuildSystemPrompt_BaseOnly(t *testing.T) {
	p := BuildSystemPrompt(nil, nil)
	assert.Equal(t, baseSystemPrompt, p)
	assert.NotContains(t, p, "User profile")
	assert.NotContains(t, p, "Recent log")
}

func TestBuildSystemPrompt_Profile(t *testing.T) {
	p := BuildSystemPrompt(&Profile{
		Name:                "Sam",
		Sport:               "Track",
		BodyweightLbs:       155,
		TrainingDaysPerWeek: 4,
		CalorieTarget:       2170,
		ProteinLow:          109,
		ProteinHigh:         155,
	}, nil)

	assert.Contains(t, p, "- Name: Sam")
	assert.Contains(t, p, "- Identity: Unknown")
	assert.Contains(t, p, "- Body data: 155 lb, ? cm")
	assert.Contains(t, p, "- Training load: 4 days/week")
	assert.Contains(t, p, "- Target calories: 2170 kcal/day")
	assert.Contains(t, p, "- Protein target: 109-155 g/day")
	assert.Contains(t, p, "None specified")
}

func TestBuildSystemPrompt_RecentDays(t *testing.T) {
	var days []DaySummary
	for i := 1; i <= 9; i++ {
		days = append(days, DaySummary{Kcal: float64(1000 + i), Protein: float64(i)})
	}
	days[8].Label = "Today"

	p := BuildSystemPrompt(nil, days)
	assert.Contains(t, p, "Recent log")
	assert.Contains(t, p, "- Day 1: 1003 kcal, 3 g protein")
	assert.Contains(t, p, "- Today: 1009 kcal, 9 g protein")
	assert.NotContains(t, p, "1001 kcal")
	assert.Equal(t, 7, strings.Count(p, " kcal, "))
}

/* ─── Reply ──────────────────────────────────────────────────────────── */

func TestReply_StoresBothTurns(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"  Eat rice after practice.  "}}
	store := NewMemoryTranscripts()
	c := New(gen, store, "chat-model", "quick-model")

	reply, err := c.Reply(context.Background(), "s1", "what do I eat post-workout?", &Profile{Name: "Sam"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Eat rice after practice.", reply)

	req := gen.last()
	assert.Equal(t, "chat-model", req.Model)
	assert.Equal(t, 350, req.MaxTokens)
	assert.InDelta(t, DefaultChatTemperature, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "- Name: Sam")

	history, _ := store.Load(context.Background(), "s1")
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "what do I eat post-workout?"},
		{Role: llm.RoleAssistant, Content: "Eat rice after practice."},
	}, history)
}

func TestReply_ChatTemperatureOption(t *testing.T) {
	gen := &scriptedGenerator{}
	c := New(gen, NewMemoryTranscripts(), "chat-model", "quick-model", WithChatTemperature(0.4))

	_, err := c.Reply(context.Background(), "s1", "hi", nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, gen.last().Temperature, 1e-9)
}

func TestReply_RepeatGetsDisclaimer(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Drink water."}}
	c := New(gen, NewMemoryTranscripts(), "m", "m")

	first, err := c.Reply(context.Background(), "s1", "tip?", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Drink water.", first)

	second, err := c.Reply(context.Background(), "s1", "another tip?", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Drink water."+repeatDisclaimer, second)

	// Other sessions are unaffected.
	other, err := c.Reply(context.Background(), "s2", "tip?", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Drink water.", other)
}

func TestReply_EmptyReplyFallsBack(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"   "}}
	c := New(gen, NewMemoryTranscripts(), "m", "m")

	reply, err := c.Reply(context.Background(), "s1", "hello", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, reply)
}

func TestReply_WindowNeverExceedsLimit(t *testing.T) {
	gen := &scriptedGenerator{}
	store := NewMemoryTranscripts()
	c := New(gen, store, "m", "m")

	for i := 0; i < 30; i++ {
		gen.replies = []string{fmt.Sprintf("answer %d", i)}
		_, err := c.Reply(context.Background(), "s1", fmt.Sprintf("question %d", i), nil, nil)
		require.NoError(t, err)

		req := gen.last()
		assert.LessOrEqual(t, len(req.Messages)-1, MaxTranscript)
		assert.Equal(t, fmt.Sprintf("question %d", i), req.Messages[len(req.Messages)-1].Content)
	}

	history, _ := store.Load(context.Background(), "s1")
	require.Len(t, history, MaxTranscript)
	assert.Equal(t, "question 10", history[0].Content)
	assert.Equal(t, "answer 29", history[MaxTranscript-1].Content)
}

func TestReply_GeneratorErrorKeepsUserTurn(t *testing.T) {
	boom := errors.New("upstream down")
	store := NewMemoryTranscripts()
	c := New(&scriptedGenerator{err: boom}, store, "m", "m")

	_, err := c.Reply(context.Background(), "s1", "hello", nil, nil)
	assert.ErrorIs(t, err, boom)

	history, _ := store.Load(context.Background(), "s1")
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "hello"}}, history)
}

func TestReply_EmptyMessage(t *testing.T) {
	c := New(&scriptedGenerator{}, NewMemoryTranscripts(), "m", "m")
	_, err := c.Reply(context.Background(), "s1", "  ", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestReply_ConcurrentSameSession(t *testing.T) {
	store := NewMemoryTranscripts()
	c := New(&scriptedGenerator{}, store, "m", "m")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Reply(context.Background(), "s1", fmt.Sprintf("q%d", i), nil, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, _ := store.Load(context.Background(), "s1")
	require.Len(t, history, 20)
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, llm.RoleUser, history[i].Role)
		assert.Equal(t, llm.RoleAssistant, history[i+1].Role)
	}
}

/* ─── Quick ──────────────────────────────────────────────────────────── */

func TestQuick(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Have oats before practice."}}
	c := New(gen, NewMemoryTranscripts(), "chat-model", "quick-model")

	reply, err := c.Quick(context.Background(), "pre-game meal?", QuickContext{
		Baseline: map[string]any{"name": "Sam"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Have oats before practice.", reply)

	req := gen.last()
	assert.Equal(t, "quick-model", req.Model)
	assert.InDelta(t, 0.65, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[0].Content, `"name": "Sam"`)
	assert.Contains(t, req.Messages[0].Content, `"today": {}`)
	assert.Contains(t, req.Messages[0].Content, `"last7Days": []`)
}

func TestQuick_Fallback(t *testing.T) {
	c := New(&scriptedGenerator{replies: []string{""}}, NewMemoryTranscripts(), "m", "m")
	reply, err := c.Quick(context.Background(), "hi", QuickContext{})
	require.NoError(t, err)
	assert.Equal(t, quickFallbackReply, reply)
}

/* ─── Transcript stores ──────────────────────────────────────────────── */

func TestMemoryTranscripts_Trim(t *testing.T) {
	store := NewMemoryTranscripts()
	ctx := context.Background()
	for i := 0; i < MaxTranscript+5; i++ {
		require.NoError(t, store.Append(ctx, "s", llm.Message{Role: llm.RoleUser, Content: fmt.Sprint(i)}))
	}
	history, err := store.Load(ctx, "s")
	require.NoError(t, err)
	require.Len(t, history, MaxTranscript)
	assert.Equal(t, "5", history[0].Content)

	empty, err := store.Load(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisTranscripts_Append(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	store := NewRedisTranscripts(db, 7*24*time.Hour)
	key := "coach::transcript::s1"

	mock.ExpectRPush(key,
		`{"role":"user","content":"hi"}`,
		`{"role":"assistant","content":"hello"}`,
	).SetVal(2)
	mock.ExpectLTrim(key, -MaxTranscript, -1).SetVal("OK")
	mock.ExpectExpire(key, 7*24*time.Hour).SetVal(true)

	err := store.Append(context.Background(), "s1",
		llm.Message{Role: llm.RoleUser, Content: "hi"},
		llm.Message{Role: llm.RoleAssistant, Content: "hello"},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTranscripts_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	store := NewRedisTranscripts(db, time.Hour)

	mock.ExpectLRange("coach::transcript::s1", 0, -1).SetVal([]string{
		`{"role":"user","content":"hi"}`,
		`{"role":"assistant","content":"hello"}`,
	})
	history, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
	}, history)

	mock.ExpectLRange("coach::transcript::s2", 0, -1).RedisNil()
	history, err = store.Load(context.Background(), "s2")
	require.NoError(t, err)
	assert.Empty(t, history)

	mock.ExpectLRange("coach::transcript::s3", 0, -1).SetErr(errors.New("conn refused"))
	_, err = store.Load(context.Background(), "s3")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTranscripts_AppendError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	store := NewRedisTranscripts(db, time.Hour)

	mock.ExpectRPush("coach::transcript::s1", `{"role":"user","content":"hi"}`).SetErr(errors.New("readonly"))
	err := store.Append(context.Background(), "s1", llm.Message{Role: llm.RoleUser, Content: "hi"})
	assert.Error(t, err)
}

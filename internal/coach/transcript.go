package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/omarshanyour/nutrimind-backend/internal/llm"

	"github.com/go-redis/redis/v8"
)

// MaxTranscript is how many messages a session keeps and sends to the model.
const MaxTranscript = 40

// TranscriptStore keeps per-session chat history, trimmed to MaxTranscript.
type TranscriptStore interface {
	Load(ctx context.Context, sessionID string) ([]llm.Message, error)
	Append(ctx context.Context, sessionID string, msgs ...llm.Message) error
}

// MemoryTranscripts is a process-local store. History is lost on restart.
type MemoryTranscripts struct {
	mu       sync.Mutex
	sessions map[string][]llm.Message
}

func NewMemoryTranscripts() *MemoryTranscripts {
	return &MemoryTranscripts{sessions: make(map[string][]llm.Message)}
}

func (m *MemoryTranscripts) Load(_ context.Context, sessionID string) ([]llm.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.sessions[sessionID]
	out := make([]llm.Message, len(history))
	copy(out, history)
	return out, nil
}

func (m *MemoryTranscripts) Append(_ context.Context, sessionID string, msgs ...llm.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := append(m.sessions[sessionID], msgs...)
	if len(history) > MaxTranscript {
		history = append([]llm.Message(nil), history[len(history)-MaxTranscript:]...)
	}
	m.sessions[sessionID] = history
	return nil
}

// RedisTranscripts stores each session as a redis list of JSON messages.
type RedisTranscripts struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTranscripts stores sessions that expire ttl after their last message.
func NewRedisTranscripts(rdb *redis.Client, ttl time.Duration) *RedisTranscripts {
	return &RedisTranscripts{rdb: rdb, ttl: ttl}
}

func transcriptKey(sessionID string) string {
	return "coach::transcript::" + sessionID
}

func (r *RedisTranscripts) Load(ctx context.Context, sessionID string) ([]llm.Message, error) {
	raw, err := r.rdb.LRange(ctx, transcriptKey(sessionID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	msgs := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		var m llm.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decode transcript message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *RedisTranscripts) Append(ctx context.Context, sessionID string, msgs ...llm.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode transcript message: %w", err)
		}
		values = append(values, string(b))
	}

	key := transcriptKey(sessionID)
	if err := r.rdb.RPush(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	if err := r.rdb.LTrim(ctx, key, -MaxTranscript, -1).Err(); err != nil {
		return fmt.Errorf("trim transcript: %w", err)
	}
	if r.ttl > 0 {
		if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
			return fmt.Errorf("expire transcript: %w", err)
		}
	}
	return nil
}

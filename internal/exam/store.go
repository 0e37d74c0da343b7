package exam

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Session TTL covers the longest exam plus review time.
const sessionTTL = 6 * time.Hour

// SessionStore persists sessions in Redis between requests. The engine holds
// no concurrency guarantees of its own; the per-exam lock here serializes
// mutating calls so at most one request touches a session at a time.
type SessionStore struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(redis *redis.Client, logger zerolog.Logger) *SessionStore {
	return &SessionStore{
		redis:  redis,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

// Lock acquires a short distributed lock for one exam's state transitions.
// Returns the unlock function. The lock expires after 30s as a liveness
// backstop.
func (s *SessionStore) Lock(ctx context.Context, examID string) (func() error, error) {
	key := fmt.Sprintf("exam:lock:%s", examID)
	lockValue := uuid.New().String()

	acquired, err := s.redis.SetNX(ctx, key, lockValue, 30*time.Second).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("exam %s: lock already held", examID)
	}

	unlock := func() error {
		// Lua script ensures we only delete our own lock
		script := `
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			else
				return 0
			end
		`
		return s.redis.Eval(ctx, script, []string{key}, lockValue).Err()
	}

	return unlock, nil
}

// Put saves the session state.
func (s *SessionStore) Put(ctx context.Context, session *Session) error {
	key := fmt.Sprintf("exam:session:%s", session.ExamID)
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.redis.Set(ctx, key, data, sessionTTL).Err()
}

// Get loads a session by exam id; ErrExamNotFound when absent or expired.
func (s *SessionStore) Get(ctx context.Context, examID string) (*Session, error) {
	key := fmt.Sprintf("exam:session:%s", examID)
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("exam %s: %w", examID, ErrExamNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes a finished session before its TTL, e.g. after the caller
// archived the results elsewhere.
func (s *SessionStore) Delete(ctx context.Context, examID string) error {
	key := fmt.Sprintf("exam:session:%s", examID)
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.logger.Warn().Err(err).Str("exam_id", examID).Msg("session delete failed")
		return err
	}
	return nil
}

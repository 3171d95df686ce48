package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abdalwely/online-store/internal/session"
)

const (
	maxFailedSignIns = 5
	failureWindow    = 15 * time.Minute
)

// SessionStore keeps bearer tokens in Redis.
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewSessionStore(client redis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, actor session.Actor) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(actor)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}
	return token, nil
}

// Lookup returns ErrUnauthenticated for unknown or expired tokens.
func (s *SessionStore) Lookup(ctx context.Context, token string) (session.Actor, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Actor{}, ErrUnauthenticated
	}
	if err != nil {
		return session.Actor{}, fmt.Errorf("redis get session: %w", err)
	}
	var actor session.Actor
	if err := json.Unmarshal(data, &actor); err != nil {
		return session.Actor{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return actor, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Blocked reports whether email exceeded the failed sign-in budget.
func (s *SessionStore) Blocked(ctx context.Context, email string) (bool, error) {
	n, err := s.client.Get(ctx, throttleKey(email)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get throttle: %w", err)
	}
	return n > maxFailedSignIns, nil
}

// RecordFailure counts a failed attempt and reports whether the budget is now exceeded.
func (s *SessionStore) RecordFailure(ctx context.Context, email string) (bool, error) {
	key := throttleKey(email)
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr throttle: %w", err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, failureWindow).Err(); err != nil {
			return false, fmt.Errorf("redis expire throttle: %w", err)
		}
	}
	return n > maxFailedSignIns, nil
}

func (s *SessionStore) ResetFailures(ctx context.Context, email string) error {
	return s.client.Del(ctx, throttleKey(email)).Err()
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func sessionKey(token string) string { return "session:" + token }

func throttleKey(email string) string { return "signin:failures:" + strings.ToLower(email) }

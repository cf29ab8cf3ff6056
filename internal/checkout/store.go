package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrResumeNotFound = errors.New("no resume state for checkout")

// ResumeState is the little that survives a client reload mid-checkout:
// the selected address and any phone attached locally. Never
// authoritative; the backend remains the source of truth.
type ResumeState struct {
	AddressID string `json:"addressId"`
	Phone     string `json:"phone,omitempty"`
}

type Store interface {
	Get(ctx context.Context, checkoutID string) (*ResumeState, error)
	Set(ctx context.Context, checkoutID string, state *ResumeState) error
	Delete(ctx context.Context, checkoutID string) error
}

// ----------------- Redis -----------------

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: 30 * time.Minute}
}

func resumeKey(checkoutID string) string {
	return "checkout:resume:" + checkoutID
}

func (s *RedisStore) Get(ctx context.Context, checkoutID string) (*ResumeState, error) {
	data, err := s.client.Get(ctx, resumeKey(checkoutID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var state ResumeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal resume state failed: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Set(ctx context.Context, checkoutID string, state *ResumeState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal resume state failed: %w", err)
	}
	if err := s.client.Set(ctx, resumeKey(checkoutID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, checkoutID string) error {
	if err := s.client.Del(ctx, resumeKey(checkoutID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// ----------------- In-memory -----------------

// MemoryStore backs tests and dev setups without redis.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]ResumeState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]ResumeState)}
}

func (s *MemoryStore) Get(ctx context.Context, checkoutID string) (*ResumeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[checkoutID]
	if !ok {
		return nil, ErrResumeNotFound
	}
	return &state, nil
}

func (s *MemoryStore) Set(ctx context.Context, checkoutID string, state *ResumeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[checkoutID] = *state
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, checkoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, checkoutID)
	return nil
}

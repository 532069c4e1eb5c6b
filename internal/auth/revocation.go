package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/onlinecourse-service/internal/cache"
)

// RevocationStore remembers logged out token IDs until they expire
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevocationStore struct {
	helper *cache.CacheHelper
}

// NewRedisRevocationStore keeps the denylist in Redis under the session prefix.
// Without a Redis client it falls back to process memory.
func NewRedisRevocationStore(helper *cache.CacheHelper) RevocationStore {
	if helper == nil || !helper.Available() {
		return NewMemoryRevocationStore()
	}
	return &redisRevocationStore{helper: helper}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := s.helper.SetString(ctx, "revoked:"+tokenID, "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.helper.Exists(ctx, "revoked:"+tokenID)
}

type memoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryRevocationStore() RevocationStore {
	return &memoryRevocationStore{entries: make(map[string]time.Time)}
}

func (s *memoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, until := range s.entries {
		if now.After(until) {
			delete(s.entries, id)
		}
	}
	s.entries[tokenID] = now.Add(ttl)
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.entries[tokenID]
	return ok && time.Now().Before(until), nil
}

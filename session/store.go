// Package session caches per-loan verification session values that outlive a
// single popup: the created DigiLocker fallback URL and the chat session id.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Values expire with the working session; a day covers any realistic visit.
const ttl = 24 * time.Hour

// Store is safe for concurrent use.
type Store interface {
	// StoreFallbackURL caches the DigiLocker URL created for the loan so a
	// reopened popup reuses it instead of creating another one.
	StoreFallbackURL(ctx context.Context, loanID, url string) error

	// RetrieveFallbackURL returns the cached URL, or "" when none is cached.
	RetrieveFallbackURL(ctx context.Context, loanID string) (string, error)

	// StoreChatSession remembers the chat session id for the user.
	StoreChatSession(ctx context.Context, userID, sessionID string) error

	// RetrieveChatSession returns the chat session id, or "" when none exists.
	RetrieveChatSession(ctx context.Context, userID string) (string, error)
}

// ---------------------------------------------------------------------------

// RedisStore backs Store with redis.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.namespace, kind, id)
}

func (s *RedisStore) StoreFallbackURL(ctx context.Context, loanID, url string) error {
	return s.client.Set(ctx, s.key("fallback", loanID), url, ttl).Err()
}

func (s *RedisStore) RetrieveFallbackURL(ctx context.Context, loanID string) (string, error) {
	url, err := s.client.Get(ctx, s.key("fallback", loanID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return url, err
}

func (s *RedisStore) StoreChatSession(ctx context.Context, userID, sessionID string) error {
	return s.client.Set(ctx, s.key("chat", userID), sessionID, ttl).Err()
}

func (s *RedisStore) RetrieveChatSession(ctx context.Context, userID string) (string, error) {
	sessionID, err := s.client.Get(ctx, s.key("chat", userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return sessionID, err
}

// ---------------------------------------------------------------------------

// MemoryStore backs Store with a process-local map, for development and tests.
type MemoryStore struct {
	mutex  sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) set(kind, id, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[kind+":"+id] = value
	return nil
}

func (s *MemoryStore) get(kind, id string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.values[kind+":"+id], nil
}

func (s *MemoryStore) StoreFallbackURL(_ context.Context, loanID, url string) error {
	return s.set("fallback", loanID, url)
}

func (s *MemoryStore) RetrieveFallbackURL(_ context.Context, loanID string) (string, error) {
	return s.get("fallback", loanID)
}

func (s *MemoryStore) StoreChatSession(_ context.Context, userID, sessionID string) error {
	return s.set("chat", userID, sessionID)
}

func (s *MemoryStore) RetrieveChatSession(_ context.Context, userID string) (string, error) {
	return s.get("chat", userID)
}

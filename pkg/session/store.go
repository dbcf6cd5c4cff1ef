package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Load for unknown or expired sessions
var ErrNotFound = errors.New("session: not found")

// Store persists session data
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
}

// RedisStore keeps sessions as JSON values with a TTL
type RedisStore struct {
	client *goredis.Client
	prefix string
}

func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "session:"}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get failed: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("session: corrupt data: %w", err)
	}
	return &data, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data *Data, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: encode failed: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set failed: %w", err)
	}
	return nil
}

type memoryEntry struct {
	data      *Data
	expiresAt time.Time
}

// MemoryStore is the fallback store when redis is not configured
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	lastSweep time.Time
	now       func() time.Time
}

const sweepInterval = 5 * time.Minute

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	return entry.data.clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data *Data, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[id] = memoryEntry{data: data.clone(), expiresAt: now.Add(ttl)}

	if now.Sub(s.lastSweep) > sweepInterval {
		for key, entry := range s.entries {
			if now.After(entry.expiresAt) {
				delete(s.entries, key)
			}
		}
		s.lastSweep = now
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

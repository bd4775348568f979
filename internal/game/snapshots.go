package game

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore is the persistence port for session state and stats.
// Get returns (nil, nil) on a missing key. Snapshots are opaque JSON
// blobs; shape tolerance lives in the caller.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// MemorySnapshots keeps snapshots in-process; the default when Redis is
// not configured, and the workhorse in tests.
type MemorySnapshots struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ SnapshotStore = (*MemorySnapshots)(nil)

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{data: map[string][]byte{}}
}

func (s *MemorySnapshots) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemorySnapshots) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

func (s *MemorySnapshots) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// RedisSnapshots stores snapshots in Redis with a generous TTL so
// abandoned sessions eventually expire.
type RedisSnapshots struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SnapshotStore = (*RedisSnapshots)(nil)

const defaultSnapshotTTL = 48 * time.Hour

func NewRedisSnapshots(client *redis.Client, ttl time.Duration) *RedisSnapshots {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &RedisSnapshots{client: client, ttl: ttl}
}

func (s *RedisSnapshots) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisSnapshots) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

func (s *RedisSnapshots) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"invisinsights/internal/model"
)

const recentSessionsKey = "sessions:recent"

// SessionBuffer keeps the most recent collected sessions, oldest evicted first
type SessionBuffer interface {
	Push(ctx context.Context, entry *model.SessionEntry) error
	// Recent returns up to n entries, newest first. n <= 0 means all.
	Recent(ctx context.Context, n int) ([]model.SessionEntry, error)
}

type memorySessionBuffer struct {
	mu      sync.Mutex
	entries []model.SessionEntry
	next    int
	full    bool
}

// NewMemorySessionBuffer creates a fixed-size in-process ring
func NewMemorySessionBuffer(size int) SessionBuffer {
	if size <= 0 {
		size = 100
	}
	return &memorySessionBuffer{entries: make([]model.SessionEntry, size)}
}

func (b *memorySessionBuffer) Push(ctx context.Context, entry *model.SessionEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = *entry
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
	return nil
}

func (b *memorySessionBuffer) Recent(ctx context.Context, n int) ([]model.SessionEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.next
	if b.full {
		count = len(b.entries)
	}
	if n <= 0 || n > count {
		n = count
	}

	out := make([]model.SessionEntry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (b.next - i + len(b.entries)) % len(b.entries)
		out = append(out, b.entries[idx])
	}
	return out, nil
}

type redisSessionBuffer struct {
	client *redis.Client
	size   int
}

// NewRedisSessionBuffer stores sessions in a capped Redis list
func NewRedisSessionBuffer(client *redis.Client, size int) SessionBuffer {
	if size <= 0 {
		size = 100
	}
	return &redisSessionBuffer{client: client, size: size}
}

func (b *redisSessionBuffer) Push(ctx context.Context, entry *model.SessionEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := b.client.TxPipeline()
	pipe.LPush(ctx, recentSessionsKey, data)
	pipe.LTrim(ctx, recentSessionsKey, 0, int64(b.size-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (b *redisSessionBuffer) Recent(ctx context.Context, n int) ([]model.SessionEntry, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}

	items, err := b.client.LRange(ctx, recentSessionsKey, 0, stop).Result()
	if err == redis.Nil {
		return []model.SessionEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]model.SessionEntry, 0, len(items))
	for _, item := range items {
		var entry model.SessionEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

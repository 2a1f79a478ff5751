package draft

import (
	"context"
	"sync"
	"time"

	"onboard/pkg/platform/sentinel"
)

// MemoryKV is an in-memory KV surface for single-instance deployments and
// tests. Entries honor the TTL handed to Set so memory and Redis drafts
// behave the same way.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value    string
	deadline time.Time
}

// NewMemoryKV creates an empty in-memory KV surface.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (kv *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	kv.mu.RLock()
	entry, ok := kv.entries[key]
	kv.mu.RUnlock()
	if !ok {
		return "", sentinel.ErrNotFound
	}
	if !entry.deadline.IsZero() && kv.now().After(entry.deadline) {
		kv.mu.Lock()
		delete(kv.entries, key)
		kv.mu.Unlock()
		return "", sentinel.ErrNotFound
	}
	return entry.value, nil
}

func (kv *MemoryKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.deadline = kv.now().Add(ttl)
	}
	kv.mu.Lock()
	kv.entries[key] = entry
	kv.mu.Unlock()
	return nil
}

func (kv *MemoryKV) Remove(ctx context.Context, key string) error {
	kv.mu.Lock()
	delete(kv.entries, key)
	kv.mu.Unlock()
	return nil
}

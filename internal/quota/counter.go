package quota

import (
	"context"
	"sync"
	"time"
)

// Counter keeps integer counters that disappear after expireAt.
type Counter interface {
	Incr(ctx context.Context, key string, expireAt time.Time) (int64, error)
	Decr(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (int64, error)
}

type entry struct {
	n        int64
	expireAt time.Time
}

// MemoryCounter is the single-node counter used when Redis is not configured.
// Expired keys are only dropped by Prune.
type MemoryCounter struct {
	mu   sync.Mutex
	keys map[string]*entry
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{keys: make(map[string]*entry)}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, expireAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.keys[key]
	if !ok {
		e = &entry{}
		m.keys[key] = e
	}
	e.n++
	e.expireAt = expireAt
	return e.n, nil
}

func (m *MemoryCounter) Decr(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.keys[key]; ok {
		e.n--
		if e.n <= 0 {
			delete(m.keys, key)
		}
	}
	return nil
}

func (m *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.keys[key]; ok {
		return e.n, nil
	}
	return 0, nil
}

// Prune removes keys whose expiry is at or before now and reports how many.
func (m *MemoryCounter) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.keys {
		if !e.expireAt.After(now) {
			delete(m.keys, k)
			n++
		}
	}
	return n
}

func (m *MemoryCounter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

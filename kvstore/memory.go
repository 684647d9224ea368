package kvstore

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process [Store]. Expired entries are hidden on read and
// swept periodically until Close is called.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time

	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithCleanupInterval sets how often expired entries are swept.
func WithCleanupInterval(interval time.Duration) MemoryOption {
	return func(m *Memory) {
		if interval > 0 {
			m.cleanupInterval = interval
		}
	}
}

// NewMemory creates an in-memory store and starts its sweeper.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:         make(map[string]memoryEntry),
		now:             time.Now,
		cleanupInterval: time.Minute,
		stop:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	go m.cleanupLoop()
	return m
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.live(key)
	return ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, ErrInvalidTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if e, ok := m.live(key); ok {
		n = parseInt(e.value)
	}
	n++
	m.entries[key] = memoryEntry{value: strconv.FormatInt(n, 10), expiresAt: m.now().Add(ttl)}
	return n, nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

// Close stops the background sweeper. The store remains usable.
func (m *Memory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// live must be called with mu held.
func (m *Memory) live(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}

package services

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

type mockCacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// MockCacheService is an in-memory CacheService with TTL support
type MockCacheService struct {
	entries map[string]mockCacheEntry
	mu      sync.Mutex
	now     func() time.Time
}

// NewMockCacheService creates a new mock cache
func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		entries: make(map[string]mockCacheEntry),
		now:     time.Now,
	}
}

// SetAsMockForTesting sets this mock as the global cache instance for testing
func (m *MockCacheService) SetAsMockForTesting() {
	SetCacheService(m)
}

// get returns a live entry; caller holds mu
func (m *MockCacheService) get(key string) (mockCacheEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return e, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return e, false
	}
	return e, true
}

func (m *MockCacheService) set(key string, value []byte, ttl time.Duration) {
	e := mockCacheEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
}

func (m *MockCacheService) GetJSON(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	e, ok := m.get(key)
	m.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(e.value, dest)
}

func (m *MockCacheService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.set(key, data, ttl)
	m.mu.Unlock()
	return nil
}

func (m *MockCacheService) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *MockCacheService) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if e, ok := m.get(key); ok {
		n, _ = strconv.ParseInt(string(e.value), 10, 64)
	}
	n++
	m.set(key, []byte(strconv.FormatInt(n, 10)), 0)
	return n, nil
}

func (m *MockCacheService) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.get(key); ok {
		return false, nil
	}
	m.set(key, []byte("1"), ttl)
	return true, nil
}

func (m *MockCacheService) Close() error { return nil }

// Has reports whether key is present and unexpired
func (m *MockCacheService) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(key)
	return ok
}

// Advance moves the mock clock forward
func (m *MockCacheService) Advance(d time.Duration) {
	m.mu.Lock()
	base := m.now()
	m.now = func() time.Time { return base.Add(d) }
	m.mu.Unlock()
}

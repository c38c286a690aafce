package store

import (
	"context"
	"sync"
	"time"
)

const (
	StatusDone    = "done"
	StatusTimeout = "timeout"
)

// Store keeps the little state that may outlive a single widget: request
// outcomes, local HiPS routes and processed download URLs.
type Store interface {
	SetRoute(ctx context.Context, route, dir string) error
	GetRoute(ctx context.Context, route string) (string, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) error
	// MarkProcessedIfAbsent claims key for ttl and reports whether this
	// caller got it.
	MarkProcessedIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	UnmarkProcessed(ctx context.Context, key string) error
	SetAckStatus(ctx context.Context, msgID, status string, ttl time.Duration) error
	GetAckStatus(ctx context.Context, msgID string) (string, error)
}

type expiring struct {
	value    string
	expireAt time.Time
}

type MemoryStore struct {
	mu        sync.RWMutex
	routes    map[string]string
	processed map[string]time.Time
	acks      map[string]expiring
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes:    make(map[string]string),
		processed: make(map[string]time.Time),
		acks:      make(map[string]expiring),
		now:       time.Now,
	}
}

func (m *MemoryStore) SetRoute(_ context.Context, route, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[route] = dir
	return nil
}

func (m *MemoryStore) GetRoute(_ context.Context, route string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.routes[route], nil
}

func (m *MemoryStore) IsProcessed(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expireAt, ok := m.processed[key]
	if !ok {
		return false, nil
	}
	return m.now().Before(expireAt), nil
}

func (m *MemoryStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed[key] = m.now().Add(ttl)
	return nil
}

func (m *MemoryStore) MarkProcessedIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expireAt, ok := m.processed[key]; ok && m.now().Before(expireAt) {
		return false, nil
	}
	m.processed[key] = m.now().Add(ttl)
	return true, nil
}

func (m *MemoryStore) UnmarkProcessed(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.processed, key)
	return nil
}

func (m *MemoryStore) SetAckStatus(_ context.Context, msgID, status string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acks[msgID] = expiring{value: status, expireAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) GetAckStatus(_ context.Context, msgID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ack, ok := m.acks[msgID]
	if !ok || !m.now().Before(ack.expireAt) {
		return "", nil
	}
	return ack.value, nil
}

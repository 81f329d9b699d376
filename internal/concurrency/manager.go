package concurrency

import (
	"context"
	"sync"
)

// Manager serializes work per thread inside one process.
// Processes sharing a thread are not coordinated.
type Manager struct {
	locks sync.Map // map[string]chan struct{}
}

// NewManager creates a new concurrency manager
func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) slot(key string) chan struct{} {
	actual, _ := m.locks.LoadOrStore(key, make(chan struct{}, 1))
	return actual.(chan struct{})
}

// TryAcquire attempts to acquire a lock for the given key.
// Returns true if lock was acquired, false if already locked.
// Key format: "owner/repo#number" (e.g., "facebook/react#123")
func (m *Manager) TryAcquire(key string) bool {
	select {
	case m.slot(key) <- struct{}{}:
		return true
	default:
		return false
	}
}

// Acquire blocks until the lock for key is held or ctx is done.
func (m *Manager) Acquire(ctx context.Context, key string) error {
	select {
	case m.slot(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases the lock for the given key.
// Safe to call even if lock was never acquired or already released.
func (m *Manager) Release(key string) {
	if actual, ok := m.locks.Load(key); ok {
		ch := actual.(chan struct{})
		select {
		case <-ch:
		default:
		}
	}
}

package concurrency

import (
	"context"
	"sync"
)

// Manager hands out one lock per key. The surface registry keys it by
// surface id so each surface is mutated by a single writer at a time.
type Manager struct {
	locks sync.Map // map[string]chan struct{}
}

// NewManager creates a new concurrency manager
func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) sem(key string) chan struct{} {
	// buffered channel of size 1 (semaphore pattern)
	actual, _ := m.locks.LoadOrStore(key, make(chan struct{}, 1))
	return actual.(chan struct{})
}

// Acquire blocks until the lock for key is held or ctx is done.
func (m *Manager) Acquire(ctx context.Context, key string) error {
	select {
	case m.sem(key) <- struct{}{}:
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
			// not locked
		}
	}
}

// Package runlock serializes runs of the same pipeline.
package runlock

import (
	"context"
	"errors"
	"sync"
)

// ErrLocked is returned when another run holds the lock.
var ErrLocked = errors.New("pipeline lock held by another run")

// Locker grants one holder at a time per pipeline name.
type Locker interface {
	// Acquire takes the lock for name on behalf of holder, or fails with
	// ErrLocked without waiting.
	Acquire(ctx context.Context, name, holder string) error
	// Release frees a lock taken by holder.
	Release(ctx context.Context, name, holder string) error
}

// Memory is a Locker for runs inside one process.
type Memory struct {
	mu      sync.Mutex
	holders map[string]string
}

func NewMemory() *Memory {
	return &Memory{holders: make(map[string]string)}
}

func (m *Memory) Acquire(_ context.Context, name, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holders[name]; ok {
		return ErrLocked
	}
	m.holders[name] = holder
	return nil
}

func (m *Memory) Release(_ context.Context, name, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holders[name] == holder {
		delete(m.holders, name)
	}
	return nil
}

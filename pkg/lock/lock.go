// Package lock provides short-lived mutual exclusion keyed by name, in
// process or across instances through Redis. Every acquisition gets its own
// token and only that token can release it.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotHeld is returned by Unlock when the key is not locked under the
// given token (never taken, already released, or expired and re-acquired).
var ErrNotHeld = errors.New("lock: not held")

type memoryEntry struct {
	token string
	exp   time.Time
}

// MemoryLocker is an in-process lock table. Entries expire after their TTL so
// a crashed holder cannot wedge the key.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	clock func() time.Time
}

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryEntry), clock: time.Now}
}

func (m *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	now := m.clock()
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.held[key]; ok && !m.expired(e, now) {
		return "", false, nil
	}
	e := memoryEntry{token: uuid.NewString()}
	if ttl > 0 {
		e.exp = now.Add(ttl)
	}
	m.held[key] = e
	return e.token, true, nil
}

func (m *MemoryLocker) Unlock(_ context.Context, key, token string) error {
	now := m.clock()
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.held[key]
	if !ok || e.token != token || m.expired(e, now) {
		return ErrNotHeld
	}
	delete(m.held, key)
	return nil
}

func (m *MemoryLocker) expired(e memoryEntry, now time.Time) bool {
	return !e.exp.IsZero() && !now.Before(e.exp)
}

package scheduling

import (
	"context"
	"sync"
)

// Locker serializes the check-then-reserve critical section per slot key.
// The Redis-backed implementation lives in internal/redis; LocalLocker below
// covers single-process deployments and tests.
type Locker interface {
	WithSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// LocalLocker keys a mutex per slot. Entries are kept for the life of the
// process; the key space is bounded by providers x grid size per day.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) WithSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	return fn(ctx)
}

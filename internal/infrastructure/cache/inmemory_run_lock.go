package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
)

type lockEntry struct {
	token     uint64
	expiresAt time.Time
}

// InMemoryRunLock implements RunLock inside one process. It is used when
// Redis is not configured and in tests.
type InMemoryRunLock struct {
	mu      sync.Mutex
	entries map[string]lockEntry
	next    uint64
	now     func() time.Time
}

// NewInMemoryRunLock creates an empty lock table
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{
		entries: make(map[string]lockEntry),
		now:     time.Now,
	}
}

// Acquire implements integration.RunLock
func (l *InMemoryRunLock) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, held := l.entries[key]; held && now.Before(e.expiresAt) {
		return nil, fmt.Errorf("%w: %s", integration.ErrSyncInProgress, key)
	}

	l.next++
	token := l.next
	l.entries[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if e, held := l.entries[key]; held && e.token == token {
				delete(l.entries, key)
			}
		})
	}, nil
}

// Held reports whether key is currently locked
func (l *InMemoryRunLock) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, held := l.entries[key]
	return held && l.now().Before(e.expiresAt)
}

var _ integration.RunLock = (*InMemoryRunLock)(nil)

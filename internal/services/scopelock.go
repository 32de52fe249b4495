package services

import (
	"sync"

	"github.com/interviewkit/interview-assistant/internal/store"
)

// scopeLocks hands out one mutex per scope so the compare-then-put step is
// exclusive within a scope while unrelated scopes progress independently.
// Mutexes live for the process lifetime; the set of active scopes is small
// and TTL-bounded.
type scopeLocks struct {
	mu    sync.Mutex
	locks map[store.ScopeKey]*sync.Mutex
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[store.ScopeKey]*sync.Mutex)}
}

func (l *scopeLocks) get(scope store.ScopeKey) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[scope]
	if !ok {
		m = &sync.Mutex{}
		l.locks[scope] = m
	}
	return m
}

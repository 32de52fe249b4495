// Package memstore provides the in-process TTL-scoped vector store.
//
// It is the default backend: a short-lived dedup/cache layer, not a system
// of record. Entries become invisible once their TTL elapses and are pruned
// lazily on subsequent writes to the same scope.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/interviewkit/interview-assistant/internal/model"
	"github.com/interviewkit/interview-assistant/internal/store"
)

type questionEntry struct {
	question  model.Question
	vec       []float32
	expiresAt time.Time
}

type tipEntry struct {
	tip       model.Tip
	vec       []float32
	expiresAt time.Time
}

// Store is an in-memory store.Store implementation. A single RWMutex guards
// the item maps and the scope indices together, so a reader never observes
// an item without its scope membership or vice versa.
type Store struct {
	ttl time.Duration

	mu        sync.RWMutex
	questions map[string]questionEntry
	tips      map[string]tipEntry
	scopes    map[store.ScopeKey]map[string]struct{}
}

// New creates an empty store whose entries expire ttl after Put.
// A non-positive ttl means entries are expired on arrival.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:       ttl,
		questions: make(map[string]questionEntry),
		tips:      make(map[string]tipEntry),
		scopes:    make(map[store.ScopeKey]map[string]struct{}),
	}
}

func (s *Store) Questions() store.Questions { return &questions{s} }
func (s *Store) Tips() store.Tips           { return &tips{s} }

func live(expiresAt time.Time) bool { return time.Now().Before(expiresAt) }

func (s *Store) addToScope(scope store.ScopeKey, id string) {
	idx, ok := s.scopes[scope]
	if !ok {
		idx = make(map[string]struct{})
		s.scopes[scope] = idx
	}
	idx[id] = struct{}{}
}

// pruneScope drops ids whose backing entry is gone or expired.
// Caller must hold the write lock.
func (s *Store) pruneScope(scope store.ScopeKey) {
	idx := s.scopes[scope]
	for id := range idx {
		if q, ok := s.questions[id]; ok && live(q.expiresAt) {
			continue
		}
		if tp, ok := s.tips[id]; ok && live(tp.expiresAt) {
			continue
		}
		delete(idx, id)
		delete(s.questions, id)
		delete(s.tips, id)
	}
	if len(idx) == 0 {
		delete(s.scopes, scope)
	}
}

type questions struct{ s *Store }

func (q *questions) Put(ctx context.Context, item *model.Question, vec []float32) error {
	s := q.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.questions[item.QuestionID]; ok && live(e.expiresAt) {
		return model.ErrConflict
	}

	scope := store.QuestionScope(item.Request)
	s.pruneScope(scope)
	s.questions[item.QuestionID] = questionEntry{
		question:  *item,
		vec:       vec,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.addToScope(scope, item.QuestionID)
	return nil
}

func (q *questions) Get(ctx context.Context, questionID string) (*model.Question, error) {
	s := q.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.questions[questionID]
	if !ok || !live(e.expiresAt) {
		return nil, model.ErrNotFound
	}
	out := e.question
	return &out, nil
}

func (q *questions) Exists(ctx context.Context, questionID string) (bool, error) {
	s := q.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.questions[questionID]
	return ok && live(e.expiresAt), nil
}

func (q *questions) ListVectors(ctx context.Context, scope store.ScopeKey) ([]store.ScopedVector, error) {
	s := q.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.ScopedVector
	for id := range s.scopes[scope] {
		if e, ok := s.questions[id]; ok && live(e.expiresAt) {
			out = append(out, store.ScopedVector{ItemID: id, Vector: e.vec})
		}
	}
	return out, nil
}

func (q *questions) ListByScope(ctx context.Context, scope store.ScopeKey) ([]*model.Question, error) {
	s := q.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Question
	for id := range s.scopes[scope] {
		if e, ok := s.questions[id]; ok && live(e.expiresAt) {
			item := e.question
			out = append(out, &item)
		}
	}
	return out, nil
}

type tips struct{ s *Store }

func (t *tips) Put(ctx context.Context, item *model.Tip, vec []float32) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.tips[item.TipID]; ok && live(e.expiresAt) {
		return model.ErrConflict
	}

	scope := store.TipScope(item.QuestionID)
	s.pruneScope(scope)
	s.tips[item.TipID] = tipEntry{
		tip:       *item,
		vec:       vec,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.addToScope(scope, item.TipID)
	return nil
}

func (t *tips) Get(ctx context.Context, tipID string) (*model.Tip, error) {
	s := t.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.tips[tipID]
	if !ok || !live(e.expiresAt) {
		return nil, model.ErrNotFound
	}
	out := e.tip
	return &out, nil
}

func (t *tips) Exists(ctx context.Context, tipID string) (bool, error) {
	s := t.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.tips[tipID]
	return ok && live(e.expiresAt), nil
}

func (t *tips) ListVectors(ctx context.Context, scope store.ScopeKey) ([]store.ScopedVector, error) {
	s := t.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.ScopedVector
	for id := range s.scopes[scope] {
		if e, ok := s.tips[id]; ok && live(e.expiresAt) {
			out = append(out, store.ScopedVector{ItemID: id, Vector: e.vec})
		}
	}
	return out, nil
}

func (t *tips) ListByScope(ctx context.Context, scope store.ScopeKey) ([]*model.Tip, error) {
	s := t.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Tip
	for id := range s.scopes[scope] {
		if e, ok := s.tips[id]; ok && live(e.expiresAt) {
			item := e.tip
			out = append(out, &item)
		}
	}
	return out, nil
}

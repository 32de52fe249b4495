// Package redisstore implements store.Store on Redis.
//
// Layout: each item lives in a hash keyed by its id ("question:{id}",
// "tip:{id}") holding the item JSON and its embedding; scope membership is a
// set keyed by the scope string. Item hash and scope set share the same TTL,
// refreshed on every Put, so expiry keeps index and items consistent.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/interviewkit/interview-assistant/internal/model"
	"github.com/interviewkit/interview-assistant/internal/store"
)

// Store is a Redis-backed store.Store implementation.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps an existing Redis client. The caller owns the client lifecycle.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Open connects to addr and pings the server.
func Open(ctx context.Context, addr string, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return New(rdb, ttl), nil
}

// Close releases the underlying client.
func (s *Store) Close() error { return s.rdb.Close() }

// Ping reports connectivity; used by the store health checker.
func (s *Store) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

// HealthPing satisfies health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.Ping(ctx) }

func (s *Store) Questions() store.Questions { return &questions{s} }
func (s *Store) Tips() store.Tips           { return &tips{s} }

func questionKey(id string) string { return "question:" + id }
func tipKey(id string) string      { return "tip:" + id }

// putItem writes the item hash and scope membership in one pipeline.
// The HSetNX on the data field doubles as the id-collision guard.
func (s *Store) putItem(ctx context.Context, key string, scope store.ScopeKey, id string, data []byte, vec []float32) error {
	ok, err := s.rdb.HSetNX(ctx, key, "data", data).Result()
	if err != nil {
		return fmt.Errorf("redis hsetnx %s: %w", key, err)
	}
	if !ok {
		return model.ErrConflict
	}

	vecJSON, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, "vector", vecJSON)
	pipe.SAdd(ctx, string(scope), id)
	pipe.Expire(ctx, key, s.ttl)
	pipe.Expire(ctx, string(scope), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline %s: %w", key, err)
	}
	return nil
}

func (s *Store) getData(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.HGet(ctx, key, "data").Bytes()
	if err == redis.Nil {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return data, nil
}

// listVectors resolves scope members to their embeddings, skipping entries
// that expired between SMEMBERS and HGET.
func (s *Store) listVectors(ctx context.Context, scope store.ScopeKey, keyFn func(string) string) ([]store.ScopedVector, error) {
	ids, err := s.rdb.SMembers(ctx, string(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", scope, err)
	}

	var out []store.ScopedVector
	for _, id := range ids {
		raw, err := s.rdb.HGet(ctx, keyFn(id), "vector").Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis hget vector %s: %w", id, err)
		}
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err != nil {
			return nil, fmt.Errorf("unmarshal vector %s: %w", id, err)
		}
		out = append(out, store.ScopedVector{ItemID: id, Vector: vec})
	}
	return out, nil
}

func (s *Store) listMembers(ctx context.Context, scope store.ScopeKey) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, string(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", scope, err)
	}
	return ids, nil
}

type questions struct{ s *Store }

func (q *questions) Put(ctx context.Context, item *model.Question, vec []float32) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	return q.s.putItem(ctx, questionKey(item.QuestionID), store.QuestionScope(item.Request), item.QuestionID, data, vec)
}

func (q *questions) Get(ctx context.Context, questionID string) (*model.Question, error) {
	data, err := q.s.getData(ctx, questionKey(questionID))
	if err != nil {
		return nil, err
	}
	var item model.Question
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("unmarshal question %s: %w", questionID, err)
	}
	return &item, nil
}

func (q *questions) Exists(ctx context.Context, questionID string) (bool, error) {
	n, err := q.s.rdb.Exists(ctx, questionKey(questionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n == 1, nil
}

func (q *questions) ListVectors(ctx context.Context, scope store.ScopeKey) ([]store.ScopedVector, error) {
	return q.s.listVectors(ctx, scope, questionKey)
}

func (q *questions) ListByScope(ctx context.Context, scope store.ScopeKey) ([]*model.Question, error) {
	ids, err := q.s.listMembers(ctx, scope)
	if err != nil {
		return nil, err
	}
	var out []*model.Question
	for _, id := range ids {
		item, err := q.Get(ctx, id)
		if err == model.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

type tips struct{ s *Store }

func (t *tips) Put(ctx context.Context, item *model.Tip, vec []float32) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal tip: %w", err)
	}
	return t.s.putItem(ctx, tipKey(item.TipID), store.TipScope(item.QuestionID), item.TipID, data, vec)
}

func (t *tips) Get(ctx context.Context, tipID string) (*model.Tip, error) {
	data, err := t.s.getData(ctx, tipKey(tipID))
	if err != nil {
		return nil, err
	}
	var item model.Tip
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("unmarshal tip %s: %w", tipID, err)
	}
	return &item, nil
}

func (t *tips) Exists(ctx context.Context, tipID string) (bool, error) {
	n, err := t.s.rdb.Exists(ctx, tipKey(tipID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n == 1, nil
}

func (t *tips) ListVectors(ctx context.Context, scope store.ScopeKey) ([]store.ScopedVector, error) {
	return t.s.listVectors(ctx, scope, tipKey)
}

func (t *tips) ListByScope(ctx context.Context, scope store.ScopeKey) ([]*model.Tip, error) {
	ids, err := t.s.listMembers(ctx, scope)
	if err != nil {
		return nil, err
	}
	var out []*model.Tip
	for _, id := range ids {
		item, err := t.Get(ctx, id)
		if err == model.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

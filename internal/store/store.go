package store

import (
	"context"
	"fmt"

	"github.com/interviewkit/interview-assistant/internal/model"
)

// ScopeKey bounds the set of items a new candidate is compared against.
// Uniqueness is never global: questions are scoped per (user, job title,
// question type) and tips per target question.
type ScopeKey string

// QuestionScope returns the dedup scope for a question request.
func QuestionScope(req model.QuestionRequest) ScopeKey {
	return ScopeKey(fmt.Sprintf("user:%s:%s:%s:questions", req.UserID, req.JobTitle, req.QuestionType))
}

// TipScope returns the dedup scope for tips of one question.
func TipScope(questionID string) ScopeKey {
	return ScopeKey(fmt.Sprintf("question:%s:tips", questionID))
}

// ScopedVector is one accepted item's embedding inside a scope.
type ScopedVector struct {
	ItemID string
	Vector []float32
}

// Store exposes persistence operations required by the generation services.
// All writes carry the store's configured TTL; an entry past its TTL is
// invisible to every read even before it is physically purged. Put with an
// id that already exists returns model.ErrConflict: ids are minted at
// acceptance time, so a collision indicates a bug, never a legal overwrite.
type Store interface {
	Questions() Questions
	Tips() Tips
}

type Questions interface {
	// Put persists an accepted question and indexes its vector under the
	// request's scope, atomically with respect to concurrent readers.
	Put(ctx context.Context, q *model.Question, vec []float32) error
	Get(ctx context.Context, questionID string) (*model.Question, error)
	Exists(ctx context.Context, questionID string) (bool, error)
	// ListVectors returns (id, vector) for every live question in scope.
	ListVectors(ctx context.Context, scope ScopeKey) ([]ScopedVector, error)
	// ListByScope returns the live questions in scope.
	ListByScope(ctx context.Context, scope ScopeKey) ([]*model.Question, error)
}

type Tips interface {
	Put(ctx context.Context, tip *model.Tip, vec []float32) error
	Get(ctx context.Context, tipID string) (*model.Tip, error)
	Exists(ctx context.Context, tipID string) (bool, error)
	ListVectors(ctx context.Context, scope ScopeKey) ([]ScopedVector, error)
	ListByScope(ctx context.Context, scope ScopeKey) ([]*model.Tip, error)
}

// Package storetest holds a compliance suite that any store.Store
// implementation must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/interviewkit/interview-assistant/internal/model"
	"github.com/interviewkit/interview-assistant/internal/store"
)

func newQuestion(userID, text string) *model.Question {
	return &model.Question{
		QuestionContent: model.QuestionContent{
			Question:           text,
			ExpectedAnswer:     "an answer",
			EvaluationCriteria: "clarity, correctness",
			ExpectedDuration:   "10 minutes",
		},
		QuestionID:   uuid.NewString(),
		CreationTime: time.Now().UTC(),
		Version:      model.AppVersion,
		Request: model.QuestionRequest{
			UserID:       userID,
			QuestionType: model.QuestionTypeExercise,
			JobTitle:     model.JobTitleDataEngineer,
			Skill:        "sql",
			N:            1,
		},
	}
}

// Run exercises a compliance suite against a store.Store implementation.
// makeStore should return a clean store whose TTL is long enough that
// nothing expires during the test.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.NewString()

	// Put + Get + Exists round trip
	q1 := newQuestion(userID, "Design a star schema for clickstream data")
	if err := s.Questions().Put(ctx, q1, []float32{1, 0, 0}); err != nil {
		t.Fatalf("PutQuestion: %v", err)
	}
	got, err := s.Questions().Get(ctx, q1.QuestionID)
	if err != nil || got == nil || got.Question != q1.Question {
		t.Fatalf("GetQuestion: got=%v err=%v", got, err)
	}
	if got.Request.UserID != userID {
		t.Fatalf("GetQuestion: request not preserved: %+v", got.Request)
	}
	ok, err := s.Questions().Exists(ctx, q1.QuestionID)
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}

	// Duplicate id must signal a conflict, never overwrite.
	if err := s.Questions().Put(ctx, q1, []float32{1, 0, 0}); err != model.ErrConflict {
		t.Fatalf("PutQuestion duplicate id: want ErrConflict, got %v", err)
	}

	// Scope index returns each live vector exactly once.
	q2 := newQuestion(userID, "Explain partitioning vs bucketing")
	if err := s.Questions().Put(ctx, q2, []float32{0, 1, 0}); err != nil {
		t.Fatalf("PutQuestion q2: %v", err)
	}
	scope := store.QuestionScope(q1.Request)
	vecs, err := s.Questions().ListVectors(ctx, scope)
	if err != nil || len(vecs) != 2 {
		t.Fatalf("ListVectors: n=%d err=%v", len(vecs), err)
	}
	items, err := s.Questions().ListByScope(ctx, scope)
	if err != nil || len(items) != 2 {
		t.Fatalf("ListByScope: n=%d err=%v", len(items), err)
	}

	// A different user's scope stays empty.
	other := q1.Request
	other.UserID = "u-" + uuid.NewString()
	vecs, err = s.Questions().ListVectors(ctx, store.QuestionScope(other))
	if err != nil || len(vecs) != 0 {
		t.Fatalf("ListVectors other scope: n=%d err=%v", len(vecs), err)
	}

	// Unknown ids are ErrNotFound.
	if _, err := s.Questions().Get(ctx, uuid.NewString()); err != model.ErrNotFound {
		t.Fatalf("GetQuestion unknown: want ErrNotFound, got %v", err)
	}
	if ok, err := s.Questions().Exists(ctx, uuid.NewString()); err != nil || ok {
		t.Fatalf("Exists unknown: ok=%v err=%v", ok, err)
	}

	// Tips scope to their question.
	tip1 := &model.Tip{
		TipID:        uuid.NewString(),
		QuestionID:   q1.QuestionID,
		Tip:          "Think about query patterns first",
		CreationTime: time.Now().UTC(),
		Version:      model.AppVersion,
	}
	if err := s.Tips().Put(ctx, tip1, []float32{0, 0, 1}); err != nil {
		t.Fatalf("PutTip: %v", err)
	}
	if err := s.Tips().Put(ctx, tip1, []float32{0, 0, 1}); err != model.ErrConflict {
		t.Fatalf("PutTip duplicate id: want ErrConflict, got %v", err)
	}
	gotTip, err := s.Tips().Get(ctx, tip1.TipID)
	if err != nil || gotTip == nil || gotTip.Tip != tip1.Tip {
		t.Fatalf("GetTip: got=%v err=%v", gotTip, err)
	}
	if ok, err := s.Tips().Exists(ctx, tip1.TipID); err != nil || !ok {
		t.Fatalf("TipExists: ok=%v err=%v", ok, err)
	}
	if ok, err := s.Tips().Exists(ctx, uuid.NewString()); err != nil || ok {
		t.Fatalf("TipExists unknown: ok=%v err=%v", ok, err)
	}
	tipVecs, err := s.Tips().ListVectors(ctx, store.TipScope(q1.QuestionID))
	if err != nil || len(tipVecs) != 1 {
		t.Fatalf("ListVectors tips: n=%d err=%v", len(tipVecs), err)
	}
	// Tips of another question are invisible here.
	tipVecs, err = s.Tips().ListVectors(ctx, store.TipScope(q2.QuestionID))
	if err != nil || len(tipVecs) != 0 {
		t.Fatalf("ListVectors tips other question: n=%d err=%v", len(tipVecs), err)
	}
	if _, err := s.Tips().Get(ctx, uuid.NewString()); err != model.ErrNotFound {
		t.Fatalf("GetTip unknown: want ErrNotFound, got %v", err)
	}
}

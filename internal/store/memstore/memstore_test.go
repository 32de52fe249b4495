package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewkit/interview-assistant/internal/model"
	"github.com/interviewkit/interview-assistant/internal/store"
	"github.com/interviewkit/interview-assistant/internal/store/storetest"
)

func TestCompliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New(time.Hour)
	})
}

func question(userID, text string) *model.Question {
	return &model.Question{
		QuestionContent: model.QuestionContent{Question: text},
		QuestionID:      uuid.NewString(),
		CreationTime:    time.Now().UTC(),
		Version:         model.AppVersion,
		Request: model.QuestionRequest{
			UserID:       userID,
			QuestionType: model.QuestionTypeKnowledge,
			JobTitle:     model.JobTitleDataAnalyst,
			Skill:        "statistics",
			N:            1,
		},
	}
}

func TestZeroTTLEntriesAreInvisible(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	q := question("u1", "What is a p-value?")
	require.NoError(t, s.Questions().Put(ctx, q, []float32{1, 0}))

	_, err := s.Questions().Get(ctx, q.QuestionID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	ok, err := s.Questions().Exists(ctx, q.QuestionID)
	require.NoError(t, err)
	assert.False(t, ok)

	vecs, err := s.Questions().ListVectors(ctx, store.QuestionScope(q.Request))
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestExpiredEntriesLeaveTheScopeIndex(t *testing.T) {
	s := New(20 * time.Millisecond)
	ctx := context.Background()

	q := question("u1", "Explain a JOIN")
	require.NoError(t, s.Questions().Put(ctx, q, []float32{1, 0}))

	vecs, err := s.Questions().ListVectors(ctx, store.QuestionScope(q.Request))
	require.NoError(t, err)
	require.Len(t, vecs, 1)

	time.Sleep(30 * time.Millisecond)

	vecs, err = s.Questions().ListVectors(ctx, store.QuestionScope(q.Request))
	require.NoError(t, err)
	assert.Empty(t, vecs)
	_, err = s.Questions().Get(ctx, q.QuestionID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// An expired id may be written again without a conflict.
	require.NoError(t, s.Questions().Put(ctx, q, []float32{1, 0}))
}

func TestConcurrentPutsStayConsistent(t *testing.T) {
	s := New(time.Hour)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	req := model.QuestionRequest{
		UserID:       "u-conc",
		QuestionType: model.QuestionTypeExercise,
		JobTitle:     model.JobTitleDataScientist,
		Skill:        "python",
		N:            1,
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := question("u-conc", "q")
			q.Request = req
			_ = s.Questions().Put(ctx, q, []float32{1})
		}()
	}
	wg.Wait()

	vecs, err := s.Questions().ListVectors(ctx, store.QuestionScope(req))
	require.NoError(t, err)
	assert.Len(t, vecs, n)
}

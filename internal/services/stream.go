package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/interviewkit/interview-assistant/internal/genai"
	"github.com/interviewkit/interview-assistant/internal/model"
	"github.com/interviewkit/interview-assistant/internal/store"
)

// Streaming trades the duplicate-rejection loop for live delivery: fragments
// reach the caller as the model emits them, so a rejected candidate could not
// be retried without retracting already-delivered text. The assembled item is
// still embedded and persisted, which keeps it in the reference set for every
// later non-streaming request.

// GenerateQuestionStream produces a single question, forwarding raw model
// output fragments to onFragment as they arrive. The stored question is
// returned once the stream completes and the item is persisted.
func (s *QuestionService) GenerateQuestionStream(ctx context.Context, req model.QuestionRequest, onFragment genai.FragmentFunc) (*model.Question, error) {
	if err := validateQuestionRequest(req); err != nil {
		return nil, err
	}

	scope := store.QuestionScope(req)
	previous := s.previousQuestionTexts(ctx, scope)

	candidate, err := s.gen.GenerateQuestionStream(ctx, req, previous, onFragment)
	if err != nil {
		return nil, err
	}

	vec, err := s.emb.Embed(ctx, candidate.Question)
	if err != nil {
		return nil, fmt.Errorf("embed streamed question: %w", err)
	}

	q := &model.Question{
		QuestionContent: *candidate,
		QuestionID:      uuid.NewString(),
		CreationTime:    time.Now().UTC(),
		Version:         model.AppVersion,
		Request:         req,
	}

	mu := s.locks.get(scope)
	mu.Lock()
	defer mu.Unlock()
	if err := s.store.Questions().Put(ctx, q, vec); err != nil {
		return nil, err
	}
	return q, nil
}

// GenerateTipStream produces a single tip for questionID, forwarding model
// output fragments to onFragment as they arrive.
func (s *TipService) GenerateTipStream(ctx context.Context, questionID string, onFragment genai.FragmentFunc) (*model.Tip, error) {
	question, err := s.store.Questions().Get(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("resolve question %s: %w", questionID, err)
	}

	scope := store.TipScope(questionID)
	previous := s.previousTipTexts(ctx, scope)

	text, err := s.gen.GenerateTipStream(ctx, question, previous, onFragment)
	if err != nil {
		return nil, err
	}

	vec, err := s.emb.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed streamed tip: %w", err)
	}

	tip := &model.Tip{
		TipID:        uuid.NewString(),
		QuestionID:   questionID,
		Tip:          text,
		CreationTime: time.Now().UTC(),
		Version:      model.AppVersion,
	}

	mu := s.locks.get(scope)
	mu.Lock()
	defer mu.Unlock()
	if err := s.store.Tips().Put(ctx, tip, vec); err != nil {
		return nil, err
	}
	return tip, nil
}

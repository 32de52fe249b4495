package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/interviewkit/interview-assistant/internal/embeddings"
	"github.com/interviewkit/interview-assistant/internal/genai"
	"github.com/interviewkit/interview-assistant/internal/model"
	"github.com/interviewkit/interview-assistant/internal/similarity"
	"github.com/interviewkit/interview-assistant/internal/store"
)

// TipService drives the uniqueness-enforcing loop for tips. A tip's dedup
// scope is the single question it targets: it is compared only against the
// other tips of that question.
type TipService struct {
	store       store.Store
	emb         embeddings.EmbeddingProvider
	gen         genai.Generator
	policy      similarity.Policy
	maxAttempts int
	locks       *scopeLocks
	log         zerolog.Logger
}

func NewTipService(s store.Store, emb embeddings.EmbeddingProvider, gen genai.Generator, policy similarity.Policy, maxAttempts int, log zerolog.Logger) *TipService {
	return &TipService{
		store:       s,
		emb:         emb,
		gen:         gen,
		policy:      policy,
		maxAttempts: maxAttempts,
		locks:       newScopeLocks(),
		log:         log,
	}
}

// GenerateTip produces one tip unique among the tips of questionID.
// An unknown or expired question fails with model.ErrNotFound before any
// generation attempt: the target will never appear, so retrying is useless.
func (s *TipService) GenerateTip(ctx context.Context, questionID string) (*model.Tip, error) {
	question, err := s.store.Questions().Get(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("resolve question %s: %w", questionID, err)
	}

	scope := store.TipScope(questionID)
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		previous := s.previousTipTexts(ctx, scope)

		candidate, err := s.gen.GenerateTip(ctx, question, previous)
		if err != nil {
			lastErr = err
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("tip generation failed")
			continue
		}

		vec, err := s.emb.Embed(ctx, candidate)
		if err != nil {
			lastErr = err
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("tip embedding failed")
			continue
		}

		tip, err := s.acceptTip(ctx, questionID, scope, candidate, vec)
		switch {
		case err == nil:
			return tip, nil
		case errors.Is(err, errDuplicate) || errors.Is(err, similarity.ErrZeroVector):
			lastErr = err
			s.log.Debug().Int("attempt", attempt).Str("question", questionID).Msg("tip candidate rejected")
			continue
		case errors.Is(err, model.ErrConflict):
			s.log.Error().Err(err).Msg("tip id collision on accept")
			return nil, err
		default:
			lastErr = err
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("tip uniqueness check failed")
			continue
		}
	}

	return nil, &model.ExhaustedError{Requested: 1, Generated: 0, Attempts: s.maxAttempts, Last: lastErr}
}

// GetTip resolves a stored tip by id.
func (s *TipService) GetTip(ctx context.Context, tipID string) (*model.Tip, error) {
	return s.store.Tips().Get(ctx, tipID)
}

// ListTips returns the live tips of one question.
func (s *TipService) ListTips(ctx context.Context, questionID string) ([]*model.Tip, error) {
	return s.store.Tips().ListByScope(ctx, store.TipScope(questionID))
}

func (s *TipService) acceptTip(ctx context.Context, questionID string, scope store.ScopeKey, text string, vec []float32) (*model.Tip, error) {
	mu := s.locks.get(scope)
	mu.Lock()
	defer mu.Unlock()

	refs, err := s.store.Tips().ListVectors(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list scope vectors: %w", err)
	}
	dup, err := s.policy.IsDuplicate(vec, vectorsOf(refs))
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, errDuplicate
	}

	tip := &model.Tip{
		TipID:        uuid.NewString(),
		QuestionID:   questionID,
		Tip:          text,
		CreationTime: time.Now().UTC(),
		Version:      model.AppVersion,
	}
	if err := s.store.Tips().Put(ctx, tip, vec); err != nil {
		return nil, err
	}
	return tip, nil
}

func (s *TipService) previousTipTexts(ctx context.Context, scope store.ScopeKey) []string {
	items, err := s.store.Tips().ListByScope(ctx, scope)
	if err != nil {
		s.log.Warn().Err(err).Str("scope", string(scope)).Msg("listing previous tips failed")
		return nil
	}
	texts := make([]string, 0, len(items))
	for _, t := range items {
		texts = append(texts, t.Tip)
	}
	return texts
}

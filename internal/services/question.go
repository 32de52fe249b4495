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

// errDuplicate is the internal control-flow signal for a semantic match.
// It consumes a retry attempt and never leaves the service.
var errDuplicate = errors.New("candidate too similar to existing items")

// QuestionService drives the uniqueness-enforcing generation loop for
// interview questions: generate, embed, compare against the scope's
// reference set, and accept or retry under a bounded attempt budget.
type QuestionService struct {
	store       store.Store
	emb         embeddings.EmbeddingProvider
	gen         genai.Generator
	policy      similarity.Policy
	maxAttempts int
	locks       *scopeLocks
	log         zerolog.Logger
}

func NewQuestionService(s store.Store, emb embeddings.EmbeddingProvider, gen genai.Generator, policy similarity.Policy, maxAttempts int, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		store:       s,
		emb:         emb,
		gen:         gen,
		policy:      policy,
		maxAttempts: maxAttempts,
		locks:       newScopeLocks(),
		log:         log,
	}
}

func validateQuestionRequest(req model.QuestionRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: userId is required", model.ErrValidation)
	}
	switch req.QuestionType {
	case model.QuestionTypeExercise, model.QuestionTypeKnowledge:
	default:
		return fmt.Errorf("%w: unsupported questionType %q", model.ErrValidation, req.QuestionType)
	}
	switch req.JobTitle {
	case model.JobTitleDataAnalyst, model.JobTitleDataScientist, model.JobTitleDataEngineer:
	default:
		return fmt.Errorf("%w: unsupported jobTitle %q", model.ErrValidation, req.JobTitle)
	}
	if req.Skill == "" {
		return fmt.Errorf("%w: skillToTest is required", model.ErrValidation)
	}
	if req.N < 1 {
		return fmt.Errorf("%w: n must be at least 1", model.ErrValidation)
	}
	return nil
}

// GenerateQuestions produces req.N unique questions. Items are generated
// sequentially; each accepted item joins the scope's reference set before
// the next one is attempted, so members of one batch are unique against
// each other as well as against stored history. On exhaustion the accepted
// prefix is returned together with a *model.ExhaustedError.
func (s *QuestionService) GenerateQuestions(ctx context.Context, req model.QuestionRequest) ([]*model.Question, error) {
	if err := validateQuestionRequest(req); err != nil {
		return nil, err
	}

	scope := store.QuestionScope(req)
	accepted := make([]*model.Question, 0, req.N)
	for i := 0; i < req.N; i++ {
		q, err := s.generateUnique(ctx, req, scope)
		if err != nil {
			var ex *model.ExhaustedError
			if errors.As(err, &ex) {
				ex.Requested = req.N
				ex.Generated = len(accepted)
				return accepted, ex
			}
			return accepted, err
		}
		accepted = append(accepted, q)
	}
	return accepted, nil
}

// GetQuestion resolves a stored question by id.
func (s *QuestionService) GetQuestion(ctx context.Context, questionID string) (*model.Question, error) {
	return s.store.Questions().Get(ctx, questionID)
}

// ListQuestions returns the live questions in the request's scope.
func (s *QuestionService) ListQuestions(ctx context.Context, req model.QuestionRequest) ([]*model.Question, error) {
	return s.store.Questions().ListByScope(ctx, store.QuestionScope(req))
}

// generateUnique runs the retry loop for a single item. Generation and
// embedding happen outside the scope lock; only list-compare-put is
// exclusive, so a concurrent accept in the same scope is always visible to
// the comparison that follows it.
func (s *QuestionService) generateUnique(ctx context.Context, req model.QuestionRequest, scope store.ScopeKey) (*model.Question, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		previous := s.previousQuestionTexts(ctx, scope)

		candidate, err := s.gen.GenerateQuestion(ctx, req, previous)
		if err != nil {
			lastErr = err
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("question generation failed")
			continue
		}

		vec, err := s.emb.Embed(ctx, candidate.Question)
		if err != nil {
			lastErr = err
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("candidate embedding failed")
			continue
		}

		q, err := s.acceptQuestion(ctx, req, scope, candidate, vec)
		switch {
		case err == nil:
			return q, nil
		case errors.Is(err, errDuplicate) || errors.Is(err, similarity.ErrZeroVector):
			lastErr = err
			s.log.Debug().Int("attempt", attempt).Str("scope", string(scope)).Msg("candidate rejected")
			continue
		case errors.Is(err, model.ErrConflict):
			// Fresh uuid collided with a live item: internal invariant
			// violation, not a transient fault.
			s.log.Error().Err(err).Msg("question id collision on accept")
			return nil, err
		default:
			lastErr = err
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("uniqueness check failed")
			continue
		}
	}

	return nil, &model.ExhaustedError{Attempts: s.maxAttempts, Last: lastErr}
}

// acceptQuestion is the exclusive compare-then-put step.
func (s *QuestionService) acceptQuestion(ctx context.Context, req model.QuestionRequest, scope store.ScopeKey, candidate *model.QuestionContent, vec []float32) (*model.Question, error) {
	mu := s.locks.get(scope)
	mu.Lock()
	defer mu.Unlock()

	refs, err := s.store.Questions().ListVectors(ctx, scope)
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

	q := &model.Question{
		QuestionContent: *candidate,
		QuestionID:      uuid.NewString(),
		CreationTime:    time.Now().UTC(),
		Version:         model.AppVersion,
		Request:         req,
	}
	if err := s.store.Questions().Put(ctx, q, vec); err != nil {
		return nil, err
	}
	return q, nil
}

// previousQuestionTexts feeds the prompt's "avoid these" block. A read
// failure here only degrades prompt steering, never correctness, so it is
// logged and ignored.
func (s *QuestionService) previousQuestionTexts(ctx context.Context, scope store.ScopeKey) []string {
	items, err := s.store.Questions().ListByScope(ctx, scope)
	if err != nil {
		s.log.Warn().Err(err).Str("scope", string(scope)).Msg("listing previous questions failed")
		return nil
	}
	texts := make([]string, 0, len(items))
	for _, q := range items {
		texts = append(texts, q.Question)
	}
	return texts
}

func vectorsOf(refs []store.ScopedVector) [][]float32 {
	out := make([][]float32, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Vector)
	}
	return out
}

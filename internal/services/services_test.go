package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewkit/interview-assistant/internal/genai"
	"github.com/interviewkit/interview-assistant/internal/model"
	"github.com/interviewkit/interview-assistant/internal/similarity"
	"github.com/interviewkit/interview-assistant/internal/store/memstore"
)

// fakeGenerator hands out scripted question texts in order; when the script
// runs out it keeps repeating the last entry.
type fakeGenerator struct {
	mu       sync.Mutex
	texts    []string
	tips     []string
	next     int
	nextTip  int
	genCalls atomic.Int32
	tipCalls atomic.Int32
}

func (g *fakeGenerator) GenerateQuestion(_ context.Context, req model.QuestionRequest, _ []string) (*model.QuestionContent, error) {
	g.genCalls.Add(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	text := g.texts[len(g.texts)-1]
	if g.next < len(g.texts) {
		text = g.texts[g.next]
		g.next++
	}
	return &model.QuestionContent{
		Question:           text,
		ExpectedAnswer:     "answer",
		EvaluationCriteria: "criteria",
		ExpectedDuration:   "10 minutes",
	}, nil
}

func (g *fakeGenerator) GenerateTip(_ context.Context, _ *model.Question, _ []string) (string, error) {
	g.tipCalls.Add(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	tip := g.tips[len(g.tips)-1]
	if g.nextTip < len(g.tips) {
		tip = g.tips[g.nextTip]
		g.nextTip++
	}
	return tip, nil
}

// fakeEmbedder maps each distinct text to its own axis, so distinct texts
// are orthogonal (similarity 0) and identical texts are identical vectors
// (similarity 1).
type fakeEmbedder struct {
	mu    sync.Mutex
	axes  map[string]int
	calls atomic.Int32
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{axes: make(map[string]int)}
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	e.mu.Lock()
	defer e.mu.Unlock()
	axis, ok := e.axes[text]
	if !ok {
		axis = len(e.axes)
		e.axes[text] = axis
	}
	vec := make([]float32, 64)
	vec[axis] = 1
	return vec, nil
}

func newQuestionService(t *testing.T, gen *fakeGenerator) (*QuestionService, *fakeEmbedder) {
	t.Helper()
	emb := newFakeEmbedder()
	svc := NewQuestionService(
		memstore.New(time.Hour),
		emb,
		questionOnlyGenerator{gen},
		similarity.NewPolicy(similarity.DefaultThreshold),
		5,
		zerolog.Nop(),
	)
	return svc, emb
}

// questionOnlyGenerator adapts the fake to the full Generator surface.
type questionOnlyGenerator struct {
	*fakeGenerator
}

func (g questionOnlyGenerator) GenerateQuestionStream(ctx context.Context, req model.QuestionRequest, previous []string, onFragment genai.FragmentFunc) (*model.QuestionContent, error) {
	content, err := g.GenerateQuestion(ctx, req, previous)
	if err != nil {
		return nil, err
	}
	if onFragment != nil {
		if err := onFragment(content.Question); err != nil {
			return nil, err
		}
	}
	return content, nil
}

func (g questionOnlyGenerator) GenerateTipStream(ctx context.Context, question *model.Question, previous []string, onFragment genai.FragmentFunc) (string, error) {
	tip, err := g.GenerateTip(ctx, question, previous)
	if err != nil {
		return "", err
	}
	if onFragment != nil {
		if err := onFragment(tip); err != nil {
			return "", err
		}
	}
	return tip, nil
}

func testRequest(n int) model.QuestionRequest {
	return model.QuestionRequest{
		UserID:       "u1",
		QuestionType: model.QuestionTypeExercise,
		JobTitle:     model.JobTitleDataEngineer,
		Skill:        "sql",
		N:            n,
	}
}

func TestGenerateQuestionsAcceptsDistinctBatch(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"q one", "q two", "q three"}}
	svc, _ := newQuestionService(t, gen)

	questions, err := svc.GenerateQuestions(context.Background(), testRequest(3))
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, int32(3), gen.genCalls.Load(), "distinct texts should each be accepted first try")
	for _, q := range questions {
		assert.NotEmpty(t, q.QuestionID)
		assert.Equal(t, model.AppVersion, q.Version)
		assert.Equal(t, "u1", q.Request.UserID)
	}
	assert.NotEqual(t, questions[0].QuestionID, questions[1].QuestionID)
}

func TestGenerateQuestionsExhaustsOnRepeatedText(t *testing.T) {
	// The generator never varies, so item 2 collides with item 1 on every
	// attempt and the loop must give up after exactly maxAttempts tries.
	gen := &fakeGenerator{texts: []string{"same question"}}
	svc, _ := newQuestionService(t, gen)

	questions, err := svc.GenerateQuestions(context.Background(), testRequest(2))
	require.Error(t, err)

	var ex *model.ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.ErrorIs(t, err, model.ErrExhausted)
	assert.Equal(t, 2, ex.Requested)
	assert.Equal(t, 1, ex.Generated)
	assert.Equal(t, 5, ex.Attempts)

	require.Len(t, questions, 1, "accepted prefix is returned alongside the error")
	assert.Equal(t, int32(1+5), gen.genCalls.Load())
}

func TestGenerateQuestionsBatchMembersJoinReferenceSet(t *testing.T) {
	// Second item first repeats item one's text, then varies. The repeat
	// must burn an attempt even though nothing was stored before the batch.
	gen := &fakeGenerator{texts: []string{"alpha", "alpha", "beta"}}
	svc, _ := newQuestionService(t, gen)

	questions, err := svc.GenerateQuestions(context.Background(), testRequest(2))
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "alpha", questions[0].Question)
	assert.Equal(t, "beta", questions[1].Question)
	assert.Equal(t, int32(3), gen.genCalls.Load())
}

func TestGenerateQuestionsScopesAreIndependent(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"same question"}}
	svc, _ := newQuestionService(t, gen)

	_, err := svc.GenerateQuestions(context.Background(), testRequest(1))
	require.NoError(t, err)

	other := testRequest(1)
	other.JobTitle = model.JobTitleDataAnalyst
	questions, err := svc.GenerateQuestions(context.Background(), other)
	require.NoError(t, err, "identical text is fine in a different scope")
	require.Len(t, questions, 1)
}

func TestGenerateQuestionsValidation(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"q"}}
	svc, _ := newQuestionService(t, gen)

	cases := []model.QuestionRequest{
		{QuestionType: model.QuestionTypeExercise, JobTitle: model.JobTitleDataAnalyst, Skill: "sql", N: 1},
		{UserID: "u1", QuestionType: "riddle", JobTitle: model.JobTitleDataAnalyst, Skill: "sql", N: 1},
		{UserID: "u1", QuestionType: model.QuestionTypeExercise, JobTitle: "plumber", Skill: "sql", N: 1},
		{UserID: "u1", QuestionType: model.QuestionTypeExercise, JobTitle: model.JobTitleDataAnalyst, N: 1},
		{UserID: "u1", QuestionType: model.QuestionTypeExercise, JobTitle: model.JobTitleDataAnalyst, Skill: "sql", N: 0},
	}
	for i, req := range cases {
		_, err := svc.GenerateQuestions(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrValidation, "case %d", i)
	}
	assert.Equal(t, int32(0), gen.genCalls.Load(), "invalid requests must not reach the generator")
}

func TestGenerateQuestionsConcurrentSameScope(t *testing.T) {
	// Every goroutine produces the same text; the per-scope lock must let
	// exactly one accept through.
	gen := &fakeGenerator{texts: []string{"contested question"}}
	svc, _ := newQuestionService(t, gen)

	const workers = 8
	var wg sync.WaitGroup
	var accepted atomic.Int32
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qs, err := svc.GenerateQuestions(context.Background(), testRequest(1))
			if err == nil && len(qs) == 1 {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())

	stored, err := svc.ListQuestions(context.Background(), testRequest(1))
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestGetQuestionUnknownID(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"q"}}
	svc, _ := newQuestionService(t, gen)

	_, err := svc.GetQuestion(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGenerateTipRequiresExistingQuestion(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"q"}, tips: []string{"tip"}}
	st := memstore.New(time.Hour)
	emb := newFakeEmbedder()
	svc := NewTipService(st, emb, questionOnlyGenerator{gen}, similarity.NewPolicy(similarity.DefaultThreshold), 5, zerolog.Nop())

	_, err := svc.GenerateTip(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, int32(0), gen.tipCalls.Load(), "resolution failure must precede any generation attempt")
}

func TestGenerateTipDeduplicatesPerQuestion(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"q one", "q two"}, tips: []string{"watch the indexes"}}
	st := memstore.New(time.Hour)
	emb := newFakeEmbedder()
	qsvc := NewQuestionService(st, emb, questionOnlyGenerator{gen}, similarity.NewPolicy(similarity.DefaultThreshold), 5, zerolog.Nop())
	tsvc := NewTipService(st, emb, questionOnlyGenerator{gen}, similarity.NewPolicy(similarity.DefaultThreshold), 5, zerolog.Nop())

	questions, err := qsvc.GenerateQuestions(context.Background(), testRequest(2))
	require.NoError(t, err)

	first, err := tsvc.GenerateTip(context.Background(), questions[0].QuestionID)
	require.NoError(t, err)
	assert.Equal(t, "watch the indexes", first.Tip)
	assert.Equal(t, questions[0].QuestionID, first.QuestionID)

	// Same text again for the same question: every retry collides.
	_, err = tsvc.GenerateTip(context.Background(), questions[0].QuestionID)
	var ex *model.ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, 5, ex.Attempts)

	// The same text is acceptable for a different question.
	second, err := tsvc.GenerateTip(context.Background(), questions[1].QuestionID)
	require.NoError(t, err)
	assert.Equal(t, "watch the indexes", second.Tip)
}

func TestGenerateTipRetriesUntilDistinct(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"q"}, tips: []string{"tip a", "tip a", "tip b"}}
	st := memstore.New(time.Hour)
	emb := newFakeEmbedder()
	qsvc := NewQuestionService(st, emb, questionOnlyGenerator{gen}, similarity.NewPolicy(similarity.DefaultThreshold), 5, zerolog.Nop())
	tsvc := NewTipService(st, emb, questionOnlyGenerator{gen}, similarity.NewPolicy(similarity.DefaultThreshold), 5, zerolog.Nop())

	questions, err := qsvc.GenerateQuestions(context.Background(), testRequest(1))
	require.NoError(t, err)
	qid := questions[0].QuestionID

	first, err := tsvc.GenerateTip(context.Background(), qid)
	require.NoError(t, err)
	assert.Equal(t, "tip a", first.Tip)

	second, err := tsvc.GenerateTip(context.Background(), qid)
	require.NoError(t, err)
	assert.Equal(t, "tip b", second.Tip)
	assert.Equal(t, int32(3), gen.tipCalls.Load(), "the duplicate attempt consumes one call")
}

func TestGenerateQuestionStreamDeliversFragmentsAndPersists(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"streamed question"}}
	svc, _ := newQuestionService(t, gen)

	var fragments []string
	q, err := svc.GenerateQuestionStream(context.Background(), testRequest(1), func(fragment string) error {
		fragments = append(fragments, fragment)
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.NotEmpty(t, fragments)

	stored, err := svc.GetQuestion(context.Background(), q.QuestionID)
	require.NoError(t, err)
	assert.Equal(t, "streamed question", stored.Question)
}

func TestGenerateQuestionStreamSkipsDuplicateCheck(t *testing.T) {
	// Streaming persists without the rejection loop, so a text that would
	// exhaust the non-streaming path goes through.
	gen := &fakeGenerator{texts: []string{"same question"}}
	svc, _ := newQuestionService(t, gen)

	_, err := svc.GenerateQuestions(context.Background(), testRequest(1))
	require.NoError(t, err)

	q, err := svc.GenerateQuestionStream(context.Background(), testRequest(1), nil)
	require.NoError(t, err)

	stored, err := svc.ListQuestions(context.Background(), testRequest(1))
	require.NoError(t, err)
	assert.Len(t, stored, 2, "streamed item joins the scope despite matching text")
	assert.Equal(t, "same question", q.Question)
}

func TestGenerateTipStreamRequiresExistingQuestion(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"q"}, tips: []string{"tip"}}
	st := memstore.New(time.Hour)
	svc := NewTipService(st, newFakeEmbedder(), questionOnlyGenerator{gen}, similarity.NewPolicy(similarity.DefaultThreshold), 5, zerolog.Nop())

	_, err := svc.GenerateTipStream(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGenerateQuestionsCanceledContext(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"q"}}
	svc, _ := newQuestionService(t, gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.GenerateQuestions(ctx, testRequest(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExhaustedErrorMessage(t *testing.T) {
	ex := &model.ExhaustedError{Requested: 3, Generated: 1, Attempts: 5, Last: fmt.Errorf("too similar")}
	assert.Contains(t, ex.Error(), "1 of 3")
}

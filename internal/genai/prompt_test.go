package genai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewkit/interview-assistant/internal/model"
)

func sampleRequest() model.QuestionRequest {
	return model.QuestionRequest{
		UserID:       "u1",
		QuestionType: model.QuestionTypeExercise,
		JobTitle:     model.JobTitleDataEngineer,
		Skill:        "spark",
		N:            2,
	}
}

func TestQuestionPromptIncludesRequestFields(t *testing.T) {
	p := QuestionPrompt(sampleRequest(), nil)

	assert.Contains(t, p, "exercise")
	assert.Contains(t, p, "data engineer")
	assert.Contains(t, p, "spark")
	assert.NotContains(t, p, "PREVIOUS QUESTION")
}

func TestQuestionPromptListsPreviousQuestions(t *testing.T) {
	p := QuestionPrompt(sampleRequest(), []string{"What is shuffling?", "Explain lazy evaluation"})

	assert.Contains(t, p, "PREVIOUS QUESTION 0 was What is shuffling?")
	assert.Contains(t, p, "PREVIOUS QUESTION 1 was Explain lazy evaluation")
}

func TestTipPromptCarriesQuestionContext(t *testing.T) {
	q := &model.Question{
		QuestionContent: model.QuestionContent{
			Question:           "Optimize this join",
			ExpectedAnswer:     "broadcast the small side",
			EvaluationCriteria: "correctness, clarity",
		},
		QuestionID:   "q1",
		CreationTime: time.Now(),
		Request:      sampleRequest(),
	}

	p := TipPrompt(q, []string{"Consider data sizes"})

	assert.Contains(t, p, "Optimize this join")
	assert.Contains(t, p, "broadcast the small side")
	assert.Contains(t, p, "PREVIOUS TIP 0: Consider data sizes")
	assert.Contains(t, p, "Do not reveal the ANSWER")
}

func TestParseQuestionContent(t *testing.T) {
	raw := `{"question":"Q","expectedAnswer":"A","evaluationCriteria":"C","expectedDuration":"5 minutes"}`
	content, err := ParseQuestionContent(raw)
	require.NoError(t, err)
	assert.Equal(t, "Q", content.Question)
	assert.Equal(t, "5 minutes", content.ExpectedDuration)
}

func TestParseQuestionContentStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"question\":\"Q\",\"expectedAnswer\":\"A\",\"evaluationCriteria\":\"C\",\"expectedDuration\":\"5m\"}\n```"
	content, err := ParseQuestionContent(raw)
	require.NoError(t, err)
	assert.Equal(t, "Q", content.Question)
}

func TestParseQuestionContentRejectsGarbage(t *testing.T) {
	_, err := ParseQuestionContent("not json at all")
	assert.Error(t, err)

	_, err = ParseQuestionContent(`{"expectedAnswer":"A"}`)
	assert.Error(t, err)
}

// Package genai defines the content-generation collaborator interfaces and
// shared prompt construction. Concrete chat clients live in subpackages.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/interviewkit/interview-assistant/internal/model"
)

// QuestionGenerator produces one candidate question for a request.
// previous carries the question texts already accepted in the scope so the
// model is steered away from them; the uniqueness guarantee itself comes
// from the embedding check, not from the prompt.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, req model.QuestionRequest, previous []string) (*model.QuestionContent, error)
}

// TipGenerator produces one candidate tip for a stored question.
type TipGenerator interface {
	GenerateTip(ctx context.Context, question *model.Question, previous []string) (string, error)
}

// FragmentFunc receives raw text fragments as the model emits them.
// Returning an error aborts the stream.
type FragmentFunc func(fragment string) error

// StreamingQuestionGenerator emits fragments as they arrive and returns the
// content parsed from the assembled text.
type StreamingQuestionGenerator interface {
	GenerateQuestionStream(ctx context.Context, req model.QuestionRequest, previous []string, onFragment FragmentFunc) (*model.QuestionContent, error)
}

// StreamingTipGenerator emits fragments as they arrive and returns the
// assembled tip text.
type StreamingTipGenerator interface {
	GenerateTipStream(ctx context.Context, question *model.Question, previous []string, onFragment FragmentFunc) (string, error)
}

// Generator is the full collaborator surface the services depend on.
type Generator interface {
	QuestionGenerator
	TipGenerator
	StreamingQuestionGenerator
	StreamingTipGenerator
}

// ParseQuestionContent decodes a model response into QuestionContent.
// Tolerates markdown code fences around the JSON object.
func ParseQuestionContent(raw string) (*model.QuestionContent, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var content model.QuestionContent
	if err := json.Unmarshal([]byte(text), &content); err != nil {
		return nil, fmt.Errorf("parse question content: %w", err)
	}
	if content.Question == "" {
		return nil, fmt.Errorf("parse question content: empty question field")
	}
	return &content, nil
}

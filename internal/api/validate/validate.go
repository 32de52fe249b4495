// Package validate checks request payloads at the HTTP boundary so malformed
// input is rejected before it reaches a service.
package validate

import (
	"fmt"

	"github.com/interviewkit/interview-assistant/internal/model"
)

// QuestionRequest checks the closed enums and required fields of a question
// generation request.
func QuestionRequest(req model.QuestionRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("userId is required")
	}
	switch req.QuestionType {
	case model.QuestionTypeExercise, model.QuestionTypeKnowledge:
	default:
		return fmt.Errorf("questionType must be %q or %q", model.QuestionTypeExercise, model.QuestionTypeKnowledge)
	}
	switch req.JobTitle {
	case model.JobTitleDataAnalyst, model.JobTitleDataScientist, model.JobTitleDataEngineer:
	default:
		return fmt.Errorf("jobTitle must be one of %q, %q, %q",
			model.JobTitleDataAnalyst, model.JobTitleDataScientist, model.JobTitleDataEngineer)
	}
	if req.Skill == "" {
		return fmt.Errorf("skillToTest is required")
	}
	if req.N < 1 {
		return fmt.Errorf("n must be at least 1")
	}
	return nil
}

// QuestionScope checks the fields that name a dedup scope, for list
// endpoints that take no skill or batch size.
func QuestionScope(req model.QuestionRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("userId is required")
	}
	switch req.QuestionType {
	case model.QuestionTypeExercise, model.QuestionTypeKnowledge:
	default:
		return fmt.Errorf("questionType must be %q or %q", model.QuestionTypeExercise, model.QuestionTypeKnowledge)
	}
	switch req.JobTitle {
	case model.JobTitleDataAnalyst, model.JobTitleDataScientist, model.JobTitleDataEngineer:
	default:
		return fmt.Errorf("jobTitle must be one of %q, %q, %q",
			model.JobTitleDataAnalyst, model.JobTitleDataScientist, model.JobTitleDataEngineer)
	}
	return nil
}

// QuestionID checks a path-supplied question id.
func QuestionID(id string) error {
	if id == "" {
		return fmt.Errorf("questionId is required")
	}
	return nil
}

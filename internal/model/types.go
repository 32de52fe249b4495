package model

import "time"

// AppVersion is stamped on every accepted item.
const AppVersion = "0.1.0"

// QuestionType is the closed set of supported question kinds.
type QuestionType string

const (
	QuestionTypeExercise  QuestionType = "exercise"
	QuestionTypeKnowledge QuestionType = "knowledge question"
)

// JobTitle is the closed set of supported interview roles.
type JobTitle string

const (
	JobTitleDataAnalyst   JobTitle = "data analyst"
	JobTitleDataScientist JobTitle = "data scientist"
	JobTitleDataEngineer  JobTitle = "data engineer"
)

// QuestionRequest describes a batch of questions to generate for one user.
type QuestionRequest struct {
	UserID       string       `json:"userId"`
	QuestionType QuestionType `json:"questionType"`
	JobTitle     JobTitle     `json:"jobTitle"`
	Skill        string       `json:"skillToTest"`
	N            int          `json:"n"`
}

// QuestionContent is the raw output of one question generation call, before
// the candidate is accepted and given an identity.
type QuestionContent struct {
	Question           string `json:"question"`
	ExpectedAnswer     string `json:"expectedAnswer"`
	EvaluationCriteria string `json:"evaluationCriteria"`
	ExpectedDuration   string `json:"expectedDuration"`
}

// Question is an accepted, stored interview question. Immutable once
// written; it disappears only through TTL expiry.
type Question struct {
	QuestionContent
	QuestionID   string          `json:"questionId"`
	CreationTime time.Time       `json:"creationTime"`
	Version      string          `json:"appVersion"`
	Request      QuestionRequest `json:"request"`
}

// Tip is an accepted hint tied to a stored question.
type Tip struct {
	TipID        string    `json:"tipId"`
	QuestionID   string    `json:"questionId"`
	Tip          string    `json:"tip"`
	CreationTime time.Time `json:"creationTime"`
	Version      string    `json:"appVersion"`
}

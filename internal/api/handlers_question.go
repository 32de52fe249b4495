package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/interviewkit/interview-assistant/internal/api/respond"
	"github.com/interviewkit/interview-assistant/internal/api/validate"
	"github.com/interviewkit/interview-assistant/internal/model"
	"github.com/interviewkit/interview-assistant/internal/services"
)

type QuestionHandler struct {
	svc *services.QuestionService
}

func NewQuestionHandler(svc *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

// exhaustedResponse carries the accepted prefix of a partially failed batch.
type exhaustedResponse struct {
	Error     string            `json:"error"`
	Requested int               `json:"requested"`
	Generated int               `json:"generated"`
	Questions []*model.Question `json:"questions"`
}

// GenerateQuestions POST /api/questions
func (h *QuestionHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req model.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.QuestionRequest(req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	questions, err := h.svc.GenerateQuestions(r.Context(), req)
	if err != nil {
		var ex *model.ExhaustedError
		if errors.As(err, &ex) {
			respond.WriteJSON(w, http.StatusConflict, exhaustedResponse{
				Error:     ex.Error(),
				Requested: ex.Requested,
				Generated: ex.Generated,
				Questions: questions,
			})
			return
		}
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
		"count":     len(questions),
	})
}

// GetQuestion GET /api/questions/{questionId}
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionId"]
	if err := validate.QuestionID(id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	q, err := h.svc.GetQuestion(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, q)
}

// ListQuestions GET /api/questions?userId=...&jobTitle=...&questionType=...
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()
	req := model.QuestionRequest{
		UserID:       qp.Get("userId"),
		QuestionType: model.QuestionType(qp.Get("questionType")),
		JobTitle:     model.JobTitle(qp.Get("jobTitle")),
	}
	if err := validate.QuestionScope(req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.svc.ListQuestions(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Question{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"questions": out,
		"count":     len(out),
	})
}

// writeServiceError maps service-layer sentinel errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}

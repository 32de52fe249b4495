package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/interviewkit/interview-assistant/internal/api/respond"
	"github.com/interviewkit/interview-assistant/internal/api/validate"
	"github.com/interviewkit/interview-assistant/internal/model"
	"github.com/interviewkit/interview-assistant/internal/services"
)

type TipHandler struct {
	svc *services.TipService
}

func NewTipHandler(svc *services.TipService) *TipHandler {
	return &TipHandler{svc: svc}
}

// GenerateTip POST /api/questions/{questionId}/tips
func (h *TipHandler) GenerateTip(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionId"]
	if err := validate.QuestionID(id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	tip, err := h.svc.GenerateTip(r.Context(), id)
	if err != nil {
		var ex *model.ExhaustedError
		if errors.As(err, &ex) {
			respond.WriteConflict(w, ex.Error())
			return
		}
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, tip)
}

// ListTips GET /api/questions/{questionId}/tips
func (h *TipHandler) ListTips(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionId"]
	if err := validate.QuestionID(id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	tips, err := h.svc.ListTips(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tips == nil {
		tips = []*model.Tip{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tips":  tips,
		"count": len(tips),
	})
}

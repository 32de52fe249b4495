package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/interviewkit/interview-assistant/internal/api/respond"
	"github.com/interviewkit/interview-assistant/internal/api/validate"
	"github.com/interviewkit/interview-assistant/internal/model"
)

// SSE event stream: each model fragment goes out as a data event the moment
// it arrives, and the stored item follows as a final "result" event. Items
// delivered this way skip the duplicate-rejection loop; they are still
// embedded and persisted so later requests compare against them.

type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}
	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) start() {
	if s.started {
		return
	}
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
	s.started = true
}

func (s *sseWriter) fragment(text string) error {
	s.start()
	payload, err := json.Marshal(map[string]string{"fragment": text})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseWriter) event(name string, data interface{}) {
	s.start()
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode SSE event")
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload)
	s.flusher.Flush()
}

// fail reports an error to the client. Before the first fragment a regular
// JSON error response still works; after it the status line is gone, so the
// error goes out as a terminal SSE event instead.
func (s *sseWriter) fail(err error, fallback func(http.ResponseWriter, error)) {
	if !s.started {
		fallback(s.w, err)
		return
	}
	s.event("error", map[string]string{"message": err.Error()})
}

// StreamQuestion POST /api/questions/stream
// Streams a single question; the request's n is ignored.
func (h *QuestionHandler) StreamQuestion(w http.ResponseWriter, r *http.Request) {
	var req model.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.N == 0 {
		req.N = 1
	}
	if err := validate.QuestionRequest(req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}

	q, err := h.svc.GenerateQuestionStream(r.Context(), req, sse.fragment)
	if err != nil {
		sse.fail(err, writeServiceError)
		return
	}
	sse.event("result", q)
}

// StreamTip POST /api/questions/{questionId}/tips/stream
func (h *TipHandler) StreamTip(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionId"]
	if err := validate.QuestionID(id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}

	tip, err := h.svc.GenerateTipStream(r.Context(), id, sse.fragment)
	if err != nil {
		sse.fail(err, writeServiceError)
		return
	}
	sse.event("result", tip)
}

package api

import (
	"github.com/gorilla/mux"

	"github.com/interviewkit/interview-assistant/internal/api/recovery"
	"github.com/interviewkit/interview-assistant/internal/services"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(qsvc *services.QuestionService, tsvc *services.TipService, isHealthy func() bool) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	questionHandler := NewQuestionHandler(qsvc)
	tipHandler := NewTipHandler(tsvc)
	healthHandler := NewHealthHandler(isHealthy)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Question endpoints
	router.HandleFunc("/api/questions", questionHandler.GenerateQuestions).Methods("POST")
	router.HandleFunc("/api/questions", questionHandler.ListQuestions).Methods("GET")
	router.HandleFunc("/api/questions/stream", questionHandler.StreamQuestion).Methods("POST")
	router.HandleFunc("/api/questions/{questionId}", questionHandler.GetQuestion).Methods("GET")

	// Tip endpoints
	router.HandleFunc("/api/questions/{questionId}/tips", tipHandler.GenerateTip).Methods("POST")
	router.HandleFunc("/api/questions/{questionId}/tips", tipHandler.ListTips).Methods("GET")
	router.HandleFunc("/api/questions/{questionId}/tips/stream", tipHandler.StreamTip).Methods("POST")

	return router
}

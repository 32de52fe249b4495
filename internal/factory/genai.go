package factory

import (
	"github.com/rs/zerolog"

	"github.com/interviewkit/interview-assistant/internal/config"
	"github.com/interviewkit/interview-assistant/internal/genai"
	genollama "github.com/interviewkit/interview-assistant/internal/genai/ollama"
	genopenai "github.com/interviewkit/interview-assistant/internal/genai/openai"
)

// NewGenerator creates the chat-backed content generator based on config.
func NewGenerator(cfg *config.Config, log zerolog.Logger) genai.Generator {
	switch cfg.ChatProvider {
	case "ollama":
		return genollama.New(cfg.OllamaURL, cfg.ChatModel, cfg.Temperature)
	case "", "openai":
		return genopenai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, cfg.Temperature)
	default:
		log.Warn().Str("provider", cfg.ChatProvider).Msg("unknown chat provider; using openai")
		return genopenai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, cfg.Temperature)
	}
}

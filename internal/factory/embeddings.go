package factory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/interviewkit/interview-assistant/internal/config"
	emb "github.com/interviewkit/interview-assistant/internal/embeddings"
	embollama "github.com/interviewkit/interview-assistant/internal/embeddings/ollama"
	embopenai "github.com/interviewkit/interview-assistant/internal/embeddings/openai"
)

// NewEmbeddingProvider creates an embedding provider based on config and
// wraps it in the memoizing cache. Launches optional async warmup; returns
// the provider immediately for fast startup.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) emb.EmbeddingProvider {
	var provider emb.EmbeddingProvider

	switch cfg.EmbedProvider {
	case "ollama":
		provider = embollama.New(cfg.OllamaURL, cfg.EmbedModel)
	case "", "openai":
		provider = embopenai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel)
	default:
		log.Warn().Str("provider", cfg.EmbedProvider).Msg("unknown embedding provider; using openai")
		provider = embopenai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel)
	}

	cached := emb.NewCache(provider, cfg.EmbedCacheSize)

	// Optional async warmup with configurable timeout; don't block startup
	go func() {
		warmupTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		warmupCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
		defer cancel()

		if vec, err := provider.Embed(warmupCtx, "factory-warmup-check"); err != nil || len(vec) == 0 {
			log.Warn().Err(err).Int("vec_len", len(vec)).
				Str("provider", cfg.EmbedProvider).Str("model", cfg.EmbedModel).
				Msg("embedding provider warmup failed")
		} else {
			log.Debug().Str("provider", cfg.EmbedProvider).Str("model", cfg.EmbedModel).
				Msg("embedding provider warmup completed")
		}
	}()

	return cached
}

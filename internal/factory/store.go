package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/interviewkit/interview-assistant/internal/config"
	storepkg "github.com/interviewkit/interview-assistant/internal/store"
	"github.com/interviewkit/interview-assistant/internal/store/memstore"
	"github.com/interviewkit/interview-assistant/internal/store/redisstore"
)

// NewStore returns the configured store backend. The Redis backend is opened
// synchronously so a bad address fails startup instead of the first request.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return memstore.New(cfg.ItemTTL()), nil
	case "redis":
		st, err := redisstore.Open(ctx, cfg.RedisAddr, cfg.ItemTTL())
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis store connected")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER: %s", cfg.StoreDriver)
	}
}

package cache

import (
	"go.uber.org/zap"

	"github.com/billing/backend/internal/infrastructure/config"
)

const rateKeyPrefix = "rates:"

// NewStoreFromConfig builds the rate cache backend selected in the
// configuration. A Redis backend that cannot be reached falls back to the
// in-memory store with a warning, so a flaky cache never takes billing down.
func NewStoreFromConfig(cfg *config.Config, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.RateCache.Backend == "redis" {
		store, err := NewRedisStore(
			cfg.Redis.Addr(),
			cfg.Redis.Password,
			cfg.Redis.DB,
			rateKeyPrefix,
			WithRedisStoreLogger(logger),
		)
		if err == nil {
			logger.Info("using Redis rate cache")
			return store
		}
		logger.Warn("Redis unavailable, falling back to in-memory rate cache. "+
			"Rate changes will not propagate across instances until their TTL expires.",
			zap.Error(err),
		)
	}

	return NewMemoryStore()
}

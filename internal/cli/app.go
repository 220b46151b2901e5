package cli

import (
	"fmt"
	"log/slog"

	"research/config"
	"research/internal/adapter/cache"
	"research/internal/adapter/embedding"
	"research/internal/adapter/store"
	"research/internal/usecase"
)

// openService builds the process-wide VectorService from config. The
// embedding provider stays uninitialized until the first embedding request.
func openService(cfg *config.Config, dir string, logger *slog.Logger) (*usecase.VectorService, error) {
	persister, err := store.OpenPersister(cfg.Store.Format, cfg.StorePath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	st := store.NewRecordStore(persister, store.Options{
		Dimension:         cfg.Store.Dimension,
		OwnerScopedUpsert: cfg.Store.OwnerScopedUpsert,
		Logger:            logger,
	})

	var qc *cache.QueryCache
	if cfg.Cache.Enabled {
		qc = cache.NewQueryCache(cfg.Cache.MaxSize, cfg.Cache.TTL)
	}

	return usecase.NewVectorService(st, embedding.NewLazyFromConfig(cfg.Embedding), usecase.ServiceOptions{
		Cache:  qc,
		Logger: logger,
	}), nil
}

func topKOr(flag int, cfg *config.Config) int {
	if flag > 0 {
		return flag
	}
	return cfg.Search.TopK
}

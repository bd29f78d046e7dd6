package store

import (
	"context"
	"log/slog"

	"voicedesk/internal/calls"
	"voicedesk/internal/config"
	"voicedesk/pkg/utils"
)

// Open selects the backend once at process startup.
//
// Memory is chosen when no DATABASE_URL is configured or FORCE_MEMORY_STORE
// is set. A Postgres connect or schema failure also falls back to memory,
// logged but never fatal: the demo must come up regardless.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) calls.Store {
	if cfg.ForceMemory {
		log.Info("store: memory backend forced via FORCE_MEMORY_STORE")
		return NewMemory()
	}
	if cfg.DatabaseURL == "" {
		log.Info("store: no DATABASE_URL, using memory backend")
		return NewMemory()
	}

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.DatabaseURL, utils.PostgresPoolConfig{})
	if err != nil {
		log.Warn("store: postgres unavailable, falling back to memory", "err", err)
		return NewMemory()
	}

	pg := NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		log.Warn("store: schema setup failed, falling back to memory", "err", err)
		_ = db.Close()
		return NewMemory()
	}

	log.Info("store: postgres backend ready")
	return pg
}

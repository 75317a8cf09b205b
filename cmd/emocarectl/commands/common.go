// Package commands holds the emocarectl subcommands.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"emocare/backend/internal/config"
	"emocare/backend/internal/db"
	"emocare/backend/internal/store"
)

// connect loads config and opens a small pool. Callers close the pool.
func connect(ctx context.Context) (config.Config, *pgxpool.Pool, error) {
	cfg := config.Load()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to connect to %s: %w", db.MaskURL(cfg.DatabaseURL), err)
	}
	return cfg, pool, nil
}

func newStore(cfg config.Config, pool *pgxpool.Pool) *store.Store {
	return store.New(pool, store.Options{
		AcquireTimeout: 10 * time.Second,
		Timezone:       cfg.SuggestionTimezone,
	})
}

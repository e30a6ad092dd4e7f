package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/shopstack/shopper-etl/internal/config"
	"github.com/shopstack/shopper-etl/internal/store"
)

// openStore opens the configured backend. The caller owns the returned store
// and must close it exactly once.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DSN())
	case "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

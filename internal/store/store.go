// Package store keeps the most recent drawdown series per asset category.
package store

import (
	"context"
	"fmt"

	"drawdown-service/internal/config"
	"drawdown-service/internal/model"
)

// Store holds one DrawdownSeries per category. Put replaces whatever was
// stored for the category; concurrent puts to one category are last writer
// wins, with no ordering guarantee between them.
type Store interface {
	// Get returns the stored series and whether the category was ever put.
	Get(ctx context.Context, category string) (model.DrawdownSeries, bool, error)
	Put(ctx context.Context, category string, series model.DrawdownSeries) error
	Close() error
}

// New builds the store selected by cfg.Driver.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.StoreMemory, "":
		return NewMemoryStore(), nil
	case config.StoreSQLite:
		return NewSQLiteStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.Driver)
	}
}

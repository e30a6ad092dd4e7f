// Package store persists the ETL tables. Two backends implement the same
// Store contract: Postgres (pgxpool) and SQLite (modernc, cgo-free).
package store

import (
	"context"

	"github.com/shopstack/shopper-etl/internal/model"
)

// Counts summarizes table sizes and purchase volume for status reporting.
type Counts struct {
	Staging        int64
	Customers      int64
	Products       int64
	Purchases      int64
	PurchaseVolume float64
}

// Store defines the persistence operations the pipeline needs. Loads are
// all-or-nothing per table; an earlier table is not rolled back when a later
// one fails.
type Store interface {
	// EnsureSchema creates any missing pipeline table and verifies that
	// pre-existing tables are structurally compatible with the declared schema.
	EnsureSchema(ctx context.Context) error

	// ReplaceStaging atomically replaces the staging table content with the
	// batch. A duplicate customer_id inside the batch rejects the whole batch.
	ReplaceStaging(ctx context.Context, records []model.StagingRecord) (int64, error)

	// Upserts, called in dimension-before-fact order.
	UpsertCustomers(ctx context.Context, rows []model.Customer) (int64, error)
	UpsertProducts(ctx context.Context, rows []model.Product) (int64, error)
	UpsertPurchases(ctx context.Context, rows []model.Purchase) (int64, error)

	// Run log
	CreateRun(ctx context.Context, csvPath string) (*model.Run, error)
	FinishRun(ctx context.Context, runID string, state model.RunState, rowsStaged int64, runErr error) error

	// Counts reports per-table row counts and total purchase volume.
	Counts(ctx context.Context) (*Counts, error)

	Close() error
}

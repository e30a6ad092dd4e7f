package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/shopstack/shopper-etl/internal/db"
	"github.com/shopstack/shopper-etl/internal/fault"
	"github.com/shopstack/shopper-etl/internal/model"
	"github.com/shopstack/shopper-etl/internal/schema"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool and verifies
// connectivity with a ping.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// One batch job; a handful of connections is plenty.
	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const existingColumnsSQL = `SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1`

// EnsureSchema creates each declared table if absent and checks a
// pre-existing table for structural compatibility.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, t := range schema.All() {
		existing, err := s.existingColumns(ctx, t.Name)
		if err != nil {
			return err
		}

		if len(existing) == 0 {
			if _, err := s.pool.Exec(ctx, t.CreateDDL(schema.Postgres)); err != nil {
				return fault.Wrapf(fault.Schema, err, "postgres: create table %s", t.Name)
			}
			continue
		}

		if err := t.Compatible(schema.Postgres, existing); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) existingColumns(ctx context.Context, table string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, existingColumnsSQL, table)
	if err != nil {
		return nil, fault.Wrapf(fault.Schema, err, "postgres: inspect table %s", table)
	}
	defer rows.Close()

	existing := map[string]string{}
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, fault.Wrapf(fault.Schema, err, "postgres: inspect table %s", table)
		}
		existing[name] = dataType
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Wrapf(fault.Schema, err, "postgres: inspect table %s", table)
	}
	return existing, nil
}

// ReplaceStaging truncates and reloads the staging table in one transaction.
func (s *PostgresStore) ReplaceStaging(ctx context.Context, records []model.StagingRecord) (int64, error) {
	n, err := db.ReplaceAll(ctx, s.pool, schema.Staging.Name, schema.Staging.ColumnNames(), stagingRows(records))
	if err != nil {
		return 0, fault.Wrap(fault.Load, err, "postgres: load staging")
	}
	return n, nil
}

func (s *PostgresStore) UpsertCustomers(ctx context.Context, rows []model.Customer) (int64, error) {
	return s.upsert(ctx, schema.Customers, customerRows(rows))
}

func (s *PostgresStore) UpsertProducts(ctx context.Context, rows []model.Product) (int64, error) {
	return s.upsert(ctx, schema.Products, productRows(rows))
}

func (s *PostgresStore) UpsertPurchases(ctx context.Context, rows []model.Purchase) (int64, error) {
	return s.upsert(ctx, schema.Purchases, purchaseRows(rows))
}

func (s *PostgresStore) upsert(ctx context.Context, t schema.Table, rows [][]any) (int64, error) {
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        t.Name,
		Columns:      t.ColumnNames(),
		ConflictKeys: t.KeyColumns(),
	}, rows)
	if err != nil {
		return 0, fault.Wrapf(fault.Load, err, "postgres: upsert %s", t.Name)
	}
	return n, nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, csvPath string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		CSVPath:   csvPath,
		State:     model.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO etl_runs (id, csv_path, state, rows_staged, started_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.CSVPath, string(run.State), int64(0), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, state model.RunState, rowsStaged int64, runErr error) error {
	var msg *string
	if runErr != nil {
		m := runErr.Error()
		msg = &m
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE etl_runs SET state = $1, rows_staged = $2, error = $3, finished_at = $4 WHERE id = $5`,
		string(state), rowsStaged, msg, time.Now().UTC(), runID,
	)
	return eris.Wrapf(err, "postgres: finish run %s", runID)
}

func (s *PostgresStore) Counts(ctx context.Context) (*Counts, error) {
	var c Counts
	counts := []struct {
		table string
		dst   *int64
	}{
		{schema.Staging.Name, &c.Staging},
		{schema.Customers.Name, &c.Customers},
		{schema.Products.Name, &c.Products},
		{schema.Purchases.Name, &c.Purchases},
	}
	for _, q := range counts {
		if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+q.table).Scan(q.dst); err != nil {
			return nil, eris.Wrapf(err, "postgres: count %s", q.table)
		}
	}
	if err := s.pool.QueryRow(ctx, "SELECT COALESCE(SUM(purchase_amount), 0) FROM purchases").Scan(&c.PurchaseVolume); err != nil {
		return nil, eris.Wrap(err, "postgres: sum purchase volume")
	}
	return &c, nil
}

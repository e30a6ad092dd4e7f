package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/shopstack/shopper-etl/internal/fault"
	"github.com/shopstack/shopper-etl/internal/model"
	"github.com/shopstack/shopper-etl/internal/schema"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local runs
// without a Postgres instance.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	for _, t := range schema.All() {
		existing, err := s.existingColumns(ctx, t.Name)
		if err != nil {
			return err
		}

		if len(existing) == 0 {
			if _, err := s.db.ExecContext(ctx, t.CreateDDL(schema.SQLite)); err != nil {
				return fault.Wrapf(fault.Schema, err, "sqlite: create table %s", t.Name)
			}
			continue
		}

		if err := t.Compatible(schema.SQLite, existing); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) existingColumns(ctx context.Context, table string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fault.Wrapf(fault.Schema, err, "sqlite: inspect table %s", table)
	}
	defer rows.Close()

	existing := map[string]string{}
	for rows.Next() {
		var name, declType string
		if err := rows.Scan(&name, &declType); err != nil {
			return nil, fault.Wrapf(fault.Schema, err, "sqlite: inspect table %s", table)
		}
		existing[name] = strings.ToLower(declType)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Wrapf(fault.Schema, err, "sqlite: inspect table %s", table)
	}
	return existing, nil
}

// ReplaceStaging deletes and reloads the staging table inside one
// transaction; any failure (including a duplicate customer_id in the batch)
// rolls the whole replacement back.
func (s *SQLiteStore) ReplaceStaging(ctx context.Context, records []model.StagingRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fault.Wrap(fault.Load, err, "sqlite: load staging: begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+schema.Staging.Name); err != nil {
		return 0, fault.Wrap(fault.Load, err, "sqlite: load staging: clear")
	}

	cols := schema.Staging.ColumnNames()
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.Staging.Name, strings.Join(cols, ", "), placeholders(len(cols)))

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fault.Wrap(fault.Load, err, "sqlite: load staging: prepare")
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, stagingValues(rec)...); err != nil {
			return 0, fault.Wrapf(fault.Load, err, "sqlite: load staging: customer_id %d", rec.CustomerID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fault.Wrap(fault.Load, err, "sqlite: load staging: commit")
	}
	return int64(len(records)), nil
}

func (s *SQLiteStore) UpsertCustomers(ctx context.Context, rows []model.Customer) (int64, error) {
	return s.upsert(ctx, schema.Customers, customerRows(rows))
}

func (s *SQLiteStore) UpsertProducts(ctx context.Context, rows []model.Product) (int64, error) {
	return s.upsert(ctx, schema.Products, productRows(rows))
}

func (s *SQLiteStore) UpsertPurchases(ctx context.Context, rows []model.Purchase) (int64, error) {
	return s.upsert(ctx, schema.Purchases, purchaseRows(rows))
}

// upsert runs row-by-row INSERT ... ON CONFLICT DO UPDATE inside one
// transaction, so a failing row aborts the whole table batch.
func (s *SQLiteStore) upsert(ctx context.Context, t schema.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fault.Wrapf(fault.Load, err, "sqlite: upsert %s: begin tx", t.Name)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL(t))
	if err != nil {
		return 0, fault.Wrapf(fault.Load, err, "sqlite: upsert %s: prepare", t.Name)
	}
	defer stmt.Close()

	var n int64
	for _, row := range rows {
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return 0, fault.Wrapf(fault.Load, err, "sqlite: upsert %s", t.Name)
		}
		if affected, err := res.RowsAffected(); err == nil {
			n += affected
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fault.Wrapf(fault.Load, err, "sqlite: upsert %s: commit", t.Name)
	}
	return n, nil
}

// upsertSQL renders the per-row upsert statement for a table. A table whose
// key spans every column gets DO NOTHING.
func upsertSQL(t schema.Table) string {
	cols := t.ColumnNames()
	keys := t.KeyColumns()

	action := "DO NOTHING"
	if nonKey := t.NonKeyColumns(); len(nonKey) > 0 {
		sets := make([]string, len(nonKey))
		for i, c := range nonKey {
			sets[i] = c + " = excluded." + c
		}
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) %s",
		t.Name, strings.Join(cols, ", "), placeholders(len(cols)), strings.Join(keys, ", "), action)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, csvPath string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		CSVPath:   csvPath,
		State:     model.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO etl_runs (id, csv_path, state, rows_staged, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CSVPath, string(run.State), int64(0), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, state model.RunState, rowsStaged int64, runErr error) error {
	var msg *string
	if runErr != nil {
		m := runErr.Error()
		msg = &m
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE etl_runs SET state = ?, rows_staged = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(state), rowsStaged, msg, time.Now().UTC(), runID,
	)
	return eris.Wrapf(err, "sqlite: finish run %s", runID)
}

func (s *SQLiteStore) Counts(ctx context.Context) (*Counts, error) {
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
		if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+q.table).Scan(q.dst); err != nil {
			return nil, eris.Wrapf(err, "sqlite: count %s", q.table)
		}
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(purchase_amount), 0) FROM purchases").Scan(&c.PurchaseVolume); err != nil {
		return nil, eris.Wrap(err, "sqlite: sum purchase volume")
	}
	return &c, nil
}

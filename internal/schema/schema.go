// Package schema is the static registry of the tables this pipeline owns:
// column declarations, per-dialect DDL generation, and compatibility checks
// against pre-existing tables.
package schema

import (
	"fmt"
	"strings"

	"github.com/shopstack/shopper-etl/internal/fault"
)

// Dialect selects the SQL flavor for DDL generation.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Type is the semantic column type, mapped per dialect at DDL time.
type Type string

const (
	Int       Type = "int"
	Float     Type = "float"
	Text      Type = "text"
	Bool      Type = "bool"
	Timestamp Type = "timestamp"
)

// Column declares one table column.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
	Key      bool // part of the primary key
}

// Table declares one table: ordered columns, key columns marked in place.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the declared column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// KeyColumns returns the names of the primary key columns in declared order.
func (t Table) KeyColumns() []string {
	var keys []string
	for _, c := range t.Columns {
		if c.Key {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

// NonKeyColumns returns the names of the columns outside the primary key.
func (t Table) NonKeyColumns() []string {
	var cols []string
	for _, c := range t.Columns {
		if !c.Key {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

var postgresTypes = map[Type]string{
	Int:       "INTEGER",
	Float:     "DOUBLE PRECISION",
	Text:      "TEXT",
	Bool:      "BOOLEAN",
	Timestamp: "TIMESTAMPTZ",
}

var sqliteTypes = map[Type]string{
	Int:       "INTEGER",
	Float:     "REAL",
	Text:      "TEXT",
	Bool:      "INTEGER",
	Timestamp: "DATETIME",
}

// CreateDDL renders CREATE TABLE IF NOT EXISTS for the given dialect.
// Idempotent against an existing table; use Compatible to detect drift.
func (t Table) CreateDDL(d Dialect) string {
	types := postgresTypes
	if d == SQLite {
		types = sqliteTypes
	}

	var defs []string
	for _, c := range t.Columns {
		def := fmt.Sprintf("\t%s %s", c.Name, types[c.Type])
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if keys := t.KeyColumns(); len(keys) > 0 {
		defs = append(defs, fmt.Sprintf("\tPRIMARY KEY (%s)", strings.Join(keys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", t.Name, strings.Join(defs, ",\n"))
}

// compatiblePostgres maps each semantic type to the information_schema
// data_type spellings it accepts for an already-existing column.
var compatiblePostgres = map[Type][]string{
	Int:       {"integer", "bigint", "smallint"},
	Float:     {"double precision", "real", "numeric"},
	Text:      {"text", "character varying", "character"},
	Bool:      {"boolean"},
	Timestamp: {"timestamp with time zone", "timestamp without time zone"},
}

// compatibleSQLite maps semantic types to accepted sqlite declared types.
var compatibleSQLite = map[Type][]string{
	Int:       {"integer", "int", "bigint"},
	Float:     {"real", "double", "float", "numeric"},
	Text:      {"text", "varchar", "char", "clob"},
	Bool:      {"integer", "boolean"},
	Timestamp: {"datetime", "timestamp", "text"},
}

// Compatible checks a declared table against the column types observed in an
// existing database table (name -> reported type, lower-cased). A declared
// column missing from the table, or present with an incompatible type, is a
// schema fault. Extra columns in the database are tolerated.
func (t Table) Compatible(d Dialect, existing map[string]string) error {
	accepted := compatiblePostgres
	if d == SQLite {
		accepted = compatibleSQLite
	}

	for _, c := range t.Columns {
		got, ok := existing[c.Name]
		if !ok {
			return fault.Newf(fault.Schema, "table %s: existing table is missing column %s", t.Name, c.Name)
		}
		if !typeAccepted(accepted[c.Type], got) {
			return fault.Newf(fault.Schema, "table %s: column %s has type %q, want %s", t.Name, c.Name, got, c.Type)
		}
	}
	return nil
}

func typeAccepted(accepted []string, got string) bool {
	got = strings.ToLower(strings.TrimSpace(got))
	// sqlite reports declared types like "VARCHAR(20)"; compare the base name.
	if i := strings.IndexByte(got, '('); i >= 0 {
		got = strings.TrimSpace(got[:i])
	}
	for _, a := range accepted {
		if got == a {
			return true
		}
	}
	return false
}

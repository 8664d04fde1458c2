// Package sqlstore provides the single concrete storage.Gateway adapter,
// backed by database/sql. It speaks either SQLite (the default, pure Go
// driver, good for local development and tests) or PostgreSQL, selected
// by driver name at construction.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/minhngo/storefront/internal/storage"
)

// Driver names accepted by New.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Ensure Store implements storage.Gateway
var _ storage.Gateway = (*Store)(nil)

// Store implements storage.Gateway over a SQL database.
type Store struct {
	db     *sql.DB
	driver string
}

// New opens the database and runs migrations. For SQLite, dsn is a file
// path and parent directories are created automatically. For PostgreSQL,
// dsn is a lib/pq connection string.
func New(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Select returns the rows of collection matching where.
func (s *Store) Select(ctx context.Context, collection string, where storage.Where, order *storage.Order) ([]storage.Row, error) {
	query := "SELECT * FROM " + collection
	clause, args := buildWhere(where)
	if clause != "" {
		query += " WHERE " + clause
	}
	if order != nil {
		query += " ORDER BY " + order.Column
		if order.Desc {
			query += " DESC"
		}
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", collection, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Insert stores a new row, assigning a UUID id when the caller did not
// provide one, and returns the stored row.
func (s *Store) Insert(ctx context.Context, collection string, row storage.Row) (storage.Row, error) {
	stored := make(storage.Row, len(row)+1)
	for k, v := range row {
		stored[k] = v
	}
	if stored["id"] == nil || stored["id"] == "" {
		stored["id"] = uuid.New().String()
	}

	columns := sortedColumns(stored)
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		args[i] = stored[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		collection,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	if _, err := s.db.ExecContext(ctx, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}

	return stored, nil
}

// Update applies patch to every row matching where and returns the
// updated rows.
func (s *Store) Update(ctx context.Context, collection string, where storage.Where, patch storage.Row) ([]storage.Row, error) {
	columns := sortedColumns(patch)
	sets := make([]string, len(columns))
	args := make([]any, 0, len(columns)+len(where.All)+len(where.Any))
	for i, col := range columns {
		sets[i] = col + " = ?"
		args = append(args, patch[col])
	}

	query := fmt.Sprintf("UPDATE %s SET %s", collection, strings.Join(sets, ", "))
	clause, whereArgs := buildWhere(where)
	if clause != "" {
		query += " WHERE " + clause
		args = append(args, whereArgs...)
	}
	query += " RETURNING *"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", collection, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Delete removes every row matching where and returns the removed count.
func (s *Store) Delete(ctx context.Context, collection string, where storage.Where) (int64, error) {
	query := "DELETE FROM " + collection
	clause, args := buildWhere(where)
	if clause != "" {
		query += " WHERE " + clause
	}

	result, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", collection, err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return count, nil
}

// buildWhere renders a storage.Where as a SQL fragment with ?-style
// placeholders. Nil predicate values become IS NULL.
func buildWhere(where storage.Where) (string, []any) {
	var parts []string
	var args []any

	for _, c := range where.All {
		if c.Value == nil {
			parts = append(parts, c.Column+" IS NULL")
			continue
		}
		parts = append(parts, c.Column+" = ?")
		args = append(args, c.Value)
	}

	if len(where.Any) > 0 {
		ors := make([]string, 0, len(where.Any))
		for _, c := range where.Any {
			if c.Value == nil {
				ors = append(ors, c.Column+" IS NULL")
				continue
			}
			ors = append(ors, c.Column+" = ?")
			args = append(args, c.Value)
		}
		parts = append(parts, "("+strings.Join(ors, " OR ")+")")
	}

	return strings.Join(parts, " AND "), args
}

// rebind converts ?-style placeholders to $n for PostgreSQL. The
// generated SQL never contains a literal question mark, so a plain scan
// is safe.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sortedColumns(row storage.Row) []string {
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

func scanRows(rows *sql.Rows) ([]storage.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []storage.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(storage.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

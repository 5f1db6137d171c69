// Package store persists users, shopping lists, items, categories and the
// item/category junction in SQLite.
//
// Every store shares one *sql.DB owned by the caller. Foreign keys are
// checked here on create and update; deletes never cascade, so dependent
// rows keep whatever reference they held.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// timestampLayout matches SQLite's CURRENT_TIMESTAMP.
const timestampLayout = "2006-01-02 15:04:05"

type scanner interface{ Scan(...any) error }

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Page limits a Find. Zero values mean no limit and no offset.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if p.Limit > 0 {
		b = b.Limit(uint64(p.Limit))
	}
	if p.Offset > 0 {
		if p.Limit <= 0 {
			// SQLite only accepts OFFSET after LIMIT.
			b = b.Limit(math.MaxInt64)
		}
		b = b.Offset(uint64(p.Offset))
	}
	return b
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func exec(ctx context.Context, q querier, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func insert(ctx context.Context, q querier, b sq.InsertBuilder) (int64, error) {
	result, err := exec(ctx, q, b)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// update writes sets to the row with the given id. An empty set is a no-op.
func update(ctx context.Context, q querier, table string, id int64, sets map[string]any) error {
	if len(sets) == 0 {
		return nil
	}
	_, err := exec(ctx, q, builder.Update(table).SetMap(sets).Where(sq.Eq{"id": id}))
	return err
}

func deleteByID(ctx context.Context, q querier, table string, id int64) error {
	result, err := exec(ctx, q, builder.Delete(table).Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound(table, id)
	}
	return nil
}

// getOne returns (nil, nil) when the query matches no row.
func getOne[T any](ctx context.Context, q querier, b sq.SelectBuilder, scan func(scanner) (*T, error)) (*T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	v, err := scan(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// find runs the query each time the returned sequence is ranged over. The
// connection is held until the loop ends, so the loop body must not call
// back into the store.
func find[T any](ctx context.Context, q querier, b sq.SelectBuilder, scan func(scanner) (*T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		query, args, err := b.ToSql()
		if err != nil {
			yield(zero, fmt.Errorf("build query: %w", err))
			return
		}
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			yield(zero, fmt.Errorf("query: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				yield(zero, fmt.Errorf("scan: %w", err))
				return
			}
			if !yield(*v, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, fmt.Errorf("iterate rows: %w", err))
		}
	}
}

func collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func exists(ctx context.Context, q querier, table string, where sq.Eq) (bool, error) {
	query, args, err := builder.Select("1").From(table).Where(where).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var one int
	err = q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s: %w", table, err)
	}
	return true, nil
}

// requireRow returns a *NotFoundError if table has no row with id.
func requireRow(ctx context.Context, q querier, table string, id int64) error {
	ok, err := exists(ctx, q, table, sq.Eq{"id": id})
	if err != nil {
		return err
	}
	if !ok {
		return notFound(table, id)
	}
	return nil
}

// checkRef returns a *ReferenceError if refTable has no row with id.
func checkRef(ctx context.Context, q querier, table, column, refTable string, id int64) error {
	ok, err := exists(ctx, q, refTable, sq.Eq{"id": id})
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Table: table, Column: column, RefTable: refTable, ID: id}
	}
	return nil
}

func parseTimestamp(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, ns.String, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("parse timestamp %q", ns.String)
}

// formatTimestamp drops sub-second precision to match CURRENT_TIMESTAMP.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}

// nullable turns a nil pointer into a NULL argument.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

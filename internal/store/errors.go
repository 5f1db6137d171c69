package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUniqueViolation    = errors.New("unique constraint violation")
	ErrReferenceViolation = errors.New("reference violation")
	ErrInexactPrice       = errors.New("unit price cannot be stored exactly")
)

// ConstraintError reports a write that collided with a unique index.
type ConstraintError struct {
	Table   string
	Columns []string
	Err     error
}

func (e *ConstraintError) Error() string {
	if e.Table == "" {
		return ErrUniqueViolation.Error()
	}
	return fmt.Sprintf("%s: duplicate %s", e.Table, strings.Join(e.Columns, ", "))
}

func (e *ConstraintError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUniqueViolation}
	}
	return []error{ErrUniqueViolation, e.Err}
}

// ReferenceError reports a foreign key value with no matching row.
type ReferenceError struct {
	Table    string
	Column   string
	RefTable string
	ID       int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s.%s: no %s row with id %d", e.Table, e.Column, e.RefTable, e.ID)
}

func (e *ReferenceError) Unwrap() error { return ErrReferenceViolation }

// NotFoundError reports an update or delete target that does not exist.
type NotFoundError struct {
	Table string
	Key   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Table, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(table string, id int64) *NotFoundError {
	return &NotFoundError{Table: table, Key: strconv.FormatInt(id, 10)}
}

// mapError converts SQLite unique violations into a *ConstraintError.
// Anything else is returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		table, cols := parseUniqueColumns(se.Error())
		return &ConstraintError{Table: table, Columns: cols, Err: err}
	}
	return err
}

// parseUniqueColumns extracts the table and columns from a message such as
// "UNIQUE constraint failed: item_categories.item_id, item_categories.category_id".
func parseUniqueColumns(msg string) (string, []string) {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return "", nil
	}
	rest := msg[i+len(marker):]
	if j := strings.Index(rest, " ("); j >= 0 {
		rest = rest[:j]
	}

	var table string
	var cols []string
	for _, part := range strings.Split(rest, ", ") {
		t, col, ok := strings.Cut(strings.TrimSpace(part), ".")
		if !ok {
			continue
		}
		table = t
		cols = append(cols, col)
	}
	return table, cols
}

// Package errors provides error-classification helpers for metric tagging.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Classify returns a normalized error type name suitable for tagging
// metrics and logs. Postgres errors map to a stable pg_* tag keyed by
// SQLSTATE; context cancellation keeps its own tags; everything else
// unwraps to the innermost concrete type and converts the type name to a
// tag-safe form.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) {
		return classifyPg(pgErr.Code)
	}
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}

// classifyPg maps the constraint codes the repositories raise onto named
// tags; any other SQLSTATE keeps its raw code.
func classifyPg(code string) string {
	switch code {
	case pgerrcode.UniqueViolation:
		return "pg_unique_violation"
	case pgerrcode.ForeignKeyViolation:
		return "pg_foreign_key_violation"
	case pgerrcode.NotNullViolation:
		return "pg_not_null_violation"
	case pgerrcode.CheckViolation:
		return "pg_check_violation"
	default:
		return "pg_" + strings.ToLower(code)
	}
}

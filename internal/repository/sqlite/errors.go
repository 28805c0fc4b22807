package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/minitoco/minitoco/internal/domain"
)

const checkConstraintMarker = "CHECK constraint failed: "

// classifyError translates a raw driver error into the domain vocabulary:
// missing row, named constraint violation, or the error unchanged. The
// driver reports violations only by message text, so the sniffing is
// confined to this package; nothing above it branches on strings.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if i := strings.Index(err.Error(), checkConstraintMarker); i >= 0 {
		return &domain.ConstraintError{Name: constraintName(err.Error()[i+len(checkConstraintMarker):])}
	}
	return err
}

// constraintName trims trailing driver detail (extended result codes in
// parentheses) from a constraint name.
func constraintName(s string) string {
	if j := strings.IndexAny(s, " ("); j >= 0 {
		return s[:j]
	}
	return s
}

// isUniqueConstraintError checks if the error is a SQLite unique
// constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package store

import (
	"database/sql"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// isNotFound reports whether err means the row does not exist, either as
// the raw sql error or as the categorized error from the repository layer.
func isNotFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var ge *goerrors.Error
	if errors.As(err, &ge) {
		return ge.Category == goerrors.CategoryNotFound
	}
	return false
}

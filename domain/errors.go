package domain

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by the errors this package builds.
const (
	CodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	CodeContactNotFound   = "CONTACT_NOT_FOUND"
	CodeCategoryNameTaken = "CATEGORY_NAME_TAKEN"
	CodeContactEmailTaken = "CONTACT_EMAIL_TAKEN"
	CodeStoreFailure      = "STORE_FAILURE"
	CodeCacheFailure      = "CACHE_FAILURE"
)

// ErrCategoryNotFound reports a category lookup that found nothing.
func ErrCategoryNotFound() error {
	return goerrors.New("category not found", goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(CodeCategoryNotFound)
}

// ErrContactNotFound reports a contact lookup that found nothing.
func ErrContactNotFound() error {
	return goerrors.New("contact not found", goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(CodeContactNotFound)
}

// ErrCategoryNameTaken reports a create or rename onto an existing name.
func ErrCategoryNameTaken() error {
	return goerrors.New("category name already exists", goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(CodeCategoryNameTaken)
}

// ErrContactEmailTaken reports a create or update onto an existing email.
func ErrContactEmailTaken() error {
	return goerrors.New("contact email already exists", goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(CodeContactEmailTaken)
}

// StoreFailure wraps an error raised by the durable store. The original
// error stays reachable through errors.Is and errors.As.
func StoreFailure(err error, op string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "store: "+op).
		WithCode(http.StatusInternalServerError).
		WithTextCode(CodeStoreFailure)
}

// CacheFailure wraps an error raised by the cache backend.
func CacheFailure(err error, op string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "cache: "+op).
		WithCode(http.StatusInternalServerError).
		WithTextCode(CodeCacheFailure)
}

// IsNotFound reports whether err is a NotFound failure of either entity.
func IsNotFound(err error) bool {
	return hasCategory(err, goerrors.CategoryNotFound)
}

// IsConflict reports whether err is a uniqueness Conflict.
func IsConflict(err error) bool {
	return hasCategory(err, goerrors.CategoryConflict)
}

// IsStoreFailure reports whether err was raised by the durable store.
func IsStoreFailure(err error) bool {
	return TextCode(err) == CodeStoreFailure
}

// IsCacheFailure reports whether err was raised by the cache backend.
func IsCacheFailure(err error) bool {
	return TextCode(err) == CodeCacheFailure
}

// TextCode returns the text code of the outermost categorized error in the
// chain, or the empty string.
func TextCode(err error) string {
	var ge *goerrors.Error
	if errors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

func hasCategory(err error, category goerrors.Category) bool {
	var ge *goerrors.Error
	if !errors.As(err, &ge) {
		return false
	}
	return ge.Category == category
}

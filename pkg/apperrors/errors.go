package apperrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrNoTenantScope  = errors.New("no tenant scope in context")
	ErrNoResultData   = errors.New("query has no stored result data")
	ErrDetachedSource = errors.New("query is detached from any data source")
)

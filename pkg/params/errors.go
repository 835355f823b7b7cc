// Package params resolves and validates parameter values for templated
// queries: schema-directed validation, dynamic date macro expansion,
// multi-value list joining, and placeholder extraction from mustache
// templates.
package params

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidParameterError reports every parameter name in a batch whose value
// is incompatible with its definition, or a dynamic date token that is not a
// recognized macro.
type InvalidParameterError struct {
	Names []string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("The following parameter values are incompatible with their definitions: %s", strings.Join(e.Names, ", "))
}

// QueryDetachedError indicates a query-backed parameter references a query
// with no data source. Unlike ordinary validation failures, this condition
// propagates to the caller: the parameter can never be validated, regardless
// of the supplied value.
type QueryDetachedError struct {
	QueryID string
}

func (e *QueryDetachedError) Error() string {
	return "This query is detached from any data source. Please select a different query."
}

// IsQueryDetached reports whether err is (or wraps) a QueryDetachedError.
func IsQueryDetached(err error) bool {
	var detached *QueryDetachedError
	return errors.As(err, &detached)
}

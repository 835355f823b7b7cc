package models

import "strings"

// ParameterType identifies which validator and which resolver transform apply
// to a parameter value. The set is closed; anything else fails validation.
type ParameterType string

const (
	TypeText                     ParameterType = "text"
	TypeTextPattern              ParameterType = "text-pattern"
	TypeNumber                   ParameterType = "number"
	TypeEnum                     ParameterType = "enum"
	TypeQuery                    ParameterType = "query"
	TypeDate                     ParameterType = "date"
	TypeDatetimeLocal            ParameterType = "datetime-local"
	TypeDatetimeWithSeconds      ParameterType = "datetime-with-seconds"
	TypeDateRange                ParameterType = "date-range"
	TypeDatetimeRange            ParameterType = "datetime-range"
	TypeDatetimeRangeWithSeconds ParameterType = "datetime-range-with-seconds"
)

// IsDate reports whether the type takes a single date/datetime value.
func (t ParameterType) IsDate() bool {
	switch t {
	case TypeDate, TypeDatetimeLocal, TypeDatetimeWithSeconds:
		return true
	}
	return false
}

// IsDateRange reports whether the type takes a {start, end} value.
func (t ParameterType) IsDateRange() bool {
	switch t {
	case TypeDateRange, TypeDatetimeRange, TypeDatetimeRangeWithSeconds:
		return true
	}
	return false
}

// MultiValuesOptions controls how list values are joined into a single
// string. Declaring the object (even empty) is what permits list values for
// enum and query parameters.
type MultiValuesOptions struct {
	Separator string `json:"separator"`
	Prefix    string `json:"prefix"`
	Suffix    string `json:"suffix"`
}

// ParameterDefinition is the declared type and constraints for one named
// parameter. Definitions are supplied with the query template and are
// immutable at resolution time.
type ParameterDefinition struct {
	Name string        `json:"name"`
	Type ParameterType `json:"type"`

	// EnumOptions holds the accepted values for enum parameters, either as
	// a []string or as a single newline-separated string.
	EnumOptions any `json:"enumOptions,omitempty"`

	// QueryID references the query whose latest result feeds dropdown
	// values for query parameters.
	QueryID string `json:"queryId,omitempty"`

	// Regex is the full-match pattern for text-pattern parameters.
	Regex string `json:"regex,omitempty"`

	MultiValuesOptions *MultiValuesOptions `json:"multiValuesOptions,omitempty"`
}

// AllowsMultipleValues reports whether a list value is acceptable for this
// definition. Per-element validity is not enough on its own.
func (d *ParameterDefinition) AllowsMultipleValues() bool {
	return d.MultiValuesOptions != nil
}

// EnumOptionsList normalizes EnumOptions to a slice: a string is split on
// newlines, a []string passes through, []any elements are stringified where
// possible. Anything else yields nil.
func (d *ParameterDefinition) EnumOptionsList() []string {
	switch opts := d.EnumOptions.(type) {
	case string:
		return strings.Split(opts, "\n")
	case []string:
		return opts
	case []any:
		out := make([]string, 0, len(opts))
		for _, o := range opts {
			if s, ok := o.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// FindDefinition returns the schema entry with the given name, or nil.
func FindDefinition(schema []ParameterDefinition, name string) *ParameterDefinition {
	for i := range schema {
		if schema[i].Name == name {
			return &schema[i]
		}
	}
	return nil
}

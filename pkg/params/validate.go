package params

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/skylark-data/query-engine/pkg/models"
)

// DropdownLookup supplies the accepted values for query-backed parameters,
// scoped to the caller's organization via the context.
type DropdownLookup interface {
	DropdownValues(ctx context.Context, queryID string) ([]DropdownValue, error)
}

// ValidateValue checks one raw value against one definition. The boolean is
// the accept decision. The error return is reserved for the detached-source
// condition on query-backed parameters; it is never set for ordinary
// invalidity. Any other failure inside a validator (malformed regex,
// unparseable date, lookup errors) normalizes to "invalid".
func ValidateValue(ctx context.Context, definition *models.ParameterDefinition, value any, lookup DropdownLookup) (bool, error) {
	switch definition.Type {
	case models.TypeText:
		_, ok := value.(string)
		return ok, nil

	case models.TypeTextPattern:
		return isRegexMatch(value, definition.Regex), nil

	case models.TypeNumber:
		return isNumber(value), nil

	case models.TypeEnum:
		return isValueWithinOptions(value, definition.EnumOptionsList(), definition.AllowsMultipleValues()), nil

	case models.TypeQuery:
		if lookup == nil {
			return false, nil
		}
		dropdowns, err := lookup.DropdownValues(ctx, definition.QueryID)
		if err != nil {
			if IsQueryDetached(err) {
				return false, err
			}
			return false, nil
		}
		options := make([]string, len(dropdowns))
		for i, d := range dropdowns {
			options[i] = d.Value
		}
		return isValueWithinOptions(value, options, definition.AllowsMultipleValues()), nil

	case models.TypeDate, models.TypeDatetimeLocal, models.TypeDatetimeWithSeconds:
		return isDate(value), nil

	case models.TypeDateRange, models.TypeDatetimeRange, models.TypeDatetimeRangeWithSeconds:
		return isDateRange(value), nil
	}

	// Unrecognized parameter type.
	return false, nil
}

// isRegexMatch requires the whole value to match the pattern. A pattern that
// fails to compile rejects the value rather than erroring.
func isRegexMatch(value any, pattern string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case int, int32, int64, float32, float64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	case string:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	}
	return false
}

// isValueWithinOptions accepts a scalar that is a member of options, or a
// list whose every element is a member. Lists additionally require the
// definition to allow multiple values.
func isValueWithinOptions(value any, options []string, allowList bool) bool {
	optionSet := make(map[string]bool, len(options))
	for _, o := range options {
		optionSet[o] = true
	}

	if list, ok := stringList(value); ok {
		if !allowList {
			return false
		}
		for _, v := range list {
			if !optionSet[v] {
				return false
			}
		}
		return true
	}

	return optionSet[valueToString(value)]
}

func valueToString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// dateLayouts are the literal date/datetime shapes validation accepts, most
// specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// isDate accepts a d_-prefixed dynamic token or a parseable date literal.
// Whether a dynamic token names a known macro is only checked at resolution.
func isDate(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	if IsDynamicDate(s) {
		return true
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// isDateRange accepts a d_-prefixed dynamic token or a {start, end} object
// whose endpoints both satisfy the date rule.
func isDateRange(value any) bool {
	switch v := value.(type) {
	case string:
		return IsDynamicDate(v)
	case map[string]any:
		start, startOK := v["start"]
		end, endOK := v["end"]
		return startOK && endOK && isDate(start) && isDate(end)
	case map[string]string:
		start, startOK := v["start"]
		end, endOK := v["end"]
		return startOK && endOK && isDate(start) && isDate(end)
	}
	return false
}

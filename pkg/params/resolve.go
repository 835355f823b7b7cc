package params

import (
	"fmt"
	"strings"

	"github.com/skylark-data/query-engine/pkg/models"
)

// JoinParameterListValues joins a multi-value parameter into one string using
// the definition's multiValuesOptions. A nil definition or absent options
// object falls back to a plain comma join with no prefix or suffix.
func JoinParameterListValues(definition *models.ParameterDefinition, values []string) string {
	separator := ","
	prefix := ""
	suffix := ""
	if definition != nil && definition.MultiValuesOptions != nil {
		opts := definition.MultiValuesOptions
		if opts.Separator != "" {
			separator = opts.Separator
		}
		prefix = opts.Prefix
		suffix = opts.Suffix
	}

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = prefix + v + suffix
	}
	return strings.Join(parts, separator)
}

// ResolveParameters transforms raw parameter values into the bindings map
// handed to the template renderer. Per value:
//
//   - lists are joined via the definition's multiValuesOptions
//   - d_-prefixed strings with a date or date-range definition expand to
//     concrete dates against the current clock
//   - everything else passes through unchanged, including values with no
//     schema definition
//
// The mapping is pure and independent across keys. An unrecognized dynamic
// date token is the one failure path: validation only checks that a value is
// date-shaped, not that the token names a known macro.
func ResolveParameters(parameters map[string]any, schema []models.ParameterDefinition) (map[string]any, error) {
	resolved := make(map[string]any, len(parameters))

	for key, value := range parameters {
		definition := models.FindDefinition(schema, key)

		if list, ok := stringList(value); ok {
			resolved[key] = JoinParameterListValues(definition, list)
			continue
		}

		if s, ok := value.(string); ok && IsDynamicDate(s) && definition != nil {
			switch {
			case definition.Type.IsDate():
				expanded, err := ExpandDate(definition.Type, s)
				if err != nil {
					return nil, err
				}
				resolved[key] = expanded
				continue
			case definition.Type.IsDateRange():
				expanded, err := ExpandDateRange(definition.Type, s)
				if err != nil {
					return nil, err
				}
				resolved[key] = expanded
				continue
			}
		}

		resolved[key] = value
	}

	return resolved, nil
}

// stringList normalizes list-shaped values ([]string or []any) to []string.
func stringList(value any) ([]string, bool) {
	switch list := value.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, len(list))
		for i, v := range list {
			if s, ok := v.(string); ok {
				out[i] = s
			} else {
				out[i] = fmt.Sprint(v)
			}
		}
		return out, true
	}
	return nil, false
}

package params

import (
	"strings"

	"github.com/skylark-data/query-engine/pkg/jsonutil"
	"github.com/skylark-data/query-engine/pkg/models"
)

// DropdownValue is one selectable option derived from a query's result data.
type DropdownValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DropdownValues derives {name, value} pairs from tabular result data.
// Column matching is case-insensitive: a "name" column supplies the label and
// a "value" column the accepted value, each falling back to the first result
// column when absent. Values are coerced to strings.
func DropdownValues(data *models.QueryResultData) []DropdownValue {
	if data == nil || len(data.Columns) == 0 {
		return nil
	}
	fallback := strings.ToLower(data.Columns[0].Name)

	values := make([]DropdownValue, 0, len(data.Rows))
	for _, row := range data.Rows {
		lowered := make(map[string]any, len(row))
		for k, v := range row {
			lowered[strings.ToLower(k)] = v
		}

		nameColumn := fallback
		if _, ok := lowered["name"]; ok {
			nameColumn = "name"
		}
		valueColumn := fallback
		if _, ok := lowered["value"]; ok {
			valueColumn = "value"
		}

		values = append(values, DropdownValue{
			Name:  jsonutil.FlexibleString(lowered[nameColumn]),
			Value: jsonutil.FlexibleString(lowered[valueColumn]),
		})
	}
	return values
}

package params

import (
	"strings"
	"time"

	"github.com/skylark-data/query-engine/pkg/models"
)

// DynamicDatePrefix marks a string value as a dynamic date token. Any string
// without this prefix is treated as a literal value.
const DynamicDatePrefix = "d_"

// IsDynamicDate reports whether the string is a dynamic date token.
func IsDynamicDate(value string) bool {
	return strings.HasPrefix(value, DynamicDatePrefix)
}

func dateFormat(paramType models.ParameterType) (string, bool) {
	switch paramType {
	case models.TypeDate, models.TypeDateRange:
		return "2006-01-02", true
	case models.TypeDatetimeLocal, models.TypeDatetimeRange:
		return "2006-01-02 15:04", true
	case models.TypeDatetimeWithSeconds, models.TypeDatetimeRangeWithSeconds:
		return "2006-01-02 15:04:05", true
	}
	return "", false
}

// ExpandDate expands a single-valued dynamic date token against the current
// clock. Supported tokens are d_now and d_yesterday.
func ExpandDate(paramType models.ParameterType, token string) (string, error) {
	return ExpandDateAt(paramType, token, time.Now())
}

// ExpandDateAt is ExpandDate against an explicit clock instant.
func ExpandDateAt(paramType models.ParameterType, token string, now time.Time) (string, error) {
	layout, ok := dateFormat(paramType)
	if !ok {
		return "", &InvalidParameterError{Names: []string{token}}
	}

	switch token {
	case "d_now":
		return now.Format(layout), nil
	case "d_yesterday":
		return now.AddDate(0, 0, -1).Format(layout), nil
	}
	return "", &InvalidParameterError{Names: []string{token}}
}

// ExpandDateRange expands a range-valued dynamic date token against the
// current clock into {start, end} bindings. Weeks start on Sunday.
func ExpandDateRange(paramType models.ParameterType, token string) (map[string]string, error) {
	return ExpandDateRangeAt(paramType, token, time.Now())
}

// ExpandDateRangeAt is ExpandDateRange against an explicit clock instant.
func ExpandDateRangeAt(paramType models.ParameterType, token string, now time.Time) (map[string]string, error) {
	layout, ok := dateFormat(paramType)
	if !ok {
		return nil, &InvalidParameterError{Names: []string{token}}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start, end, ok := dynamicDateRange(token, today, now)
	if !ok {
		return nil, &InvalidParameterError{Names: []string{token}}
	}

	return map[string]string{
		"start": start.Format(layout),
		"end":   end.Format(layout),
	}, nil
}

// dynamicDateRange computes the [start, end] span for a range token.
// today is the current local date at midnight, now the current instant.
func dynamicDateRange(token string, today, now time.Time) (time.Time, time.Time, bool) {
	// daysSinceSunday is 0 on Sunday through 6 on Saturday.
	daysSinceSunday := int(today.Weekday())

	switch token {
	case "d_today":
		return today.AddDate(0, 0, -1), now, true
	case "d_yesterday":
		yesterday := today.AddDate(0, 0, -1)
		return yesterday, yesterday, true
	case "d_this_week":
		return today.AddDate(0, 0, -daysSinceSunday), now, true
	case "d_this_month":
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), now, true
	case "d_this_year":
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()), now, true
	case "d_last_week":
		start := today.AddDate(0, 0, -(daysSinceSunday + 7))
		return start, start.AddDate(0, 0, 6), true
	case "d_last_month":
		// Subtracting the day-of-month lands on the last day of the
		// previous month.
		end := today.AddDate(0, 0, -today.Day())
		start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
		return start, end, true
	case "d_last_year":
		year := today.Year() - 1
		return time.Date(year, time.January, 1, 0, 0, 0, 0, today.Location()),
			time.Date(year, time.December, 31, 0, 0, 0, 0, today.Location()), true
	case "d_last_7_days":
		return today.AddDate(0, 0, -7), now, true
	case "d_last_14_days":
		return today.AddDate(0, 0, -14), now, true
	case "d_last_30_days":
		return today.AddDate(0, 0, -30), now, true
	case "d_last_60_days":
		return today.AddDate(0, 0, -60), now, true
	case "d_last_90_days":
		return today.AddDate(0, 0, -90), now, true
	case "d_last_12_months":
		return today.AddDate(-1, 0, 1), now, true
	}
	return time.Time{}, time.Time{}, false
}

package exporter

import (
	"strconv"
)

// formatPercent renders a usage percentage with one decimal place
func formatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatCell renders a sheet cell for text outputs
func formatCell(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return formatInt(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return ""
	}
}

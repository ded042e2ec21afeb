package conversion

import (
	"strconv"
	"strings"
)

// Num coerces a raw cell value to a float64. It is total: any value it
// cannot interpret becomes 0.0, never an error. Strings are trimmed and
// de-comma'd before parsing, so "1,234.56" and " 42.5 " both parse.
func Num(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if cleaned == "" {
			return 0
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

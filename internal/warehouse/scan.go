package warehouse

import (
	"fmt"
	"strconv"
)

// ScanCount extracts a single COUNT(*)-style value from a result set. The
// Snowflake driver surfaces numerics as several Go types depending on the
// statement, so all of them are handled.
func ScanCount(rows [][]any) (int64, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, fmt.Errorf("count query returned no rows")
	}
	switch v := rows[0][0].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("count value %q is not an integer: %w", v, err)
		}
		return n, nil
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("count value %q is not an integer: %w", v, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("count value has unexpected type %T", v)
	}
}

package conv

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AsInt converts numeric values and numeric strings to int.
func AsInt(v interface{}) (int, bool) {
	switch actual := v.(type) {
	case int:
		return actual, true
	case int32:
		return int(actual), true
	case int64:
		return int(actual), true
	case uint64:
		return int(actual), true
	case float64:
		if actual != math.Trunc(actual) {
			return 0, false
		}
		return int(actual), true
	case float32:
		return AsInt(float64(actual))
	case json.Number:
		i, err := actual.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(actual))
		return i, err == nil
	}
	return 0, false
}

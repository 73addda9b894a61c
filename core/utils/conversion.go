package utils

import (
	"fmt"
	"strconv"
)

// ToInt64 converts counter values returned by stores (strings, byte slices, numbers) to int64.
// Values that cannot be parsed convert to 0.
func ToInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		i, _ := strconv.ParseInt(v, 10, 64)
		return i
	case []byte:
		i, _ := strconv.ParseInt(string(v), 10, 64)
		return i
	default:
		i, _ := strconv.ParseInt(fmt.Sprintf("%v", v), 10, 64)
		return i
	}
}

// ToBool converts query and flag values to bool. Anything strconv.ParseBool rejects is false.
func ToBool(val string) bool {
	b, err := strconv.ParseBool(val)
	return err == nil && b
}

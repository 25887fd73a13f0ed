package utils

import (
	"strconv"
)

// ParseOptionalInt64 returns nil for an empty value
func ParseOptionalInt64(value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

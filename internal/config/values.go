package config

import (
	"fmt"
	"time"
)

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", mismatch("string", v)
	}
	return s, nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, mismatch("integer", v)
}

// asBool also accepts 0 and 1, which the environment loader reads as integers.
func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	}
	return false, mismatch("boolean", v)
}

// asDuration accepts a Go duration string or a whole number of seconds.
func asDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return parsed, nil
	case int64:
		return time.Duration(d) * time.Second, nil
	case time.Duration:
		return d, nil
	}
	return 0, mismatch("duration", v)
}

func mismatch(want string, v any) error {
	return fmt.Errorf("%w: want %s, got %T", ErrTypeMismatch, want, v)
}

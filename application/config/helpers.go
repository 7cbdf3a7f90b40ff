// Package config reads generator settings from loosely typed configuration
// maps and validates them.
package config

import (
	"fmt"

	"github.com/reglet-dev/schemagen/domain/errors"
)

// Config is raw configuration as a key-value map, as decoded from YAML or JSON.
type Config = map[string]any

// GetString extracts a string from config, returning (value, found).
func GetString(config Config, key string) (string, bool) {
	v, ok := config[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt extracts an int from config, handling int, int64, uint64 and float64.
func GetInt(config Config, key string) (int, bool) {
	v, ok := config[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool extracts a bool from config, returning (value, found).
func GetBool(config Config, key string) (bool, bool) {
	v, ok := config[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetStringSlice extracts a []string from config, returning (value, found).
// A single string is read as a one element slice.
func GetStringSlice(config Config, key string) ([]string, bool) {
	v, ok := config[key]
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		return list, true
	case string:
		return []string{list}, true
	case []any:
		result := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			result = append(result, s)
		}
		return result, true
	default:
		return nil, false
	}
}

// read copies config[key] into target when present, using get to convert it.
// A present key of the wrong type is a ConfigError naming want.
func read[T any](config Config, key, want string, get func(Config, string) (T, bool), target *T) error {
	if _, present := config[key]; !present {
		return nil
	}
	v, ok := get(config, key)
	if !ok {
		return &errors.ConfigError{Field: key, Err: fmt.Errorf("field '%s' must be %s", key, want)}
	}
	*target = v
	return nil
}

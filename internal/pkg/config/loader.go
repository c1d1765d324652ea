// Package config loads typed settings from environment variables.
//
// Loaders never fail: an unset variable yields the default silently, and a value that
// does not parse or validate yields the default together with a warning. Callers log
// the warnings and record them through ConfigMetrics.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one setting.
//
// Example:
//
//	res := LoadEnvDuration("REFRESH_TIMEOUT", 2*time.Minute, ValidatePositiveDuration)
//	for _, w := range res.Warnings {
//	    logger.Warn("configuration fallback", slog.String("warning", w))
//	}
//	timeout := res.Value
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// LoadEnv reads envKey, converts it with parse and checks it with validator
// (nil skips validation).
//
// Warning format:
//
//	"Invalid {envKey}='{value}': {error}, falling back to default '{default}'"
func LoadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) LoadResult[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	fallback := func(err error) LoadResult[T] {
		return LoadResult[T]{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, err, defaultValue,
			)},
			FallbackApplied: true,
		}
	}

	v, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validator != nil {
		if err := validator(v); err != nil {
			return fallback(err)
		}
	}
	return LoadResult[T]{Value: v}
}

// LoadEnvString returns the variable or defaultValue when unset. No validation is performed.
func LoadEnvString(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string checked by validator.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult[string] {
	return LoadEnv(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvDuration loads a Go duration string such as "30s" or "1h30m".
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult[time.Duration] {
	return LoadEnv(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base-10 integer. Spaces and decimals are rejected.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) LoadResult[int] {
	return LoadEnv(envKey, defaultValue, parseInt, validator)
}

// LoadEnvBool accepts 1/t/T/true/TRUE/True and 0/f/F/false/FALSE/False.
func LoadEnvBool(envKey string, defaultValue bool) LoadResult[bool] {
	return LoadEnv(envKey, defaultValue, parseBool, nil)
}

// LoadEnvStringList splits a comma separated list, trimming blanks and dropping empty items.
func LoadEnvStringList(envKey string, defaultValue []string) []string {
	raw := os.Getenv(envKey)
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer format")
	}
	return v, nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "1", "t", "T", "true", "TRUE", "True":
		return true, nil
	case "0", "f", "F", "false", "FALSE", "False":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
	}
}

// Package envcfg reads process environment variables for the
// cmd/weaveserve example binary, the degrade-to-env path a full
// config-file loader would fall back to when no file is present.
package envcfg

import (
	"os"
	"strconv"
)

// Port returns the PORT environment variable, or def if unset/invalid.
func Port(def string) string {
	if v := os.Getenv("PORT"); v != "" {
		return v
	}
	return def
}

// Scenario returns the SCENARIO environment variable, uppercased, or
// def if unset. An unrecognized value is left as-is; the caller
// resolves the A-F fallback.
func Scenario(def string) string {
	if v := os.Getenv("SCENARIO"); v != "" {
		return v
	}
	return def
}

// Int reads name as an integer, or returns def if unset or unparseable.
func Int(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

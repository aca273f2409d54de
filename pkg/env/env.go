// Package env reads process environment variables with fallbacks, mainly
// for the DESPENSA_ prefixed settings consumed at startup.
package env

import "os"

// Get returns the named variable's value, or fallback when it is unset
// or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

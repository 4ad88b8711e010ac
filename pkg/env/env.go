// Package env reads single environment variables for the few knobs that sit
// outside the envconfig-managed configuration, like the logger output format.
package env

import "os"

// Get returns the named environment variable, or fallback when unset or empty.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

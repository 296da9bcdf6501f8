// Package utils holds small helpers shared by the CLI wiring.
package utils

import "os"

// SafeEnv reads key from the environment, falling back when it is unset
// or empty. Unset and blank are deliberately the same: a blank QUIZSRS_*
// variable means "use the default", never "use the empty string".
func SafeEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

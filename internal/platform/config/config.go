// Package config carries the process-level plumbing of the morphsheet
// command line: environment parsing into tagged structs and fatal exits.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from environment variables, honoring `env` and
// `envDefault` struct tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Exitf prints a formatted message to stderr and exits with status 1.
// Entry points call it for errors that have already been rendered for the
// user.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

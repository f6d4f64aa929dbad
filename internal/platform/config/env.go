// Package config loads command configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Prefix namespaces every environment variable the commands read.
const Prefix = "HARMONICTOOK_"

// ParseEnv fills target from environment variables. Struct tags name the
// variable without Prefix, so `env:"SEED"` reads HARMONICTOOK_SEED.
func ParseEnv(target any) error {
	return parse(target, env.Options{Prefix: Prefix})
}

// ParseEnvFrom fills target from environ instead of the process environment.
func ParseEnvFrom(target any, environ map[string]string) error {
	return parse(target, env.Options{Prefix: Prefix, Environment: environ})
}

func parse(target any, opts env.Options) error {
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

package config

import "errors"

// Sentinel errors for configuration failures.
var (
	// ErrMissingEnv indicates a required environment variable is not set.
	ErrMissingEnv = errors.New("missing environment variable")

	// ErrInvalidEnv indicates an environment variable has an unusable value.
	ErrInvalidEnv = errors.New("invalid environment variable")
)

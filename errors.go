package schemareg

import "errors"

// Sentinel errors for environment failures. Policy violations and bad
// artifacts are never errors; they are reported as issues.
var (
	// ErrRegistryNotFound indicates the schemas directory is absent while
	// the policy requires it.
	ErrRegistryNotFound = errors.New("registry not found")

	// ErrHistoryUnavailable indicates historical content cannot be read.
	ErrHistoryUnavailable = errors.New("history unavailable")

	// ErrInvalidConfig indicates an inconsistent configuration.
	ErrInvalidConfig = errors.New("invalid config")
)

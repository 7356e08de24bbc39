package taskrun

import "errors"

// Namespace prefixes every sentinel this module produces, in the same
// spirit as the teacher's own errors.go convention.
const Namespace = "taskrun"

var (
	// ErrInvalidConfig reports an assembled ExecutorConfig that fails
	// validation: LoadConfig returns it wrapped, and Start (via
	// buildConfig) panics with it wrapped.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)

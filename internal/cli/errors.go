package cli

import "errors"

// Command-level sentinel errors. Domain packages carry their own
// sentinels; these classify outcomes only the command layer sees, so
// main can map them to exit codes.
var (
	// ErrBatchFailures indicates at least one video in the run failed.
	ErrBatchFailures = errors.New("some videos failed to process")

	// ErrInterrupted indicates the run was stopped before finishing.
	ErrInterrupted = errors.New("processing interrupted")

	// ErrChecksFailed indicates one or more doctor checks failed.
	ErrChecksFailed = errors.New("environment checks failed")
)

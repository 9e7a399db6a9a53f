package domain

import "errors"

// Sentinel errors used throughout the application.
// The CLI maps fatal ones to a non-zero exit code; the rest are logged and the run continues.
var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrMalformedWorkItem = errors.New("malformed work item: want metadata_id,data_id")
	ErrListNotGenerated  = errors.New("list file was not generated")
	ErrQueueUnavailable  = errors.New("sender queue unavailable")
)

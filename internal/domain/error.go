package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPromptTooLong    = errors.New("prompt exceeds the allowed length")
	ErrRateLimited      = errors.New("too many requests")
	ErrSubmissionFailed = errors.New("video generation submission failed")
	ErrUnauthorized     = errors.New("unauthorized")

	// Storage errors
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Worker errors
	ErrPoolFull    = errors.New("worker pool saturated")
	ErrPoolStopped = errors.New("worker pool stopped")
)

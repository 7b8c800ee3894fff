package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClaimConflict signals a lost claim race: another worker already
	// moved the item to processing. Not a failure, a no-op signal.
	ErrClaimConflict = errors.New("item already claimed by another worker")

	// ErrNotRetryable is returned when a retry is requested for an item
	// that is not in the failed state.
	ErrNotRetryable = errors.New("item is not in a retryable state")

	// Pipeline collaborator failures. These resolve an item to failed.
	ErrFetchFailed      = errors.New("media fetch failed")
	ErrTranscribeFailed = errors.New("transcription failed")
	ErrEmbedFailed      = errors.New("embedding failed")
	ErrGenerateFailed   = errors.New("answer generation failed")

	// ErrStore marks a persistence failure during the atomic persist step.
	// The item's true state is unknown; the job must NOT be acknowledged.
	ErrStore = errors.New("store transaction failed")

	// ErrNoJob is returned by a queue dequeue that timed out with nothing
	// to deliver.
	ErrNoJob = errors.New("no job available")

	// ErrUnavailable surfaces retrieval-time collaborator outages to the
	// caller as a temporary condition.
	ErrUnavailable = errors.New("service temporarily unavailable")
)

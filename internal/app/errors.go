package service

import "errors"

// Sentinel kinds for orchestrator errors.
var (
	// ErrAllFetchesFailed means no category yielded data this round. The
	// scheduler reacts with a short fixed retry delay instead of the
	// normal daily cadence.
	ErrAllFetchesFailed = errors.New("all category fetches failed")
)

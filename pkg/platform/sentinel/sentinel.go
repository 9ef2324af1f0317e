package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Extractors, caches and embedding
// backends return these (optionally wrapped) so services can translate them
// into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: file or cache entry does not exist
// - ErrUnavailable: backend temporarily unavailable (circuit open, model not loaded)
// - ErrInvalidState: resource in the wrong state for the requested operation
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)

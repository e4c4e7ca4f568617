package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entry does not exist in the store or fallback dataset
// - ErrCorrupted: stored entry cannot be decoded and was skipped
// - ErrUnavailable: backing service (cache, broker) temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/derrors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrCorrupted   = errors.New("corrupted")
	ErrUnavailable = errors.New("unavailable")
)

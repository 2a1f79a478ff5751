package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and remote adapters return
// these (optionally wrapped) so services can translate them into outcomes.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entry does not exist in the store
// - ErrExpired: persisted entry aged past its TTL
// - ErrMalformed: persisted entry could not be decoded
// - ErrInvalidState: component in wrong state for the requested operation
// - ErrDisposed: component torn down; no further work accepted
// - ErrUnavailable: remote service or resource temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrMalformed    = errors.New("malformed")
	ErrInvalidState = errors.New("invalid state")
	ErrDisposed     = errors.New("disposed")
	ErrUnavailable  = errors.New("unavailable")
)

package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with messages
// that fit the operation.
//
// These represent factual states about documents, not validation failures:
// - ErrNotFound: document does not exist in the store
// - ErrConflict: unique index rejected the write (team name, (team,event)
//   pair, channel per event, profile username/authID)
// - ErrExpired: cart basket TTL elapsed
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrExpired  = errors.New("expired")
)

// internal/room/errors.go
//
// Error taxonomy for the room coordinator. Validation errors are rejected
// synchronously with no state change and no broadcast; the HTTP layer maps
// each sentinel to a status code.

package room

import "errors"

var (
	// ErrNotFound: unknown room code.
	ErrNotFound = errors.New("room not found")

	// ErrIncompleteGrid: a submission with empty cells, rejected before any
	// state mutation or broadcast.
	ErrIncompleteGrid = errors.New("grid incomplete")

	// ErrInvalidMode / ErrInvalidDifficulty: malformed room-creation input,
	// rejected before persistence.
	ErrInvalidMode       = errors.New("invalid mode")
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrUpstreamUnavailable: the puzzle source failed; propagated so a
	// half-created room is never persisted.
	ErrUpstreamUnavailable = errors.New("puzzle source unavailable")
)

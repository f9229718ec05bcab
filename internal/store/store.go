// internal/store/store.go
//
// Persistence interface for room records. Implementations may be backed by
// SQLite (production) or memory (tests, ephemeral deployments). The store
// must guarantee a unique index on the room code.

package store

import (
	"context"
	"time"

	"github.com/sudokuduo/go-server/internal/room"
)

// Store defines the persistence contract for rooms.
type Store interface {
	// Create persists a new room. Fails if the code already exists.
	Create(ctx context.Context, r *room.Room) error

	// FindByCode retrieves a room by its 6-char code.
	// Returns room.ErrNotFound if the code is unknown.
	FindByCode(ctx context.Context, code string) (*room.Room, error)

	// UpdateStatus sets the room status and returns the updated record.
	// Returns room.ErrNotFound if the code is unknown.
	UpdateStatus(ctx context.Context, code string, status room.Status) (*room.Room, error)

	// DeleteCreatedBefore removes rooms created before the cutoff and
	// returns their codes, so callers can release per-room resources.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

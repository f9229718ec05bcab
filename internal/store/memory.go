// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used in tests and when no DB_PATH is configured.
//
// Characteristics:
//   - Stores *room.Room copies keyed by code in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sudokuduo/go-server/internal/room"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room // keyed by room code
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{rooms: make(map[string]*room.Room)}
}

func (m *memory) Create(ctx context.Context, r *room.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.Code]; ok {
		return errors.New("room code already exists")
	}
	cp := *r
	m.rooms[r.Code] = &cp
	return nil
}

func (m *memory) FindByCode(ctx context.Context, code string) (*room.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rooms[code]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, room.ErrNotFound
}

func (m *memory) UpdateStatus(ctx context.Context, code string, status room.Status) (*room.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[code]
	if !ok {
		return nil, room.ErrNotFound
	}
	r.Status = status
	cp := *r
	return &cp, nil
}

func (m *memory) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var codes []string
	for code, r := range m.rooms {
		if r.CreatedAt.Before(cutoff) {
			delete(m.rooms, code)
			codes = append(codes, code)
		}
	}
	return codes, nil
}

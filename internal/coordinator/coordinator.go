// internal/coordinator/coordinator.go
//
// Room session coordinator: room creation, the waiting -> started lifecycle,
// public room reads, the client event relay, and expired-room sweeping.
// Submission pairing lives in submit.go.
//
// Broadcasts are fire-and-forget: a gateway failure is logged but never
// rolls back a state transition that already committed.

package coordinator

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sudokuduo/go-server/internal/presence"
	"github.com/sudokuduo/go-server/internal/puzzle"
	"github.com/sudokuduo/go-server/internal/room"
	"github.com/sudokuduo/go-server/internal/store"
)

// codeAlphabet matches the uppercase-alphanumeric room code format.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoundRecorder receives the outcome of each completed competitive round.
// Best-effort: recording failures are logged, never surfaced to players.
type RoundRecorder interface {
	RecordRound(ctx context.Context, roomCode string, subs []ScoredSubmission, result ValidationResult) error
}

// Coordinator owns the room lifecycle and the pending-submission table.
type Coordinator struct {
	store    store.Store
	gateway  presence.Gateway
	source   puzzle.Source
	recorder RoundRecorder // optional
	slots    slotTable
}

// New wires a coordinator. recorder may be nil.
func New(st store.Store, gw presence.Gateway, src puzzle.Source, recorder RoundRecorder) *Coordinator {
	return &Coordinator{
		store:    st,
		gateway:  gw,
		source:   src,
		recorder: recorder,
		slots:    newSlotTable(),
	}
}

// CreateRoomResult is returned from CreateRoom.
type CreateRoomResult struct {
	RoomID   string `json:"roomId"`
	RoomCode string `json:"roomCode"`
}

// CreateRoom validates the input, fetches a puzzle, and persists a new room
// in waiting status. Nothing is persisted if the puzzle source fails.
func (c *Coordinator) CreateRoom(ctx context.Context, modeStr, difficultyStr string) (*CreateRoomResult, error) {
	mode, err := room.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	difficulty, err := room.ParseDifficulty(difficultyStr)
	if err != nil {
		return nil, err
	}

	puzzleGrid, solution, err := c.source.Generate(ctx, difficulty)
	if err != nil {
		return nil, err
	}

	code, err := c.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	r := &room.Room{
		ID:         uuid.NewString(),
		Code:       code,
		Mode:       mode,
		Difficulty: difficulty,
		Puzzle:     puzzleGrid,
		Solution:   solution,
		Status:     room.StatusWaiting,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.store.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	log.Info().Str("roomCode", code).Str("mode", string(mode)).Str("difficulty", string(difficulty)).Msg("room created")
	return &CreateRoomResult{RoomID: r.ID, RoomCode: code}, nil
}

// GetRoom returns the public view of a room. The solution never leaves the
// coordinator through this path.
func (c *Coordinator) GetRoom(ctx context.Context, code string) (*room.PublicView, error) {
	r, err := c.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	view := r.Public()
	return &view, nil
}

// StartGame moves the room to started and notifies the channel. Idempotent:
// starting an already-started room re-applies the status and re-broadcasts;
// clients tolerate duplicate game-started events.
func (c *Coordinator) StartGame(ctx context.Context, code string) error {
	r, err := c.store.UpdateStatus(ctx, code, room.StatusStarted)
	if err != nil {
		return err
	}
	c.broadcast(ctx, r.Code, EventGameStarted, gameStartedPayload{Status: room.StatusStarted})
	return nil
}

// Relay forwards an allowlisted client event to the room's channel without
// interpreting it. Dropping such an event has no correctness impact.
func (c *Coordinator) Relay(ctx context.Context, code, event string, data any) error {
	if !RelayEvents[event] {
		return fmt.Errorf("event %q is not relayable", event)
	}
	if _, err := c.store.FindByCode(ctx, code); err != nil {
		return err
	}
	c.broadcast(ctx, code, event, data)
	return nil
}

// Sweep deletes rooms created before the cutoff and forgets their pending
// slots, so the submission table is garbage-collected with the room record.
func (c *Coordinator) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	codes, err := c.store.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, code := range codes {
		c.slots.forget(code)
	}
	if len(codes) > 0 {
		log.Info().Int("rooms", len(codes)).Msg("swept expired rooms")
	}
	return len(codes), nil
}

// broadcast sends an event to the room's presence channel, logging failures.
func (c *Coordinator) broadcast(ctx context.Context, code, event string, payload any) {
	if err := c.gateway.Broadcast(ctx, presence.ChannelName(code), event, payload); err != nil {
		log.Warn().Err(err).Str("roomCode", code).Str("event", event).Msg("broadcast failed")
	}
}

// uniqueCode draws random 6-char codes until one is free. The store's unique
// index on code backstops the check.
func (c *Coordinator) uniqueCode(ctx context.Context) (string, error) {
	for {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if _, err := c.store.FindByCode(ctx, code); err == room.ErrNotFound {
			return code, nil
		} else if err != nil {
			return "", err
		}
	}
}

// randomCode generates a 6-char uppercase-alphanumeric code.
func randomCode() (string, error) {
	var b [room.CodeLength]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b[:]), nil
}

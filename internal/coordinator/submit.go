// internal/coordinator/submit.go
//
// Submission pairing engine. Together-mode submissions are self-contained
// and broadcast immediately. Competitive submissions go through a pending
// slot per room: the first submission of a round parks in the slot, the
// second consumes it atomically and both are scored and broadcast exactly
// once.
//
// The slot table is the only shared mutable state in the coordinator.
// Access is serialized per room code: the test-and-set (observe empty,
// store) and the check-and-clear (observe occupied, take) each happen under
// the room's slot mutex, so two concurrent submissions can never both
// become the stored first entry, nor both believe they are the pairing
// one. Scoring and broadcasting happen outside the lock.

package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sudokuduo/go-server/internal/grid"
	"github.com/sudokuduo/go-server/internal/presence"
	"github.com/sudokuduo/go-server/internal/room"
)

// SubmitStatus is the synchronous result of a submission.
type SubmitStatus string

const (
	// StatusWaiting: parked as the first competitive submission of a round.
	StatusWaiting SubmitStatus = "waiting"
	// StatusDone: validated and broadcast (together, or pairing complete).
	StatusDone SubmitStatus = "done"
)

// Submission is one client's completed grid.
type Submission struct {
	ClientID string
	Name     string
	Grid     grid.Grid
}

// slotTable holds at most one unmatched submission per room.
type slotTable struct {
	mu    sync.Mutex
	rooms map[string]*pendingSlot
}

type pendingSlot struct {
	mu    sync.Mutex
	first *Submission
}

func newSlotTable() slotTable {
	return slotTable{rooms: make(map[string]*pendingSlot)}
}

// get returns the room's slot, creating it lazily on first use.
func (t *slotTable) get(code string) *pendingSlot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.rooms[code]
	if !ok {
		s = &pendingSlot{}
		t.rooms[code] = s
	}
	return s
}

// forget drops a room's slot. Only called after the room record itself is
// gone, so later submissions fail on the room lookup rather than racing a
// recreated slot.
func (t *slotTable) forget(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rooms, code)
}

// Submit validates and routes a submission per the room's mode.
// Returns StatusWaiting or StatusDone, or one of the taxonomy errors with
// no state change and no broadcast.
func (c *Coordinator) Submit(ctx context.Context, code, clientID, name string, g grid.Grid) (SubmitStatus, error) {
	r, err := c.store.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if !g.IsComplete() {
		return "", room.ErrIncompleteGrid
	}

	sub := Submission{ClientID: clientID, Name: name, Grid: g}

	if r.Mode == room.ModeTogether {
		c.finishTogether(ctx, r, sub)
		return StatusDone, nil
	}
	return c.submitCompetitive(ctx, r, sub)
}

// finishTogether scores a single self-contained submission and broadcasts it.
func (c *Coordinator) finishTogether(ctx context.Context, r *room.Room, sub Submission) {
	scored := score(sub, r.Solution)
	result := &ValidationResult{}
	if scored.Mistakes == 0 {
		result.Perfect = true
		result.Message = "Perfect solve!"
	} else {
		result.Message = fmt.Sprintf("%d mistakes", scored.Mistakes)
	}
	c.broadcast(ctx, r.Code, EventShowValidation, validationPayload{
		Mode:        room.ModeTogether,
		Solution:    r.Solution,
		Submissions: []ScoredSubmission{scored},
		Result:      result,
	})
}

// submitCompetitive runs the exactly-once pairing protocol.
func (c *Coordinator) submitCompetitive(ctx context.Context, r *room.Room, sub Submission) (SubmitStatus, error) {
	slot := c.slots.get(r.Code)

	slot.mu.Lock()
	if slot.first == nil {
		stored := sub
		slot.first = &stored
		slot.mu.Unlock()

		c.broadcast(ctx, r.Code, EventPlayerFinished, playerFinishedPayload{
			ClientID: sub.ClientID,
			Name:     sub.Name,
		})
		return StatusWaiting, nil
	}
	first := *slot.first
	slot.first = nil
	slot.mu.Unlock()

	// Ordered pair: the round's first accepted submission, then this one.
	pair := []Submission{first, sub}
	fillNames(pair)
	scored := []ScoredSubmission{score(pair[0], r.Solution), score(pair[1], r.Solution)}
	result := deriveOutcome(scored)

	c.broadcast(ctx, r.Code, EventShowValidation, validationPayload{
		Mode:        room.ModeCompetitive,
		Solution:    r.Solution,
		Submissions: scored,
		Result:      &result,
	})

	if c.recorder != nil {
		if err := c.recorder.RecordRound(ctx, r.Code, scored, result); err != nil {
			log.Warn().Err(err).Str("roomCode", r.Code).Msg("record round failed")
		}
	}
	return StatusDone, nil
}

// score computes the mistake count for one submission.
func score(sub Submission, solution grid.Grid) ScoredSubmission {
	return ScoredSubmission{
		ClientID: sub.ClientID,
		Name:     sub.Name,
		Grid:     sub.Grid,
		Mistakes: grid.MistakeCount(sub.Grid, solution),
	}
}

// fillNames substitutes resolver labels for missing display names, using
// the two-party fallback over the pair's client ids.
func fillNames(pair []Submission) {
	if pair[0].Name != "" && pair[1].Name != "" {
		return
	}
	labels := presence.PairLabels(pair[0].ClientID, pair[1].ClientID)
	for i := range pair {
		if pair[i].Name == "" {
			pair[i].Name = labels[pair[i].ClientID]
		}
	}
}

// deriveOutcome compares mistake counts: lower wins, equal is a tie.
func deriveOutcome(scored []ScoredSubmission) ValidationResult {
	a, b := scored[0], scored[1]
	switch {
	case a.Mistakes == b.Mistakes:
		return ValidationResult{Tie: true, Message: "It's a tie"}
	case a.Mistakes < b.Mistakes:
		return winnerResult(a)
	default:
		return winnerResult(b)
	}
}

func winnerResult(s ScoredSubmission) ValidationResult {
	name := s.Name
	if name == "" {
		name = s.ClientID
	}
	return ValidationResult{
		Winner:  s.ClientID,
		Perfect: s.Mistakes == 0,
		Message: fmt.Sprintf("%s wins", name),
	}
}

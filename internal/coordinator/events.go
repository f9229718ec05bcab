// internal/coordinator/events.go
//
// Event names and payload shapes broadcast on a room's presence channel.

package coordinator

import (
	"github.com/sudokuduo/go-server/internal/grid"
	"github.com/sudokuduo/go-server/internal/room"
)

const (
	// EventGameStarted: the room moved (or re-moved) to started.
	EventGameStarted = "game-started"
	// EventPlayerFinished: first competitive submission of a round arrived.
	EventPlayerFinished = "player-finished"
	// EventShowValidation: scored submissions plus the solution.
	EventShowValidation = "show-validation"
	// EventPlayerContinue: opaque client relay — a player who saw
	// "opponent finished" chose to keep solving. Never interpreted here.
	EventPlayerContinue = "player-continue"
	// EventCellUpdated: opaque client relay for together-mode cell edits.
	EventCellUpdated = "cell-updated"
)

// RelayEvents lists the client-originated events the trigger endpoint may
// pass through. Everything else is rejected.
var RelayEvents = map[string]bool{
	EventPlayerContinue: true,
	EventCellUpdated:    true,
}

// ScoredSubmission is a submission augmented with its mistake count.
type ScoredSubmission struct {
	ClientID string    `json:"clientId"`
	Name     string    `json:"name,omitempty"`
	Grid     grid.Grid `json:"grid"`
	Mistakes int       `json:"mistakes"`
}

// ValidationResult is the derived outcome of a round.
type ValidationResult struct {
	// Winner holds the client id of the lower-mistake submission in a
	// competitive round; empty on a tie or in together mode.
	Winner  string `json:"winnerClientId,omitempty"`
	Tie     bool   `json:"tie,omitempty"`
	Perfect bool   `json:"perfect,omitempty"`
	Message string `json:"message,omitempty"`
}

// validationPayload is the show-validation event body.
type validationPayload struct {
	Mode        room.Mode          `json:"mode"`
	Solution    grid.Grid          `json:"solution"`
	Submissions []ScoredSubmission `json:"submissions"`
	Result      *ValidationResult  `json:"result,omitempty"`
}

// playerFinishedPayload is the player-finished event body.
type playerFinishedPayload struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name,omitempty"`
}

// gameStartedPayload is the game-started event body.
type gameStartedPayload struct {
	Status room.Status `json:"status"`
}

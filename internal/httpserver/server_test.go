package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sudokuduo/go-server/internal/coordinator"
	"github.com/sudokuduo/go-server/internal/grid"
	"github.com/sudokuduo/go-server/internal/room"
	"github.com/sudokuduo/go-server/internal/store"
)

var testSolution = grid.Grid{
	{5, 3, 4, 6, 7, 8, 9, 1, 2},
	{6, 7, 2, 1, 9, 5, 3, 4, 8},
	{1, 9, 8, 3, 4, 2, 5, 6, 7},
	{8, 5, 9, 7, 6, 1, 4, 2, 3},
	{4, 2, 6, 8, 5, 3, 7, 9, 1},
	{7, 1, 3, 9, 2, 4, 8, 5, 6},
	{9, 6, 1, 5, 3, 7, 2, 8, 4},
	{2, 8, 7, 4, 1, 9, 6, 3, 5},
	{3, 4, 5, 2, 8, 6, 9, 1, 7},
}

type fakeGateway struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeGateway) Broadcast(ctx context.Context, channel, event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type stubSource struct{}

func (stubSource) Generate(ctx context.Context, d room.Difficulty) (grid.Grid, grid.Grid, error) {
	puzzle := testSolution
	puzzle[0][0] = 0
	return puzzle, testSolution, nil
}

func newTestServer(t *testing.T) (*Server, store.Store, *fakeGateway) {
	t.Helper()
	st := store.NewMemoryStore()
	gw := &fakeGateway{}
	coord := coordinator.New(st, gw, stubSource{}, nil)
	return New(coord, Options{}), st, gw
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func seedRoom(t *testing.T, st store.Store, code string, mode room.Mode) {
	t.Helper()
	puzzle := testSolution
	puzzle[0][0] = 0
	err := st.Create(context.Background(), &room.Room{
		ID:         "room-" + code,
		Code:       code,
		Mode:       mode,
		Difficulty: room.DifficultyHard,
		Puzzle:     puzzle,
		Solution:   testSolution,
		Status:     room.StatusStarted,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCreateAndGetRoom(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/rooms/create", map[string]string{
		"mode":       "competitive",
		"difficulty": "hard",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created struct {
		RoomCode string `json:"roomCode"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if len(created.RoomCode) != room.CodeLength {
		t.Fatalf("room code %q has wrong length", created.RoomCode)
	}

	rec = doJSON(t, s, http.MethodGet, "/rooms/"+created.RoomCode, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"puzzle"`) {
		t.Fatal("room view must include the puzzle")
	}
	if strings.Contains(body, `"solution"`) {
		t.Fatal("room view must never expose the solution")
	}
}

func TestGetRoomErrors(t *testing.T) {
	s, _, _ := newTestServer(t)

	cases := []struct {
		path string
		code int
	}{
		{"/rooms/ZZZZZZ", http.StatusNotFound},
		{"/rooms/TOOLONGCODE", http.StatusNotFound},
		{"/rooms/AB", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodGet, tc.path, nil)
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d", rec.Code, tc.code)
			}
		})
	}
}

func TestCreateRoomRejectsBadInput(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/rooms/create", map[string]string{"mode": "solo", "difficulty": "hard"})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_mode") {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, s, http.MethodPost, "/rooms/create", map[string]string{"mode": "together", "difficulty": "brutal"})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_difficulty") {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestStartGameEndpoint(t *testing.T) {
	s, st, gw := newTestServer(t)
	seedRoom(t, st, "AB12CD", room.ModeTogether)

	rec := doJSON(t, s, http.MethodPatch, "/rooms/AB12CD/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.events) != 1 || gw.events[0] != coordinator.EventGameStarted {
		t.Fatalf("broadcasts = %v, want [game-started]", gw.events)
	}
}

func TestValidateEndpoint(t *testing.T) {
	s, st, _ := newTestServer(t)
	seedRoom(t, st, "AB12CD", room.ModeCompetitive)

	body := func(clientID string, g grid.Grid) map[string]any {
		return map[string]any{"clientId": clientID, "grid": g}
	}

	incomplete := testSolution
	incomplete[8][8] = 0
	rec := doJSON(t, s, http.MethodPost, "/rooms/AB12CD/validate", body("m1", incomplete))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "incomplete_grid") {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, s, http.MethodPost, "/rooms/AB12CD/validate", body("", testSolution))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing clientId: status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/rooms/AB12CD/validate", body("m1", testSolution))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"waiting"`) {
		t.Fatalf("first submission: status = %d, body %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, s, http.MethodPost, "/rooms/AB12CD/validate", body("m2", testSolution))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"done"`) {
		t.Fatalf("second submission: status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, s, http.MethodPost, "/rooms/ZZZZZZ/validate", body("m1", testSolution))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown room: status = %d", rec.Code)
	}
}

func TestTriggerRelay(t *testing.T) {
	s, st, gw := newTestServer(t)
	seedRoom(t, st, "AB12CD", room.ModeTogether)

	trigger := func(channel, event string) *httptest.ResponseRecorder {
		return doJSON(t, s, http.MethodPost, "/pusher/trigger", map[string]any{
			"channel": channel,
			"event":   event,
			"data":    map[string]int{"r": 0, "c": 1},
		})
	}

	rec := trigger("presence-room-AB12CD", coordinator.EventCellUpdated)
	if rec.Code != http.StatusOK {
		t.Fatalf("relay status = %d, body %s", rec.Code, rec.Body)
	}
	if rec := trigger("presence-room-AB12CD", coordinator.EventShowValidation); rec.Code != http.StatusBadRequest {
		t.Fatalf("server events must not relay, got %d", rec.Code)
	}
	if rec := trigger("private-room-AB12CD", coordinator.EventCellUpdated); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-presence channels must be rejected, got %d", rec.Code)
	}
	if rec := trigger("presence-room-ZZZZZZ", coordinator.EventCellUpdated); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown room relay: got %d", rec.Code)
	}

	gw.mu.Lock()
	defer gw.mu.Unlock()
	if fmt.Sprint(gw.events) != "[cell-updated]" {
		t.Fatalf("broadcasts = %v, want [cell-updated]", gw.events)
	}
}

func TestHealthAndIndex(t *testing.T) {
	s, _, _ := newTestServer(t)
	for _, path := range []string{"/", "/health"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", path, rec.Code)
		}
	}
}

// internal/httpserver/server.go
//
// HTTP server wiring for the sudoku rooms backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Room endpoints: POST /rooms/create, GET /rooms/{code},
//     PATCH /rooms/{code}/start, POST /rooms/{code}/validate.
//   - Presence endpoints: POST /pusher/auth (when Pusher is configured),
//     POST /pusher/trigger (allowlisted client event relay),
//     GET /ws/{channel} (when the local hub is the gateway).
//   - GET /leaderboard: recent competitive round results.
//   - Mapping of the coordinator's error taxonomy to JSON error bodies.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The websocket route lives outside the timeout group; everything else
//     is bounded to 10s.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/sudokuduo/go-server/internal/coordinator"
	"github.com/sudokuduo/go-server/internal/grid"
	"github.com/sudokuduo/go-server/internal/presence"
	"github.com/sudokuduo/go-server/internal/results"
	"github.com/sudokuduo/go-server/internal/room"
)

// Options carries the optional collaborators a deployment may omit.
type Options struct {
	Pusher  *presence.Pusher // nil unless PUSHER_* env is configured
	Hub     *presence.Hub    // nil when Pusher is the gateway
	Results *results.Store   // nil without a database
}

// Server bundles the router and the coordinator.
type Server struct {
	r     *chi.Mux
	coord *coordinator.Coordinator
	opts  Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(coord *coordinator.Coordinator, opts Options) *Server {
	s := &Server{r: chi.NewRouter(), coord: coord, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(corsFromEnv)     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"sudoku-rooms","endpoints":["/health","POST /rooms/create","GET /rooms/{code}","PATCH /rooms/{code}/start","POST /rooms/{code}/validate"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/create", s.handleCreateRoom)
			r.Get("/{code}", s.handleGetRoom)
			r.Patch("/{code}/start", s.handleStartGame)
			r.Post("/{code}/validate", s.handleValidate)
		})

		if s.opts.Pusher != nil {
			r.Post("/pusher/auth", s.handlePusherAuth)
		}
		r.Post("/pusher/trigger", s.handleTrigger)

		if s.opts.Results != nil {
			r.Get("/leaderboard", s.handleLeaderboard)
		}
	})

	// Websocket subscriptions must outlive the request timeout.
	if s.opts.Hub != nil {
		s.r.Get("/ws/{channel}", s.handleWS)
	}

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:3000.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ ROOMS --------------------------------------

// createRoomReq/Res payloads for POST /rooms/create.
type createRoomReq struct {
	Mode       string `json:"mode"`       // "together" | "competitive"
	Difficulty string `json:"difficulty"` // "easy" | "medium" | "hard"
}

// handleCreateRoom fetches a puzzle and persists a new waiting room.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	res, err := s.coord.CreateRoom(r.Context(), req.Mode, req.Difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}

// handleGetRoom returns the public room view (never the solution).
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if len(code) != room.CodeLength {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	view, err := s.coord.GetRoom(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(view)
}

// handleStartGame applies waiting -> started and broadcasts game-started.
func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.coord.StartGame(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "roomCode": code})
}

// validateReq/Res payloads for POST /rooms/{code}/validate.
type validateReq struct {
	ClientID string    `json:"clientId"`
	Name     string    `json:"name,omitempty"`
	Grid     grid.Grid `json:"grid"`
}
type validateRes struct {
	Status coordinator.SubmitStatus `json:"status"`
}

// handleValidate routes a submission into the pairing engine.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.ClientID == "" {
		http.Error(w, `{"error":"missing_client_id"}`, http.StatusBadRequest)
		return
	}
	code := chi.URLParam(r, "code")
	status, err := s.coord.Submit(r.Context(), code, req.ClientID, req.Name, req.Grid)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(validateRes{Status: status})
}

// ----------------------------- PRESENCE ------------------------------------

// handlePusherAuth signs presence-channel subscriptions. pusher-js posts a
// urlencoded body (socket_id, channel_name); the client library signs the
// raw bytes.
func (s *Server) handlePusherAuth(w http.ResponseWriter, r *http.Request) {
	params, err := io.ReadAll(r.Body)
	if err != nil || len(params) == 0 {
		http.Error(w, `{"error":"missing_auth_params"}`, http.StatusBadRequest)
		return
	}
	res, err := s.opts.Pusher.AuthorizePresence(params)
	if err != nil {
		log.Warn().Err(err).Msg("presence auth failed")
		http.Error(w, `{"error":"auth_failed"}`, http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res)
}

// triggerReq is the body for POST /pusher/trigger.
type triggerReq struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// handleTrigger relays allowlisted client events (cell-updated,
// player-continue) to a room channel. The engine never interprets them.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Channel == "" || req.Event == "" {
		http.Error(w, `{"error":"missing_channel_or_event"}`, http.StatusBadRequest)
		return
	}
	if !presence.IsRoomChannel(req.Channel) || !coordinator.RelayEvents[req.Event] {
		http.Error(w, `{"error":"event_not_relayable"}`, http.StatusBadRequest)
		return
	}
	code := strings.TrimPrefix(req.Channel, presence.ChannelName(""))
	if err := s.coord.Relay(r.Context(), code, req.Event, req.Data); err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleWS subscribes a websocket client to a room's presence channel.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	if !presence.IsRoomChannel(channel) {
		http.Error(w, `{"error":"unknown_channel"}`, http.StatusNotFound)
		return
	}
	s.opts.Hub.ServeWS(w, r, channel, r.URL.Query().Get("clientId"))
}

// ---------------------------- LEADERBOARD ----------------------------------

// handleLeaderboard returns recent competitive round results.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.opts.Results.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard query")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// ---------------------------- error mapping --------------------------------

// writeError maps the coordinator's error taxonomy to JSON responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrNotFound):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	case errors.Is(err, room.ErrIncompleteGrid):
		http.Error(w, `{"error":"incomplete_grid"}`, http.StatusBadRequest)
	case errors.Is(err, room.ErrInvalidMode):
		http.Error(w, `{"error":"invalid_mode"}`, http.StatusBadRequest)
	case errors.Is(err, room.ErrInvalidDifficulty):
		http.Error(w, `{"error":"invalid_difficulty"}`, http.StatusBadRequest)
	case errors.Is(err, room.ErrUpstreamUnavailable):
		http.Error(w, `{"error":"upstream_unavailable"}`, http.StatusBadGateway)
	default:
		log.Error().Err(err).Msg("request failed")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}
}

// internal/presence/hub.go
//
// Self-hosted presence gateway over websockets, used when no Pusher
// credentials are configured. Each room channel tracks its members; joins
// and leaves emit membership events carrying labels recomputed from the
// full current member set. Frames are JSON: {"channel","event","data"}.
//
// Writes are guarded by a per-member mutex with a write deadline; a member
// whose write fails is dropped on its next read error.

package presence

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

// Hub fans broadcasts out to websocket subscribers per channel.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[string]*hubMember // channel -> member id -> conn
	upgrader websocket.Upgrader
}

type hubMember struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes to conn
}

// frame is the wire shape for every event delivered to a subscriber.
type frame struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data"`
}

// memberInfo appears in membership event payloads.
type memberInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[string]*hubMember),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin is enforced at the CORS layer; the upgrade
			// itself accepts any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (m *hubMember) write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return m.conn.WriteMessage(websocket.TextMessage, data)
}

// Broadcast delivers an event to every member of the channel. Individual
// write failures are logged and skipped; delivery is best-effort.
func (h *Hub) Broadcast(ctx context.Context, channel, event string, payload any) error {
	data, err := json.Marshal(frame{Channel: channel, Event: event, Data: payload})
	if err != nil {
		return err
	}

	h.mu.Lock()
	members := make([]*hubMember, 0, len(h.channels[channel]))
	for _, m := range h.channels[channel] {
		members = append(members, m)
	}
	h.mu.Unlock()

	for _, m := range members {
		if err := m.write(data); err != nil {
			log.Debug().Err(err).Str("channel", channel).Str("member", m.id).Msg("hub write failed")
		}
	}
	return nil
}

// ServeWS upgrades the request and subscribes it to the channel. Blocks
// until the client disconnects. A missing clientID gets a generated one.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, channel, clientID string) {
	if clientID == "" {
		clientID = "user-" + uuid.NewString()[:8]
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("websocket upgrade failed")
		return
	}
	m := &hubMember{id: clientID, conn: conn}

	h.add(channel, m)
	defer h.remove(channel, m)

	// Reads are only used to detect disconnects; client events go through
	// the HTTP trigger endpoint so they pass server-side validation.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// add registers the member and emits subscription-established to the joiner
// and member-joined to everyone else, with labels over the new full set.
func (h *Hub) add(channel string, m *hubMember) {
	h.mu.Lock()
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[string]*hubMember)
	}
	h.channels[channel][m.id] = m
	ids := memberIDs(h.channels[channel])
	h.mu.Unlock()

	labels := ResolveLabels(ids)
	roster := make([]memberInfo, 0, len(ids))
	for _, id := range ids {
		roster = append(roster, memberInfo{ID: id, Name: labels[id]})
	}

	if data, err := json.Marshal(frame{
		Channel: channel,
		Event:   EventSubscriptionEstablished,
		Data:    map[string]any{"members": roster},
	}); err == nil {
		if err := m.write(data); err != nil {
			log.Debug().Err(err).Str("member", m.id).Msg("hub snapshot write failed")
		}
	}

	_ = h.Broadcast(context.Background(), channel, EventMemberJoined, map[string]any{
		"id":   m.id,
		"info": memberInfo{ID: m.id, Name: labels[m.id]},
	})
}

// remove unregisters the member and emits member-left. Remaining clients
// recompute labels from the shrunken set on their side.
func (h *Hub) remove(channel string, m *hubMember) {
	h.mu.Lock()
	delete(h.channels[channel], m.id)
	if len(h.channels[channel]) == 0 {
		delete(h.channels, channel)
	}
	h.mu.Unlock()

	_ = m.conn.Close()
	_ = h.Broadcast(context.Background(), channel, EventMemberLeft, map[string]any{"id": m.id})
}

// Members returns the current member ids of a channel.
func (h *Hub) Members(channel string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return memberIDs(h.channels[channel])
}

func memberIDs(members map[string]*hubMember) []string {
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

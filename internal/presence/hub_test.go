package presence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testFrame struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

func dialHub(t *testing.T, url, clientID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?clientId="+clientID, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", clientID, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var f testFrame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode frame %s: %v", data, err)
	}
	return f
}

func TestHubMembershipAndBroadcast(t *testing.T) {
	hub := NewHub()
	channel := ChannelName("TEST01")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, channel, r.URL.Query().Get("clientId"))
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	p1 := dialHub(t, wsURL, "p1")

	f := readFrame(t, p1)
	if f.Event != EventSubscriptionEstablished {
		t.Fatalf("first frame = %s, want %s", f.Event, EventSubscriptionEstablished)
	}
	// p1 also sees its own member-joined.
	if f = readFrame(t, p1); f.Event != EventMemberJoined {
		t.Fatalf("expected member-joined, got %s", f.Event)
	}

	p2 := dialHub(t, wsURL, "p2")

	f = readFrame(t, p2)
	if f.Event != EventSubscriptionEstablished {
		t.Fatalf("p2 first frame = %s", f.Event)
	}
	var snapshot struct {
		Members []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"members"`
	}
	if err := json.Unmarshal(f.Data, &snapshot); err != nil {
		t.Fatal(err)
	}
	if len(snapshot.Members) != 2 {
		t.Fatalf("snapshot has %d members, want 2", len(snapshot.Members))
	}
	labels := map[string]string{}
	for _, m := range snapshot.Members {
		labels[m.ID] = m.Name
	}
	// Lexicographic labels regardless of join order.
	if labels["p1"] != "Player 1" || labels["p2"] != "Player 2" {
		t.Fatalf("snapshot labels = %v", labels)
	}

	f = readFrame(t, p1)
	if f.Event != EventMemberJoined {
		t.Fatalf("p1 expected member-joined, got %s", f.Event)
	}
	var joined struct {
		ID   string `json:"id"`
		Info struct {
			Name string `json:"name"`
		} `json:"info"`
	}
	if err := json.Unmarshal(f.Data, &joined); err != nil {
		t.Fatal(err)
	}
	if joined.ID != "p2" || joined.Info.Name != "Player 2" {
		t.Fatalf("member-joined = %+v", joined)
	}

	if got := hub.Members(channel); len(got) != 2 {
		t.Fatalf("hub tracks %d members, want 2", len(got))
	}

	// drain p2's own member-joined echo before the broadcast below
	_ = readFrame(t, p2)

	if err := hub.Broadcast(context.Background(), channel, "game-started", map[string]string{"status": "started"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	for name, conn := range map[string]*websocket.Conn{"p1": p1, "p2": p2} {
		if f := readFrame(t, conn); f.Event != "game-started" {
			t.Fatalf("%s expected game-started, got %s", name, f.Event)
		}
	}

	_ = p2.Close()
	if f := readFrame(t, p1); f.Event != EventMemberLeft {
		t.Fatalf("expected member-left, got %s", f.Event)
	}
}

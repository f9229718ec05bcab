// internal/presence/pusher.go
//
// Pusher Channels backend for the presence gateway. Broadcast maps to a
// server-side Trigger; presence authentication signs the client's
// socket_id/channel_name pair with the app secret, attaching a generated
// member id so the channel can track membership.

package presence

import (
	"context"
	"os"

	"github.com/google/uuid"
	pusher "github.com/pusher/pusher-http-go/v5"
)

// Pusher relays broadcasts through the hosted Channels API.
type Pusher struct {
	client pusher.Client
}

// NewPusherFromEnv builds a Pusher gateway from PUSHER_* env vars.
// Returns ok=false when the credentials are not configured.
func NewPusherFromEnv() (*Pusher, bool) {
	appID := os.Getenv("PUSHER_APP_ID")
	key := os.Getenv("PUSHER_KEY")
	secret := os.Getenv("PUSHER_SECRET")
	cluster := os.Getenv("PUSHER_CLUSTER")
	if appID == "" || key == "" || secret == "" || cluster == "" {
		return nil, false
	}
	return &Pusher{client: pusher.Client{
		AppID:   appID,
		Key:     key,
		Secret:  secret,
		Cluster: cluster,
		Secure:  true,
	}}, true
}

// Broadcast triggers an event on the channel. Fire-and-forget from the
// caller's point of view; errors are reported for logging only.
func (p *Pusher) Broadcast(ctx context.Context, channel, event string, payload any) error {
	return p.client.Trigger(channel, event, payload)
}

// AuthorizePresence signs a presence-channel subscription request.
// params is the raw urlencoded body pusher-js posts (socket_id and
// channel_name). Each subscription gets a fresh member id; the display
// label is resolved client-side once the membership snapshot arrives.
func (p *Pusher) AuthorizePresence(params []byte) ([]byte, error) {
	memberID := "user-" + uuid.NewString()[:8]
	return p.client.AuthorizePresenceChannel(params, pusher.MemberData{
		UserID:   memberID,
		UserInfo: map[string]string{"id": memberID},
	})
}

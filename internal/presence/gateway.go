// internal/presence/gateway.go
//
// Presence gateway abstraction: a per-room broadcast topic with membership
// events. Delivery is best-effort and asynchronous; callers never block
// correctness on a broadcast succeeding. Two backends exist: the hosted
// Pusher Channels client (pusher.go) and a self-hosted websocket hub
// (hub.go).

package presence

import "context"

// Gateway broadcasts events to a room's presence channel.
type Gateway interface {
	Broadcast(ctx context.Context, channel, event string, payload any) error
}

// Membership event names emitted on a channel.
const (
	EventSubscriptionEstablished = "subscription-established"
	EventMemberJoined            = "member-joined"
	EventMemberLeft              = "member-left"
)

const channelPrefix = "presence-room-"

// ChannelName returns the presence channel for a room code.
func ChannelName(roomCode string) string {
	return channelPrefix + roomCode
}

// IsRoomChannel reports whether name follows the room channel convention.
func IsRoomChannel(name string) bool {
	return len(name) > len(channelPrefix) && name[:len(channelPrefix)] == channelPrefix
}

package core

import "encoding/json"

// EventKind is a notification the hub emits to connections.
type EventKind int

const (
	// EventConnected tells a connection its own server-assigned id.
	EventConnected EventKind = iota
	// EventPeerJoined notifies room members that a peer joined.
	EventPeerJoined
	// EventPeerLeft notifies room members that a peer left.
	EventPeerLeft
	// EventSignal delivers an opaque signaling payload from another peer.
	EventSignal
	// EventChatNew delivers a persisted chat message to the room.
	EventChatNew
	// EventForcedMute tells the room the host muted everyone.
	EventForcedMute
	// EventRoomEnded tells the room the host ended it.
	EventRoomEnded
	// EventError notifies a single connection about a failed action.
	EventError
)

// Event is sent to connections to describe what happened.
type Event struct {
	Kind     EventKind
	Room     string
	PeerID   string          // connection id of the peer the event is about
	PeerName string          // display name for peer-joined
	From     string          // sender connection id for signal forwards
	Data     json.RawMessage // opaque signal payload
	Message  *ChatMessage    // non-nil for chat-new
	Error    *CoreError      // non-nil for error events
}

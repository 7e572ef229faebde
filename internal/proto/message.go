package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

const (
	InboundTypeJoinRoom   = "join-room"
	InboundTypeLeaveRoom  = "leave-room"
	InboundTypeSignal     = "signal"
	InboundTypeChatSend   = "chat-send"
	InboundTypeForcedMute = "forced-mute"
	InboundTypeRoomEnded  = "room-ended"

	OutboundTypeConnected  = "connected"
	OutboundTypePeerJoined = "peer-joined"
	OutboundTypePeerLeft   = "peer-left"
	OutboundTypeSignal     = "signal"
	OutboundTypeChatNew    = "chat-new"
	OutboundTypeForcedMute = "forced-mute"
	OutboundTypeRoomEnded  = "room-ended"
	OutboundTypeError      = "error"
)

// JoinRoomData requests to join a specific room.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// SignalData addresses an opaque signaling payload to one connection.
type SignalData struct {
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// ChatSendData is a chat message from the client.
type ChatSendData struct {
	Text string `json:"text"`
}

// ConnectedData tells the client its own connection id.
type ConnectedData struct {
	ID string `json:"id"`
}

// PeerJoinedData notifies that a peer joined the room.
type PeerJoinedData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PeerLeftData notifies that a peer left the room.
type PeerLeftData struct {
	ID string `json:"id"`
}

// SignalForwardData is a relayed signaling payload tagged with the sender.
type SignalForwardData struct {
	From string          `json:"from"`
	Data json.RawMessage `json:"data"`
}

// AuthorData identifies a chat message author.
type AuthorData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChatNewData is a persisted chat message echoed to the room.
type ChatNewData struct {
	ID     string     `json:"id"`
	RoomID string     `json:"roomId"`
	Text   string     `json:"text"`
	Author AuthorData `json:"author"`
	TS     int64      `json:"ts"`
}

// ErrorData describes a failed action. Delivered only to the connection
// that caused it.
type ErrorData struct {
	Message string `json:"message"`
}

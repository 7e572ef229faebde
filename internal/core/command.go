package core

import "encoding/json"

// CommandKind describes what the connection wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the connection to a room.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the connection from its current room.
	CommandLeaveRoom
	// CommandSignal forwards an opaque payload to one other connection.
	CommandSignal
	// CommandSendChat persists a chat message and broadcasts it to the room.
	CommandSendChat
	// CommandForceMute asks the hub to mute the whole room (host only).
	CommandForceMute
	// CommandEndRoom asks the hub to end the room for everyone (host only).
	CommandEndRoom
)

// Command represents an action requested by a connection.
type Command struct {
	Kind CommandKind
	Room string          // join target
	To   string          // signal target connection id
	Data json.RawMessage // opaque signal payload, never interpreted
	Text string          // chat text
}

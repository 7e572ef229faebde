package core

import "time"

// ChatMessage is a persisted chat message echoed back to the room with the
// author identity attached.
type ChatMessage struct {
	ID        string
	RoomID    string
	Text      string
	Author    Identity
	CreatedAt time.Time
}

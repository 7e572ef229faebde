package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User is a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Room is a meeting room. HostID is the owner for privileged relay
// commands. MediaRoomID references the room on the media backend, empty
// when no backend is configured.
type Room struct {
	ID          string
	Title       string
	HostID      string
	MediaRoomID string
	CreatedAt   time.Time
}

// Message is a persisted chat message.
type Message struct {
	ID        string
	RoomID    string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// RoomMessage is a message joined with its author for room detail views.
type RoomMessage struct {
	Message
	AuthorName  string
	AuthorEmail string
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new user with an already-hashed password.
	CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// RoomStore handles room persistence and the ownership oracle.
type RoomStore interface {
	// CreateRoom creates a room owned by hostID.
	CreateRoom(ctx context.Context, title, hostID, mediaRoomID string) (*Room, error)

	// GetRoomByID retrieves a room by id.
	GetRoomByID(ctx context.Context, id string) (*Room, error)

	// ListRooms lists all rooms, newest first.
	ListRooms(ctx context.Context) ([]*Room, error)

	// DeleteRoom removes a room and its messages.
	DeleteRoom(ctx context.Context, id string) error

	// IsRoomOwner reports whether userID is the host of roomID. A room
	// that does not exist yields (false, nil), not an error.
	IsRoomOwner(ctx context.Context, userID, roomID string) (bool, error)
}

// MessageStore handles chat message persistence.
type MessageStore interface {
	// SaveMessage persists a message and returns the stored record.
	SaveMessage(ctx context.Context, roomID, userID, text string) (*Message, error)

	// ListRecentMessages returns the newest messages of a room with their
	// authors attached, newest first.
	ListRecentMessages(ctx context.Context, roomID string, limit int) ([]*RoomMessage, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Ping verifies the underlying database is reachable.
	Ping(ctx context.Context) error

	// Close closes the underlying database connection.
	Close() error
}

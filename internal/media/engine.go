package media

import (
	"context"
	"errors"
)

// ErrNotSupported is returned by engines that have no notion of per-user
// join credentials.
var ErrNotSupported = errors.New("not supported by media engine")

// JoinInfo contains what a client needs to join a media room directly.
type JoinInfo struct {
	URL      string `json:"url"`
	Token    string `json:"token"`
	RoomName string `json:"roomName"`
	Identity string `json:"identity"`
}

// Engine abstracts the media backend meeting rooms live on. The relay core
// never talks to it; only room CRUD does.
type Engine interface {
	// ProvisionRoom creates a media room for roomID and returns the
	// backend's identifier for it.
	ProvisionRoom(ctx context.Context, roomID string) (string, error)

	// DestroyRoom tears down the media room. Best-effort; callers log and
	// continue on failure.
	DestroyRoom(ctx context.Context, mediaRoomID string) error

	// JoinToken creates join credentials for one user, when the backend
	// supports them.
	JoinToken(ctx context.Context, mediaRoomID, userID, name string) (*JoinInfo, error)
}

// Noop is the engine used when no media backend is configured. Rooms still
// work for chat and signaling; there is just nothing to join.
type Noop struct{}

func (Noop) ProvisionRoom(context.Context, string) (string, error) { return "", nil }

func (Noop) DestroyRoom(context.Context, string) error { return nil }

func (Noop) JoinToken(context.Context, string, string, string) (*JoinInfo, error) {
	return nil, ErrNotSupported
}

// Ensure Noop implements Engine.
var _ Engine = Noop{}

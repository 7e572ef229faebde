package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/kumpulhq/kumpul-server/internal/media"
)

// Engine implements media.Engine using LiveKit as the media backend.
// LiveKit creates rooms on demand when the first participant joins, so
// provisioning only picks the room name.
type Engine struct {
	apiKey    string
	apiSecret string
	wsURL     string
}

// New creates a LiveKit engine.
func New(apiKey, apiSecret, wsURL string) *Engine {
	return &Engine{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		wsURL:     wsURL,
	}
}

// ProvisionRoom derives the LiveKit room name for a Kumpul room.
func (e *Engine) ProvisionRoom(_ context.Context, roomID string) (string, error) {
	return "kumpul-" + roomID, nil
}

// DestroyRoom is a no-op: LiveKit rooms auto-expire when empty.
func (e *Engine) DestroyRoom(context.Context, string) error {
	return nil
}

// JoinToken creates LiveKit join credentials for one user.
func (e *Engine) JoinToken(_ context.Context, mediaRoomID, userID, name string) (*media.JoinInfo, error) {
	identity := "user-" + userID

	at := auth.NewAccessToken(e.apiKey, e.apiSecret)
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     mediaRoomID,
	}
	at.SetVideoGrant(grant).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(time.Hour)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("generate livekit token: %w", err)
	}

	return &media.JoinInfo{
		URL:      e.wsURL,
		Token:    token,
		RoomName: mediaRoomID,
		Identity: identity,
	}, nil
}

// Ensure Engine implements media.Engine.
var _ media.Engine = (*Engine)(nil)

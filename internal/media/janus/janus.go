package janus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/kumpulhq/kumpul-server/internal/media"
)

// Engine provisions videoroom plugin rooms through the Janus admin API.
// Janus room ids are numeric; the engine assigns a random one per room.
type Engine struct {
	adminURL    string
	adminSecret string
	client      *http.Client
}

// New creates a Janus engine targeting the given admin endpoint.
func New(adminURL, adminSecret string) *Engine {
	return &Engine{
		adminURL:    adminURL,
		adminSecret: adminSecret,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type adminRequest struct {
	Request     string `json:"request"`
	Room        int64  `json:"room"`
	Publishers  int    `json:"publishers,omitempty"`
	VideoCodec  string `json:"videocodec,omitempty"`
	Simulcast   bool   `json:"simulcast,omitempty"`
	AdminSecret string `json:"admin_secret,omitempty"`
}

// ProvisionRoom creates a videoroom on Janus and returns its numeric id as
// a string.
func (e *Engine) ProvisionRoom(ctx context.Context, _ string) (string, error) {
	roomNum := rand.Int64N(1_000_000)
	req := adminRequest{
		Request:     "create",
		Room:        roomNum,
		Publishers:  20,
		VideoCodec:  "vp9",
		Simulcast:   true,
		AdminSecret: e.adminSecret,
	}
	if err := e.post(ctx, req); err != nil {
		return "", fmt.Errorf("create janus room: %w", err)
	}
	return strconv.FormatInt(roomNum, 10), nil
}

// DestroyRoom tears the videoroom down.
func (e *Engine) DestroyRoom(ctx context.Context, mediaRoomID string) error {
	roomNum, err := strconv.ParseInt(mediaRoomID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse janus room id %q: %w", mediaRoomID, err)
	}
	req := adminRequest{
		Request:     "destroy",
		Room:        roomNum,
		AdminSecret: e.adminSecret,
	}
	if err := e.post(ctx, req); err != nil {
		return fmt.Errorf("destroy janus room: %w", err)
	}
	return nil
}

// JoinToken is not a Janus concept; clients join through the signaling
// relay instead.
func (e *Engine) JoinToken(context.Context, string, string, string) (*media.JoinInfo, error) {
	return nil, media.ErrNotSupported
}

func (e *Engine) post(ctx context.Context, body adminRequest) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.adminURL+"/admin", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("janus admin returned %d", resp.StatusCode)
	}
	return nil
}

// Ensure Engine implements media.Engine.
var _ media.Engine = (*Engine)(nil)

package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/kumpulhq/kumpul-server/internal/auth"
	"github.com/kumpulhq/kumpul-server/internal/config"
	"github.com/kumpulhq/kumpul-server/internal/core"
	"github.com/kumpulhq/kumpul-server/internal/media"
	"github.com/kumpulhq/kumpul-server/internal/proto"
	"github.com/kumpulhq/kumpul-server/internal/store"
	"github.com/kumpulhq/kumpul-server/internal/store/sqlite"
)

func nopLogger() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

type testEnv struct {
	ts    *httptest.Server
	store store.Store
	auth  *auth.Service
}

func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &auth.JWTConfig{
		Secret:     []byte("test-secret-change-me"),
		Issuer:     "test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	hub := core.NewHub(st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	router := NewRouter(hub, st, authService, media.Noop{}, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, nopLogger())

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, auth: authService}
}

// registerTestUser creates a user directly through the auth service and
// returns the user with a fresh access token.
func (env *testEnv) registerTestUser(t *testing.T, name, email string) (*store.User, string) {
	t.Helper()

	user, pair, err := env.auth.Register(context.Background(), name, email, "password123")
	if err != nil {
		t.Fatalf("register test user: %v", err)
	}
	return user, pair.Access
}

func (env *testEnv) wsURL(token string) string {
	u := strings.Replace(env.ts.URL, "http", "ws", 1) + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

// dialWS opens an authenticated relay connection and consumes the initial
// connected event, returning the connection id the server assigned.
func dialWS(t *testing.T, ctx context.Context, env *testEnv, token string) (*websocket.Conn, string) {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, env.wsURL(token), nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })

	outbound := readOutbound(t, ctx, conn, proto.OutboundTypeConnected)
	var connected proto.ConnectedData
	decodeOutboundData(t, outbound, &connected)
	if connected.ID == "" {
		t.Fatalf("connected event missing connection id")
	}
	return conn, connected.ID
}

// readOutbound reads outbound frames until one of the wanted type arrives.
func readOutbound(t *testing.T, ctx context.Context, conn *websocket.Conn, wantType string) proto.Outbound {
	t.Helper()

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read outbound (waiting for %s): %v", wantType, err)
		}
		if outbound.Type == wantType {
			return outbound
		}
	}
}

func decodeOutboundData(t *testing.T, outbound proto.Outbound, v any) {
	t.Helper()

	raw, err := json.Marshal(outbound.Data)
	if err != nil {
		t.Fatalf("marshal outbound data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal outbound data: %v", err)
	}
}

func sendInbound(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string, data any) {
	t.Helper()

	var payload json.RawMessage
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s payload: %v", msgType, err)
		}
		payload = raw
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
		t.Fatalf("send %s: %v", msgType, err)
	}
}

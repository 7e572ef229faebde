package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/kumpulhq/kumpul-server/internal/proto"
)

func TestWSRejectsMissingToken(t *testing.T) {
	env := startTestServer(t)

	resp, err := env.ts.Client().Get(env.ts.URL + "/ws")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWSRejectsInvalidToken(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, env.wsURL("not-a-jwt"), nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake rejection, got %+v", resp)
	}
}

func TestWSJoinAndPeerEvents(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, aliceToken := env.registerTestUser(t, "alice", "alice@example.com")
	_, bobToken := env.registerTestUser(t, "bob", "bob@example.com")

	aliceConn, _ := dialWS(t, ctx, env, aliceToken)
	bobConn, bobID := dialWS(t, ctx, env, bobToken)

	sendInbound(t, ctx, aliceConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: "room1"})
	sendInbound(t, ctx, bobConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: "room1"})

	// Alice, already in the room, observes bob joining.
	outbound := readOutbound(t, ctx, aliceConn, proto.OutboundTypePeerJoined)
	var joined proto.PeerJoinedData
	decodeOutboundData(t, outbound, &joined)
	if joined.ID != bobID || joined.Name != "bob" {
		t.Fatalf("unexpected peer-joined payload: %+v", joined)
	}

	// Bob leaves; alice observes peer-left with his connection id.
	sendInbound(t, ctx, bobConn, proto.InboundTypeLeaveRoom, nil)

	outbound = readOutbound(t, ctx, aliceConn, proto.OutboundTypePeerLeft)
	var left proto.PeerLeftData
	decodeOutboundData(t, outbound, &left)
	if left.ID != bobID {
		t.Fatalf("unexpected peer-left payload: %+v", left)
	}
}

func TestWSSignalRelay(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, aliceToken := env.registerTestUser(t, "alice", "alice@example.com")
	_, bobToken := env.registerTestUser(t, "bob", "bob@example.com")

	aliceConn, aliceID := dialWS(t, ctx, env, aliceToken)
	bobConn, bobID := dialWS(t, ctx, env, bobToken)

	sendInbound(t, ctx, aliceConn, proto.InboundTypeSignal, proto.SignalData{
		To:   bobID,
		Data: []byte(`{"sdp":"offer"}`),
	})

	outbound := readOutbound(t, ctx, bobConn, proto.OutboundTypeSignal)
	var fwd proto.SignalForwardData
	decodeOutboundData(t, outbound, &fwd)
	if fwd.From != aliceID || string(fwd.Data) != `{"sdp":"offer"}` {
		t.Fatalf("unexpected signal payload: %+v", fwd)
	}
}

func TestWSChatPersistsAndFansOut(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice, aliceToken := env.registerTestUser(t, "alice", "alice@example.com")
	_, bobToken := env.registerTestUser(t, "bob", "bob@example.com")

	room, err := env.store.CreateRoom(context.Background(), "standup", alice.ID, "")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	aliceConn, _ := dialWS(t, ctx, env, aliceToken)
	bobConn, _ := dialWS(t, ctx, env, bobToken)

	sendInbound(t, ctx, aliceConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room.ID})
	sendInbound(t, ctx, bobConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room.ID})
	readOutbound(t, ctx, aliceConn, proto.OutboundTypePeerJoined)

	sendInbound(t, ctx, aliceConn, proto.InboundTypeChatSend, proto.ChatSendData{Text: "hi there"})

	// Everyone in the room gets chat-new, the sender included.
	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		outbound := readOutbound(t, ctx, conn, proto.OutboundTypeChatNew)
		var chat proto.ChatNewData
		decodeOutboundData(t, outbound, &chat)
		if chat.Text != "hi there" || chat.RoomID != room.ID || chat.Author.Name != "alice" {
			t.Fatalf("unexpected chat payload: %+v", chat)
		}
		if chat.ID == "" || chat.TS == 0 {
			t.Fatalf("chat payload missing persisted fields: %+v", chat)
		}
	}

	// The message made it to storage.
	messages, err := env.store.ListRecentMessages(context.Background(), room.ID, 10)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "hi there" || messages[0].UserID != alice.ID {
		t.Fatalf("unexpected stored messages: %+v", messages)
	}
}

func TestWSHostPrivileges(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice, aliceToken := env.registerTestUser(t, "alice", "alice@example.com")
	_, bobToken := env.registerTestUser(t, "bob", "bob@example.com")

	room, err := env.store.CreateRoom(context.Background(), "standup", alice.ID, "")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	aliceConn, _ := dialWS(t, ctx, env, aliceToken)
	bobConn, _ := dialWS(t, ctx, env, bobToken)

	sendInbound(t, ctx, aliceConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room.ID})
	sendInbound(t, ctx, bobConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room.ID})
	readOutbound(t, ctx, aliceConn, proto.OutboundTypePeerJoined)

	// Bob is not the host: forced-mute bounces back as an error to him only.
	sendInbound(t, ctx, bobConn, proto.InboundTypeForcedMute, nil)

	outbound := readOutbound(t, ctx, bobConn, proto.OutboundTypeError)
	var errData proto.ErrorData
	decodeOutboundData(t, outbound, &errData)
	if errData.Message != "Only host can mute others" {
		t.Fatalf("unexpected error payload: %+v", errData)
	}

	// The host can mute: the whole room observes it.
	sendInbound(t, ctx, aliceConn, proto.InboundTypeForcedMute, nil)
	readOutbound(t, ctx, aliceConn, proto.OutboundTypeForcedMute)
	readOutbound(t, ctx, bobConn, proto.OutboundTypeForcedMute)

	// And the host can end the room for everyone.
	sendInbound(t, ctx, aliceConn, proto.InboundTypeRoomEnded, nil)
	readOutbound(t, ctx, aliceConn, proto.OutboundTypeRoomEnded)
	readOutbound(t, ctx, bobConn, proto.OutboundTypeRoomEnded)
}

func TestWSUnknownMessageType(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, token := env.registerTestUser(t, "alice", "alice@example.com")
	conn, _ := dialWS(t, ctx, env, token)

	sendInbound(t, ctx, conn, "bogus", nil)

	outbound := readOutbound(t, ctx, conn, proto.OutboundTypeError)
	var errData proto.ErrorData
	decodeOutboundData(t, outbound, &errData)
	if errData.Message != "unknown message type" {
		t.Fatalf("unexpected error payload: %+v", errData)
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/kumpulhq/kumpul-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "access token (get one from /api/auth/login)")
	room := flag.String("room", "", "room id to join")
	text := flag.String("text", "hello from smoke test", "chat message to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	if *token == "" {
		return fmt.Errorf("missing -token")
	}
	if *room == "" {
		return fmt.Errorf("missing -room")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	u, err := url.Parse(*addr)
	if err != nil {
		return fmt.Errorf("parse addr: %w", err)
	}
	q := u.Query()
	q.Set("token", *token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msgType string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", msgType, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", msgType, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: *room}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeChatSend, proto.ChatSendData{Text: *text}); err != nil {
		return err
	}

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		raw, err := json.Marshal(outbound.Data)
		if err != nil {
			return fmt.Errorf("marshal outbound data: %w", err)
		}
		fmt.Printf("Received: type=%s data=%s\n", outbound.Type, string(raw))

		switch outbound.Type {
		case proto.OutboundTypeChatNew:
			var evt proto.ChatNewData
			if err := json.Unmarshal(raw, &evt); err != nil {
				return fmt.Errorf("unmarshal chat-new: %w", err)
			}
			fmt.Printf("Chat: room=%s author=%s text=%q ts=%d\n", evt.RoomID, evt.Author.Name, evt.Text, evt.TS)
			return nil
		case proto.OutboundTypeError:
			var evt proto.ErrorData
			if err := json.Unmarshal(raw, &evt); err == nil {
				return fmt.Errorf("server error: %s", evt.Message)
			}
			return fmt.Errorf("server error")
		}
	}
}

package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kumpulhq/kumpul-server/internal/store"
)

// storeTimeout bounds chat persistence and ownership lookups so a stuck
// store cannot pile up goroutines forever.
const storeTimeout = 5 * time.Second

// Store is the slice of the storage layer the hub consumes: message
// persistence and the room ownership oracle. The full store.Store
// implementation satisfies it.
type Store interface {
	// SaveMessage persists a chat message and returns the stored record.
	SaveMessage(ctx context.Context, roomID, userID, text string) (*store.Message, error)

	// IsRoomOwner reports whether userID owns roomID. A nonexistent room
	// is not an error; it simply yields false.
	IsRoomOwner(ctx context.Context, userID, roomID string) (bool, error)
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub is the relay core: it owns the membership table (connection id to
// client and current room) and the per-room subscriber sets, and it routes
// every inbound command. All state is touched only by the Run goroutine, so
// a membership read followed by a fan-out is atomic with respect to joins
// and leaves on other connections.
type Hub struct {
	store Store
	log   *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	tasks      chan func()

	clients map[string]*Client
	rooms   map[string]*room
}

// NewHub creates a hub. The store may be nil in tests that never touch
// chat persistence or privileged commands.
func NewHub(st Store, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		store:      st,
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand),
		tasks:      make(chan func(), 16),
		clients:    make(map[string]*Client),
		rooms:      make(map[string]*room),
	}
}

// Run drives the hub until ctx is cancelled. Everything the hub owns is
// mutated only from this goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.dropClient(client)
		case cc := <-h.commands:
			h.dispatch(ctx, cc.client, cc.cmd)
		case fn := <-h.tasks:
			fn()
		}
	}
}

// RegisterClient adds a connection to the hub and starts pumping its
// commands into the serialized loop. Commands from one connection are
// processed in arrival order.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
	go func() {
		for cmd := range client.Commands {
			h.commands <- clientCommand{client: client, cmd: cmd}
		}
	}()
}

// UnregisterClient removes a connection. If it was in a room the hub emits
// peer-left exactly as if the connection had sent leave-room first.
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (h *Hub) addClient(client *Client) {
	h.clients[client.ID] = client
	h.send(client, &Event{Kind: EventConnected, PeerID: client.ID})
	h.log.Debug().Str("conn_id", client.ID).Str("user_id", client.Identity.UserID).Msg("client registered")
}

func (h *Hub) dropClient(client *Client) {
	if current, ok := h.clients[client.ID]; !ok || current != client {
		return
	}
	h.removeFromRoom(client)
	delete(h.clients, client.ID)
	close(client.Events)
	h.log.Debug().Str("conn_id", client.ID).Msg("client unregistered")
}

func (h *Hub) dispatch(ctx context.Context, client *Client, cmd *Command) {
	if current, ok := h.clients[client.ID]; !ok || current != client {
		// Command raced the disconnect; the membership entry is gone.
		return
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		h.joinRoom(client, cmd.Room)
	case CommandLeaveRoom:
		h.leaveRoom(client)
	case CommandSignal:
		h.relaySignal(client, cmd)
	case CommandSendChat:
		h.sendChat(ctx, client, cmd.Text)
	case CommandForceMute:
		h.hostAction(ctx, client, EventForcedMute, "Only host can mute others")
	case CommandEndRoom:
		h.hostAction(ctx, client, EventRoomEnded, "Only host can end room")
	}
}

// joinRoom moves the connection into roomID. A join without a room id is
// silently ignored. Joining while already in another room switches: the old
// room observes peer-left before the new room observes peer-joined.
func (h *Hub) joinRoom(client *Client, roomID string) {
	if roomID == "" || client.room == roomID {
		return
	}
	h.removeFromRoom(client)

	r, ok := h.rooms[roomID]
	if !ok {
		r = newRoom(roomID)
		h.rooms[roomID] = r
	}
	r.add(client)
	client.room = roomID

	r.broadcast(&Event{
		Kind:     EventPeerJoined,
		Room:     roomID,
		PeerID:   client.ID,
		PeerName: client.Identity.Name,
	}, client)
}

// leaveRoom is idempotent: a second leave without an intervening join is a
// no-op and emits nothing.
func (h *Hub) leaveRoom(client *Client) {
	h.removeFromRoom(client)
}

// removeFromRoom clears the membership entry and notifies the remaining
// members. Safe to call for a client that is not in any room.
func (h *Hub) removeFromRoom(client *Client) {
	if client.room == "" {
		return
	}
	roomID := client.room
	client.room = ""

	r, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if !r.remove(client) {
		return
	}
	r.broadcast(&Event{Kind: EventPeerLeft, Room: roomID, PeerID: client.ID}, nil)
	if r.empty() {
		delete(h.rooms, roomID)
	}
}

// relaySignal forwards an opaque payload to exactly one other connection,
// tagged with the sender's connection id. Unknown targets are dropped
// silently; signaling is best-effort by design.
func (h *Hub) relaySignal(client *Client, cmd *Command) {
	if cmd.To == "" {
		return
	}
	target, ok := h.clients[cmd.To]
	if !ok {
		return
	}
	h.send(target, &Event{Kind: EventSignal, From: client.ID, Data: cmd.Data})
}

// sendChat persists the message off the hub goroutine and broadcasts
// chat-new once the store confirms the write. The fan-out scope is read
// from the live membership table at broadcast time, so members who joined
// or left during persistence are handled correctly.
func (h *Hub) sendChat(ctx context.Context, client *Client, text string) {
	if client.room == "" {
		return
	}
	if text == "" {
		h.send(client, &Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "text is required")})
		return
	}

	roomID := client.room
	author := client.Identity

	go func() {
		callCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()

		saved, err := h.store.SaveMessage(callCtx, roomID, author.UserID, text)

		h.do(ctx, func() {
			if err != nil {
				h.log.Error().Err(err).Str("room", roomID).Msg("persist chat message")
				h.sendIfRegistered(client, &Event{Kind: EventError, Error: coreError(ErrCodeInternal, "internal error")})
				return
			}
			r, ok := h.rooms[roomID]
			if !ok {
				return
			}
			r.broadcast(&Event{
				Kind: EventChatNew,
				Room: roomID,
				Message: &ChatMessage{
					ID:        saved.ID,
					RoomID:    saved.RoomID,
					Text:      saved.Text,
					Author:    author,
					CreatedAt: saved.CreatedAt,
				},
			}, nil)
		})
	}()
}

// hostAction handles forced-mute and room-ended. Ownership is looked up per
// event, never cached, so a host change is honored on the very next call.
// Non-owners get an error event and nothing else happens.
func (h *Hub) hostAction(ctx context.Context, client *Client, kind EventKind, denyMsg string) {
	if client.room == "" {
		return
	}

	roomID := client.room
	userID := client.Identity.UserID

	go func() {
		callCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()

		owner, err := h.store.IsRoomOwner(callCtx, userID, roomID)

		h.do(ctx, func() {
			if err != nil {
				h.log.Error().Err(err).Str("room", roomID).Msg("room ownership lookup")
				h.sendIfRegistered(client, &Event{Kind: EventError, Error: coreError(ErrCodeInternal, "internal error")})
				return
			}
			if !owner {
				h.sendIfRegistered(client, &Event{Kind: EventError, Error: coreError(ErrCodeNotHost, denyMsg)})
				return
			}

			r, ok := h.rooms[roomID]
			if !ok {
				return
			}
			r.broadcast(&Event{Kind: kind, Room: roomID}, nil)

			if kind == EventRoomEnded {
				// The room is over: clear every member's entry so later
				// room-scoped commands from them are no-ops.
				for member := range r.clients {
					member.room = ""
				}
				delete(h.rooms, roomID)
			}
		})
	}()
}

// do re-enters the hub goroutine with a continuation. Dropped when the hub
// is shutting down.
func (h *Hub) do(ctx context.Context, fn func()) {
	select {
	case h.tasks <- fn:
	case <-ctx.Done():
	}
}

// send delivers one event to one client, dropping it if the client's event
// buffer is full.
func (h *Hub) send(client *Client, event *Event) {
	select {
	case client.Events <- event:
	default:
	}
}

// sendIfRegistered is send for continuations that run after async store
// I/O, when the client may have disconnected in the meantime.
func (h *Hub) sendIfRegistered(client *Client, event *Event) {
	if current, ok := h.clients[client.ID]; !ok || current != client {
		return
	}
	h.send(client, event)
}

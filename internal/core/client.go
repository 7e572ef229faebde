package core

// Identity is the authenticated user carried by a connection. It is
// decoded once from the connection token and never refreshed afterwards.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

// Client is one live connection as seen by the hub. ID is server-assigned
// and stable for the lifetime of the underlying channel. The room field is
// owned by the hub goroutine; transports must never touch it.
type Client struct {
	ID       string
	Identity Identity
	Commands chan *Command
	Events   chan *Event

	room string // "" means not joined to any room
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, identity Identity) *Client {
	return &Client{
		ID:       id,
		Identity: identity,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
	}
}

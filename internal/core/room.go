package core

// room is one broadcast scope: the set of clients currently subscribed to a
// room id. Owned by the hub goroutine, never accessed concurrently.
type room struct {
	id      string
	clients map[*Client]struct{}
}

func newRoom(id string) *room {
	return &room{
		id:      id,
		clients: make(map[*Client]struct{}),
	}
}

func (r *room) add(c *Client) {
	r.clients[c] = struct{}{}
}

func (r *room) remove(c *Client) bool {
	if _, ok := r.clients[c]; !ok {
		return false
	}
	delete(r.clients, c)
	return true
}

func (r *room) empty() bool {
	return len(r.clients) == 0
}

// broadcast sends an event to every client in the room except exclude.
// A slow consumer is dropped for this event only; it never stalls delivery
// to the rest of the room.
func (r *room) broadcast(event *Event, exclude *Client) {
	for client := range r.clients {
		if client == exclude {
			continue
		}
		select {
		case client.Events <- event:
		default:
			// Drop for slow consumer.
		}
	}
}

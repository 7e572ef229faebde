package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kumpulhq/kumpul-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// noEvent asserts no event of the given kind arrives within a short window.
func noEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event %+v", ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// fakeStore implements the hub's Store interface in memory.
type fakeStore struct {
	mu       sync.Mutex
	owners   map[string]string // roomID -> userID
	saveErr  error
	ownerErr error
	saved    []*store.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{owners: make(map[string]string)}
}

func (f *fakeStore) setOwner(roomID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners[roomID] = userID
}

func (f *fakeStore) SaveMessage(_ context.Context, roomID, userID, text string) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	msg := &store.Message{
		ID:        "m1",
		RoomID:    roomID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	f.saved = append(f.saved, msg)
	return msg, nil
}

func (f *fakeStore) IsRoomOwner(_ context.Context, userID, roomID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ownerErr != nil {
		return false, f.ownerErr
	}
	owner, ok := f.owners[roomID]
	return ok && owner == userID, nil
}

var errStoreDown = errors.New("store down")

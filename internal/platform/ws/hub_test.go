package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestHub() *Hub {
	h := NewHub(zerolog.Nop())
	h.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return h
}

func drain(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.Send:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return ev
	default:
		t.Fatal("expected a queued event")
		return Event{}
	}
}

func TestBroadcast_ReachesAllClients(t *testing.T) {
	h := newTestHub()
	a := &Client{ID: "a", Username: "reception", Send: make(chan []byte, 8)}
	b := &Client{ID: "b", Username: "lab", Send: make(chan []byte, 8)}
	h.Register(a)
	h.Register(b)

	// Drop the presence chatter queued during registration.
	for len(a.Send) > 0 {
		<-a.Send
	}
	for len(b.Send) > 0 {
		<-b.Send
	}

	h.Broadcast("patient_added", map[string]interface{}{"id": 9})

	for _, c := range []*Client{a, b} {
		ev := drain(t, c)
		if ev.Event != "patient_added" {
			t.Errorf("client %s: expected patient_added, got %s", c.ID, ev.Event)
		}
	}
}

func TestBroadcast_SkipsFullClient(t *testing.T) {
	h := newTestHub()
	full := &Client{ID: "full", Send: make(chan []byte)} // no buffer, never read
	ok := &Client{ID: "ok", Send: make(chan []byte, 8)}
	h.clients[full] = struct{}{}
	h.clients[ok] = struct{}{}

	done := make(chan struct{})
	go func() {
		h.Broadcast("inventory_updated", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client")
	}

	if ev := drain(t, ok); ev.Event != "inventory_updated" {
		t.Errorf("healthy client should still receive the event, got %s", ev.Event)
	}
}

func TestRegisterUnregister_PresenceEvents(t *testing.T) {
	h := newTestHub()
	watcher := &Client{ID: "w", Username: "admin", Send: make(chan []byte, 8)}
	h.Register(watcher)

	ev := drain(t, watcher)
	if ev.Event != "presence" {
		t.Fatalf("expected presence event, got %s", ev.Event)
	}
	payload := ev.Payload.(map[string]interface{})
	if payload["status"] != "connected" {
		t.Errorf("expected connected status, got %v", payload["status"])
	}
	if payload["online_count"].(float64) != 1 {
		t.Errorf("expected online_count 1, got %v", payload["online_count"])
	}

	other := &Client{ID: "o", Username: "nurse", Send: make(chan []byte, 8)}
	h.Register(other)
	drain(t, watcher)

	h.Unregister(other)
	ev = drain(t, watcher)
	payload = ev.Payload.(map[string]interface{})
	if payload["status"] != "disconnected" {
		t.Errorf("expected disconnected status, got %v", payload["status"])
	}
	if h.ClientCount() != 1 {
		t.Errorf("expected 1 remaining client, got %d", h.ClientCount())
	}
}

func TestUnregister_Twice(t *testing.T) {
	h := newTestHub()
	c := &Client{ID: "c", Send: make(chan []byte, 8)}
	h.Register(c)
	h.Unregister(c)
	h.Unregister(c) // second call must be a no-op, not a double close
}

func TestRelay_TypingOnly(t *testing.T) {
	h := newTestHub()
	watcher := &Client{ID: "w", Send: make(chan []byte, 8)}
	h.clients[watcher] = struct{}{}

	sender := &Client{ID: "s", Username: "reception"}
	h.relay(sender, clientFrame{Event: "typing"})
	if ev := drain(t, watcher); ev.Event != "typing" {
		t.Errorf("expected typing relay, got %s", ev.Event)
	}

	h.relay(sender, clientFrame{Event: "drop_tables"})
	if len(watcher.Send) != 0 {
		t.Error("unknown client frames must not be relayed")
	}
}

package adminnote

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
)

type mockRepo struct {
	notes  map[int64]*Note
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{notes: make(map[int64]*Note), nextID: 1}
}

func (m *mockRepo) Create(ctx context.Context, n *Note) error {
	n.ID = m.nextID
	m.nextID++
	m.notes[n.ID] = n
	return nil
}

func (m *mockRepo) MarkRead(ctx context.Context, id int64) error {
	n, ok := m.notes[id]
	if !ok {
		return apperr.NotFound("admin note")
	}
	n.Read = true
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Note, int, error) {
	var out []*Note
	for _, n := range m.notes {
		out = append(out, n)
	}
	return out, len(out), nil
}

type stubBus struct {
	events []string
}

func (b *stubBus) Broadcast(event string, payload interface{}) {
	b.events = append(b.events, event)
}

type nopSink struct{}

func (nopSink) Append(ctx context.Context, actor, action, detail string) error { return nil }
func (nopSink) List(ctx context.Context, limit, offset int) ([]*activity.Entry, int, error) {
	return nil, 0, nil
}

func newTestService(repo *mockRepo) (*Service, *stubBus) {
	bus := &stubBus{}
	svc := NewService(repo, activity.NewRecorder(nopSink{}, zerolog.Nop()), bus)
	return svc, bus
}

func TestCreate_DefaultsNormalPriority(t *testing.T) {
	svc, bus := newTestService(newMockRepo())

	n := &Note{SenderID: 3, Message: "supply room key missing"}
	if err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Priority != "normal" {
		t.Errorf("expected normal default, got %s", n.Priority)
	}
	if len(bus.events) != 1 || bus.events[0] != "admin_note_added" {
		t.Errorf("expected admin_note_added broadcast, got %v", bus.events)
	}
}

func TestCreate_UnknownPriority(t *testing.T) {
	svc, _ := newTestService(newMockRepo())
	err := svc.Create(context.Background(), &Note{SenderID: 3, Message: "x", Priority: "whenever"})
	if err == nil {
		t.Fatal("expected rejection of unknown priority")
	}
}

func TestMarkRead(t *testing.T) {
	repo := newMockRepo()
	svc, bus := newTestService(repo)
	ctx := context.Background()

	n := &Note{SenderID: 3, Message: "urgent restock", Priority: "urgent"}
	if err := svc.Create(ctx, n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.notes[n.ID].Read {
		t.Error("expected note marked read")
	}
	if bus.events[len(bus.events)-1] != "admin_note_read" {
		t.Errorf("expected admin_note_read broadcast, got %v", bus.events)
	}

	if err := svc.MarkRead(ctx, 404); err == nil {
		t.Fatal("expected not-found for unknown note")
	}
}

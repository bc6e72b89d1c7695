package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
)

type mockRepo struct {
	appts  map[int64]*Appointment
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[int64]*Appointment), nextID: 1}
}

func (m *mockRepo) Create(ctx context.Context, a *Appointment) error {
	a.ID = m.nextID
	m.nextID++
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, apperr.NotFound("appointment")
	}
	return a, nil
}

func (m *mockRepo) Update(ctx context.Context, a *Appointment) error {
	existing, ok := m.appts[a.ID]
	if !ok {
		return apperr.NotFound("appointment")
	}
	existing.DoctorID = a.DoctorID
	existing.ScheduledAt = a.ScheduledAt
	existing.Reason = a.Reason
	existing.Status = a.Status
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.appts[id]; !ok {
		return apperr.NotFound("appointment")
	}
	delete(m.appts, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appts {
		out = append(out, a)
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

func TestCreate_DefaultsScheduled(t *testing.T) {
	svc, bus := newTestService(newMockRepo())

	a := &Appointment{PatientID: 1, ScheduledAt: time.Now().Add(24 * time.Hour)}
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected scheduled default, got %s", a.Status)
	}
	if len(bus.events) != 1 || bus.events[0] != "appointment_added" {
		t.Errorf("expected one appointment_added broadcast, got %v", bus.events)
	}
}

func TestCreate_UnknownStatus(t *testing.T) {
	svc, bus := newTestService(newMockRepo())

	a := &Appointment{PatientID: 1, ScheduledAt: time.Now(), Status: "tentative"}
	if err := svc.Create(context.Background(), a); err == nil {
		t.Fatal("expected rejection of unknown status")
	}
	if len(bus.events) != 0 {
		t.Error("no broadcast on validation failure")
	}
}

func TestUpdate_TransitionsFreely(t *testing.T) {
	repo := newMockRepo()
	svc, bus := newTestService(repo)
	ctx := context.Background()

	a := &Appointment{PatientID: 1, ScheduledAt: time.Now()}
	if err := svc.Create(ctx, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Any known status is accepted, including moving backwards.
	for _, status := range []string{StatusCompleted, StatusNoShow, StatusScheduled, StatusCancelled} {
		a.Status = status
		if err := svc.Update(ctx, a); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}
	if repo.appts[a.ID].Status != StatusCancelled {
		t.Errorf("expected final status cancelled, got %s", repo.appts[a.ID].Status)
	}
	if bus.events[len(bus.events)-1] != "appointment_updated" {
		t.Errorf("expected appointment_updated broadcast, got %v", bus.events)
	}
}

func TestDelete_Broadcasts(t *testing.T) {
	repo := newMockRepo()
	svc, bus := newTestService(repo)
	ctx := context.Background()

	a := &Appointment{PatientID: 1, ScheduledAt: time.Now()}
	if err := svc.Create(ctx, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.appts) != 0 {
		t.Error("expected appointment removed")
	}
	if bus.events[len(bus.events)-1] != "appointment_deleted" {
		t.Errorf("expected appointment_deleted broadcast, got %v", bus.events)
	}

	if err := svc.Delete(ctx, a.ID); err == nil {
		t.Fatal("expected not-found on second delete")
	}
}

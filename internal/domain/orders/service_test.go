package orders

import (
	"context"
	"mime/multipart"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
)

type mockNursingRepo struct {
	orders map[int64]*NursingOrder
	nextID int64
}

func newMockNursingRepo() *mockNursingRepo {
	return &mockNursingRepo{orders: make(map[int64]*NursingOrder), nextID: 1}
}

func (m *mockNursingRepo) Create(ctx context.Context, o *NursingOrder) error {
	o.ID = m.nextID
	m.nextID++
	m.orders[o.ID] = o
	return nil
}

func (m *mockNursingRepo) GetByID(ctx context.Context, id int64) (*NursingOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, apperr.NotFound("nursing order")
	}
	return o, nil
}

func (m *mockNursingRepo) Update(ctx context.Context, o *NursingOrder) error {
	existing, ok := m.orders[o.ID]
	if !ok {
		return apperr.NotFound("nursing order")
	}
	existing.Instructions = o.Instructions
	existing.Status = o.Status
	return nil
}

func (m *mockNursingRepo) List(ctx context.Context, status string, limit, offset int) ([]*NursingOrder, int, error) {
	var out []*NursingOrder
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

type mockUltrasoundRepo struct {
	orders map[int64]*UltrasoundOrder
	nextID int64
}

func newMockUltrasoundRepo() *mockUltrasoundRepo {
	return &mockUltrasoundRepo{orders: make(map[int64]*UltrasoundOrder), nextID: 1}
}

func (m *mockUltrasoundRepo) Create(ctx context.Context, o *UltrasoundOrder) error {
	o.ID = m.nextID
	m.nextID++
	m.orders[o.ID] = o
	return nil
}

func (m *mockUltrasoundRepo) GetByID(ctx context.Context, id int64) (*UltrasoundOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, apperr.NotFound("ultrasound order")
	}
	cp := *o
	cp.SplitImages()
	return &cp, nil
}

func (m *mockUltrasoundRepo) Update(ctx context.Context, o *UltrasoundOrder) error {
	existing, ok := m.orders[o.ID]
	if !ok {
		return apperr.NotFound("ultrasound order")
	}
	existing.ExamType = o.ExamType
	existing.Findings = o.Findings
	existing.Status = o.Status
	return nil
}

func (m *mockUltrasoundRepo) SetImages(ctx context.Context, id int64, raw string) error {
	o, ok := m.orders[id]
	if !ok {
		return apperr.NotFound("ultrasound order")
	}
	o.RawImages = raw
	return nil
}

func (m *mockUltrasoundRepo) List(ctx context.Context, status string, limit, offset int) ([]*UltrasoundOrder, int, error) {
	var out []*UltrasoundOrder
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

type stubSaver struct {
	name string
	err  error
}

func (s *stubSaver) Save(fh *multipart.FileHeader) (string, error) {
	return s.name, s.err
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

func newTestService(saver ImageSaver) (*Service, *mockNursingRepo, *mockUltrasoundRepo, *stubBus) {
	nursing := newMockNursingRepo()
	us := newMockUltrasoundRepo()
	bus := &stubBus{}
	svc := NewService(nursing, us, saver, activity.NewRecorder(nopSink{}, zerolog.Nop()), bus)
	return svc, nursing, us, bus
}

func TestAppendImage(t *testing.T) {
	if got := AppendImage("", "a.png"); got != "a.png" {
		t.Errorf("expected a.png, got %q", got)
	}
	if got := AppendImage("a.png", "b.jpg"); got != "a.png,b.jpg" {
		t.Errorf("expected a.png,b.jpg, got %q", got)
	}
}

func TestSplitImages(t *testing.T) {
	o := &UltrasoundOrder{RawImages: "a.png, b.jpg,,c.gif"}
	o.SplitImages()
	if want := []string{"a.png", "b.jpg", "c.gif"}; !reflect.DeepEqual(o.Images, want) {
		t.Errorf("expected %v, got %v", want, o.Images)
	}

	empty := &UltrasoundOrder{}
	empty.SplitImages()
	if len(empty.Images) != 0 {
		t.Errorf("expected empty slice, got %v", empty.Images)
	}
}

func TestCreateNursing_DefaultsPending(t *testing.T) {
	svc, _, _, bus := newTestService(&stubSaver{})

	o := &NursingOrder{PatientID: 1, Instructions: "hourly vitals"}
	if err := svc.CreateNursing(context.Background(), o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusPending {
		t.Errorf("expected pending default, got %s", o.Status)
	}
	if len(bus.events) != 1 || bus.events[0] != "nursing_order_added" {
		t.Errorf("expected nursing_order_added broadcast, got %v", bus.events)
	}
}

func TestListNursing_PendingFilter(t *testing.T) {
	svc, _, _, _ := newTestService(&stubSaver{})
	ctx := context.Background()

	for _, status := range []string{StatusPending, StatusCompleted, StatusPending} {
		if err := svc.CreateNursing(ctx, &NursingOrder{PatientID: 1, Instructions: "x", Status: status}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	_, total, err := svc.ListNursing(ctx, StatusPending, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 pending orders, got %d", total)
	}
}

func TestAttachImage_AppendsFilename(t *testing.T) {
	svc, _, us, bus := newTestService(&stubSaver{name: "generated-1.png"})
	ctx := context.Background()

	o := &UltrasoundOrder{PatientID: 1, ExamType: "abdominal"}
	if err := svc.CreateUltrasound(ctx, o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.AttachImage(ctx, o.ID, &multipart.FileHeader{Filename: "scan.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(updated.Images, []string{"generated-1.png"}) {
		t.Errorf("expected the stored filename appended, got %v", updated.Images)
	}
	if us.orders[o.ID].RawImages != "generated-1.png" {
		t.Errorf("expected raw list persisted, got %q", us.orders[o.ID].RawImages)
	}
	if bus.events[len(bus.events)-1] != "ultrasound_image_added" {
		t.Errorf("expected ultrasound_image_added broadcast, got %v", bus.events)
	}
}

func TestAttachImage_SecondImageAppends(t *testing.T) {
	saver := &stubSaver{name: "first.png"}
	svc, _, us, _ := newTestService(saver)
	ctx := context.Background()

	o := &UltrasoundOrder{PatientID: 1, ExamType: "obstetric"}
	if err := svc.CreateUltrasound(ctx, o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AttachImage(ctx, o.ID, &multipart.FileHeader{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saver.name = "second.jpg"
	updated, err := svc.AttachImage(ctx, o.ID, &multipart.FileHeader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(updated.Images, []string{"first.png", "second.jpg"}) {
		t.Errorf("expected both filenames in order, got %v", updated.Images)
	}
	if us.orders[o.ID].RawImages != "first.png,second.jpg" {
		t.Errorf("unexpected raw list: %q", us.orders[o.ID].RawImages)
	}
}

func TestAttachImage_RejectedUploadLeavesOrderUntouched(t *testing.T) {
	svc, _, us, bus := newTestService(&stubSaver{err: apperr.UploadRejected("file type is not allowed")})
	ctx := context.Background()

	o := &UltrasoundOrder{PatientID: 1, ExamType: "abdominal"}
	if err := svc.CreateUltrasound(ctx, o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := len(bus.events)

	_, err := svc.AttachImage(ctx, o.ID, &multipart.FileHeader{Filename: "report.pdf"})
	if err == nil {
		t.Fatal("expected upload rejection to propagate")
	}
	if us.orders[o.ID].RawImages != "" {
		t.Error("rejected upload must not modify the image list")
	}
	if len(bus.events) != before {
		t.Error("no broadcast on rejected upload")
	}
}

func TestAttachImage_UnknownOrder(t *testing.T) {
	svc, _, _, _ := newTestService(&stubSaver{name: "x.png"})
	if _, err := svc.AttachImage(context.Background(), 404, &multipart.FileHeader{}); err == nil {
		t.Fatal("expected not-found failure")
	}
}

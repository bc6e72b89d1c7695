package stats

import (
	"context"
	"testing"
	"time"
)

type stubRepo struct {
	summary *Summary
	gotNow  time.Time
}

func (s *stubRepo) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	s.gotNow = now
	return s.summary, nil
}

func TestSummary_PassesPinnedClock(t *testing.T) {
	pinned := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	repo := &stubRepo{summary: &Summary{
		Patients:          12,
		AppointmentsToday: 3,
		PendingLabTests:   2,
		LowStockItems:     1,
		RevenueToday:      450.50,
	}}
	svc := NewService(repo).WithClock(func() time.Time { return pinned })

	got, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.gotNow.Equal(pinned) {
		t.Errorf("expected the pinned clock forwarded, got %v", repo.gotNow)
	}
	if got.Patients != 12 || got.RevenueToday != 450.50 {
		t.Errorf("summary passed through unchanged, got %+v", got)
	}
}

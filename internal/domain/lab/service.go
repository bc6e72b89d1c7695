package lab

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/internal/platform/ws"
)

type Service struct {
	repo   Repository
	stats  StatsRepository
	rec    *activity.Recorder
	bus    ws.Broadcaster
	logger zerolog.Logger
}

func NewService(repo Repository, stats StatsRepository, rec *activity.Recorder, bus ws.Broadcaster, logger zerolog.Logger) *Service {
	return &Service{repo: repo, stats: stats, rec: rec, bus: bus, logger: logger}
}

func actor(ctx context.Context) string {
	if ident := auth.FromContext(ctx); ident != nil {
		return ident.Username
	}
	return "system"
}

// Create stores the test request, then bumps the counter for every name in
// the panel. "CBC, CBC, ESR" adds 2 to CBC and 1 to ESR. Counter failures are
// logged, not surfaced: statistics are advisory, the order is already stored.
func (s *Service) Create(ctx context.Context, t *LabTest) error {
	names := SplitTestNames(t.TestNames)
	if len(names) == 0 {
		return apperr.Validation("at least one test name is required", "test_names")
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if !ValidStatus(t.Status) {
		return apperr.Validation("unknown lab test status", "status")
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return err
	}

	for _, name := range names {
		if err := s.stats.Increment(ctx, name); err != nil {
			s.logger.Error().Err(err).Str("test_name", name).Msg("test statistic increment failed")
		}
	}

	s.rec.Record(ctx, actor(ctx), "lab_test_created", fmt.Sprintf("patient=%d tests=%s", t.PatientID, t.TestNames))
	s.bus.Broadcast("lab_test_added", map[string]interface{}{
		"id": t.ID, "patient_id": t.PatientID, "test_names": t.TestNames,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*LabTest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*LabTest, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*LabTest, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// Update records results or moves the test through its statuses. Test names
// are fixed at creation; re-ordering means a new request.
func (s *Service) Update(ctx context.Context, t *LabTest) error {
	if !ValidStatus(t.Status) {
		return apperr.Validation("unknown lab test status", "status")
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "lab_test_updated", fmt.Sprintf("id=%d status=%s", t.ID, t.Status))
	s.bus.Broadcast("lab_test_updated", map[string]interface{}{
		"id": t.ID, "status": t.Status,
	})
	return nil
}

func (s *Service) Statistics(ctx context.Context) ([]*TestStatistic, error) {
	return s.stats.List(ctx)
}

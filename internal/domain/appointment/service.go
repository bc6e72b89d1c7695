package appointment

import (
	"context"
	"fmt"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/internal/platform/ws"
)

type Service struct {
	repo Repository
	rec  *activity.Recorder
	bus  ws.Broadcaster
}

func NewService(repo Repository, rec *activity.Recorder, bus ws.Broadcaster) *Service {
	return &Service{repo: repo, rec: rec, bus: bus}
}

func actor(ctx context.Context) string {
	if ident := auth.FromContext(ctx); ident != nil {
		return ident.Username
	}
	return "system"
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !ValidStatus(a.Status) {
		return apperr.Validation("unknown appointment status", "status")
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "appointment_created", fmt.Sprintf("patient=%d", a.PatientID))
	s.bus.Broadcast("appointment_added", map[string]interface{}{
		"id": a.ID, "patient_id": a.PatientID, "scheduled_at": a.ScheduledAt,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, a *Appointment) error {
	if !ValidStatus(a.Status) {
		return apperr.Validation("unknown appointment status", "status")
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "appointment_updated", fmt.Sprintf("id=%d status=%s", a.ID, a.Status))
	s.bus.Broadcast("appointment_updated", map[string]interface{}{
		"id": a.ID, "status": a.Status,
	})
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "appointment_deleted", fmt.Sprintf("id=%d", id))
	s.bus.Broadcast("appointment_deleted", map[string]interface{}{"id": id})
	return nil
}

package patient

import (
	"context"
	"fmt"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/internal/platform/ws"
)

type Service struct {
	repo    Repository
	records RecordRepository
	rec     *activity.Recorder
	bus     ws.Broadcaster
}

func NewService(repo Repository, records RecordRepository, rec *activity.Recorder, bus ws.Broadcaster) *Service {
	return &Service{repo: repo, records: records, rec: rec, bus: bus}
}

func actor(ctx context.Context) string {
	if ident := auth.FromContext(ctx); ident != nil {
		return ident.Username
	}
	return "system"
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "patient_created", p.FullName)
	s.bus.Broadcast("patient_added", map[string]interface{}{
		"id": p.ID, "full_name": p.FullName,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "patient_updated", fmt.Sprintf("id=%d", p.ID))
	s.bus.Broadcast("patient_updated", map[string]interface{}{
		"id": p.ID, "full_name": p.FullName,
	})
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "patient_deleted", fmt.Sprintf("id=%d", id))
	s.bus.Broadcast("patient_deleted", map[string]interface{}{"id": id})
	return nil
}

// AddRecord appends a clinical note authored by the calling doctor.
func (s *Service) AddRecord(ctx context.Context, rec *MedicalRecord) error {
	if _, err := s.repo.GetByID(ctx, rec.PatientID); err != nil {
		return err
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "medical_record_created", fmt.Sprintf("patient=%d", rec.PatientID))
	s.bus.Broadcast("medical_record_added", map[string]interface{}{
		"id": rec.ID, "patient_id": rec.PatientID,
	})
	return nil
}

func (s *Service) ListRecords(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

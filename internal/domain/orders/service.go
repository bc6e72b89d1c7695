package orders

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/internal/platform/ws"
)

// ImageSaver persists an uploaded file and returns its stored filename.
type ImageSaver interface {
	Save(fh *multipart.FileHeader) (string, error)
}

type Service struct {
	nursing    NursingRepository
	ultrasound UltrasoundRepository
	saver      ImageSaver
	rec        *activity.Recorder
	bus        ws.Broadcaster
}

func NewService(nursing NursingRepository, ultrasound UltrasoundRepository, saver ImageSaver, rec *activity.Recorder, bus ws.Broadcaster) *Service {
	return &Service{nursing: nursing, ultrasound: ultrasound, saver: saver, rec: rec, bus: bus}
}

func actor(ctx context.Context) string {
	if ident := auth.FromContext(ctx); ident != nil {
		return ident.Username
	}
	return "system"
}

func (s *Service) CreateNursing(ctx context.Context, o *NursingOrder) error {
	if o.Status == "" {
		o.Status = StatusPending
	}
	if !ValidStatus(o.Status) {
		return apperr.Validation("unknown order status", "status")
	}
	if err := s.nursing.Create(ctx, o); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "nursing_order_created", fmt.Sprintf("patient=%d", o.PatientID))
	s.bus.Broadcast("nursing_order_added", map[string]interface{}{
		"id": o.ID, "patient_id": o.PatientID,
	})
	return nil
}

func (s *Service) GetNursing(ctx context.Context, id int64) (*NursingOrder, error) {
	return s.nursing.GetByID(ctx, id)
}

func (s *Service) ListNursing(ctx context.Context, status string, limit, offset int) ([]*NursingOrder, int, error) {
	return s.nursing.List(ctx, status, limit, offset)
}

func (s *Service) UpdateNursing(ctx context.Context, o *NursingOrder) error {
	if !ValidStatus(o.Status) {
		return apperr.Validation("unknown order status", "status")
	}
	if err := s.nursing.Update(ctx, o); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "nursing_order_updated", fmt.Sprintf("id=%d status=%s", o.ID, o.Status))
	s.bus.Broadcast("nursing_order_updated", map[string]interface{}{
		"id": o.ID, "status": o.Status,
	})
	return nil
}

func (s *Service) CreateUltrasound(ctx context.Context, o *UltrasoundOrder) error {
	if o.Status == "" {
		o.Status = StatusPending
	}
	if !ValidStatus(o.Status) {
		return apperr.Validation("unknown order status", "status")
	}
	if err := s.ultrasound.Create(ctx, o); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "ultrasound_order_created", fmt.Sprintf("patient=%d", o.PatientID))
	s.bus.Broadcast("ultrasound_order_added", map[string]interface{}{
		"id": o.ID, "patient_id": o.PatientID, "exam_type": o.ExamType,
	})
	return nil
}

func (s *Service) GetUltrasound(ctx context.Context, id int64) (*UltrasoundOrder, error) {
	return s.ultrasound.GetByID(ctx, id)
}

func (s *Service) ListUltrasound(ctx context.Context, status string, limit, offset int) ([]*UltrasoundOrder, int, error) {
	return s.ultrasound.List(ctx, status, limit, offset)
}

func (s *Service) UpdateUltrasound(ctx context.Context, o *UltrasoundOrder) error {
	if !ValidStatus(o.Status) {
		return apperr.Validation("unknown order status", "status")
	}
	if err := s.ultrasound.Update(ctx, o); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "ultrasound_order_updated", fmt.Sprintf("id=%d status=%s", o.ID, o.Status))
	s.bus.Broadcast("ultrasound_order_updated", map[string]interface{}{
		"id": o.ID, "status": o.Status,
	})
	return nil
}

// AttachImage validates and stores an uploaded scan, then appends its stored
// filename to the order's image list.
func (s *Service) AttachImage(ctx context.Context, id int64, fh *multipart.FileHeader) (*UltrasoundOrder, error) {
	o, err := s.ultrasound.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := s.saver.Save(fh)
	if err != nil {
		return nil, err
	}

	raw := AppendImage(o.RawImages, name)
	if err := s.ultrasound.SetImages(ctx, id, raw); err != nil {
		return nil, err
	}
	o.RawImages = raw
	o.SplitImages()

	s.rec.Record(ctx, actor(ctx), "ultrasound_image_uploaded", fmt.Sprintf("order=%d file=%s", id, name))
	s.bus.Broadcast("ultrasound_image_added", map[string]interface{}{
		"id": id, "image": name,
	})
	return o, nil
}

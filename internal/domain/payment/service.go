package payment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/medidesk/medidesk/internal/config"
	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/internal/platform/ws"
)

// QREncoder produces the base64 PNG embedded in wallet payments.
type QREncoder interface {
	Encode(amount float64, reference string) (string, error)
}

type Service struct {
	repo     Repository
	qr       QREncoder
	qrPolicy string
	rec      *activity.Recorder
	bus      ws.Broadcaster
	logger   zerolog.Logger
}

func NewService(repo Repository, qr QREncoder, qrPolicy string, rec *activity.Recorder, bus ws.Broadcaster, logger zerolog.Logger) *Service {
	return &Service{repo: repo, qr: qr, qrPolicy: qrPolicy, rec: rec, bus: bus, logger: logger}
}

func actor(ctx context.Context) string {
	if ident := auth.FromContext(ctx); ident != nil {
		return ident.Username
	}
	return "system"
}

func (s *Service) Create(ctx context.Context, p *Payment) error {
	if !ValidMethod(p.Method) {
		return apperr.Validation("unknown payment method", "method")
	}
	if p.Status == "" {
		p.Status = "completed"
	}

	if p.Method == MethodWallet {
		payload, err := s.qr.Encode(p.Amount, p.Reference)
		switch {
		case err == nil:
			p.QRPayload = payload
		case s.qrPolicy == config.QRPolicyDegrade:
			// Stored without a QR payload; the desk falls back to manual entry.
			s.logger.Warn().Err(err).Msg("qr encoding failed, storing payment without payload")
		default:
			return apperr.Internal("qr encoding failed", err)
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "payment_created",
		fmt.Sprintf("patient=%d amount=%.2f method=%s", p.PatientID, p.Amount, p.Method))
	s.bus.Broadcast("payment_added", map[string]interface{}{
		"id": p.ID, "patient_id": p.PatientID, "amount": p.Amount, "method": p.Method,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Payment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

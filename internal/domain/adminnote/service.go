package adminnote

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

func (s *Service) Create(ctx context.Context, n *Note) error {
	if n.Priority == "" {
		n.Priority = "normal"
	}
	switch n.Priority {
	case "low", "normal", "high", "urgent":
	default:
		return apperr.Validation("unknown priority", "priority")
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "admin_note_created", fmt.Sprintf("priority=%s", n.Priority))
	s.bus.Broadcast("admin_note_added", map[string]interface{}{
		"id": n.ID, "priority": n.Priority,
	})
	return nil
}

func (s *Service) MarkRead(ctx context.Context, id int64) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "admin_note_read", fmt.Sprintf("id=%d", id))
	s.bus.Broadcast("admin_note_read", map[string]interface{}{"id": id})
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Note, int, error) {
	return s.repo.List(ctx, limit, offset)
}

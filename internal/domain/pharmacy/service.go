package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/internal/platform/ws"
)

type Service struct {
	rxs          PrescriptionRepository
	inventory    InventoryRepository
	interactions InteractionRepository
	rec          *activity.Recorder
	bus          ws.Broadcaster
	now          func() time.Time
}

func NewService(rxs PrescriptionRepository, inventory InventoryRepository, interactions InteractionRepository, rec *activity.Recorder, bus ws.Broadcaster) *Service {
	return &Service{
		rxs:          rxs,
		inventory:    inventory,
		interactions: interactions,
		rec:          rec,
		bus:          bus,
		now:          time.Now,
	}
}

// WithClock fixes the service clock; tests use it to pin low-stock expiry
// decisions.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func actor(ctx context.Context) string {
	if ident := auth.FromContext(ctx); ident != nil {
		return ident.Username
	}
	return "system"
}

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if p.Status == "" {
		p.Status = PrescriptionActive
	}
	if !ValidPrescriptionStatus(p.Status) {
		return apperr.Validation("unknown prescription status", "status")
	}
	if err := s.rxs.Create(ctx, p); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "prescription_created",
		fmt.Sprintf("patient=%d medication=%s", p.PatientID, p.Medication))
	s.bus.Broadcast("prescription_added", map[string]interface{}{
		"id": p.ID, "patient_id": p.PatientID, "medication": p.Medication,
	})
	return nil
}

func (s *Service) GetPrescription(ctx context.Context, id int64) (*Prescription, error) {
	return s.rxs.GetByID(ctx, id)
}

func (s *Service) ListPrescriptions(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.rxs.List(ctx, limit, offset)
}

func (s *Service) UpdatePrescription(ctx context.Context, p *Prescription) error {
	if !ValidPrescriptionStatus(p.Status) {
		return apperr.Validation("unknown prescription status", "status")
	}
	if err := s.rxs.Update(ctx, p); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "prescription_updated", fmt.Sprintf("id=%d", p.ID))
	s.bus.Broadcast("prescription_updated", map[string]interface{}{"id": p.ID})
	return nil
}

// Dispense marks a prescription handed out. Dispensing twice is rejected so
// the pharmacy counter cannot double-issue.
func (s *Service) Dispense(ctx context.Context, id int64) (*Prescription, error) {
	p, err := s.rxs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Dispensed {
		return nil, apperr.Validation("prescription already dispensed")
	}
	if err := s.rxs.SetDispensed(ctx, id); err != nil {
		return nil, err
	}
	p.Dispensed = true
	s.rec.Record(ctx, actor(ctx), "prescription_dispensed", fmt.Sprintf("id=%d", id))
	s.bus.Broadcast("prescription_dispensed", map[string]interface{}{"id": id})
	return p, nil
}

func (s *Service) CreateItem(ctx context.Context, i *InventoryItem) error {
	if err := s.inventory.Create(ctx, i); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "inventory_item_created", i.MedicineName)
	s.bus.Broadcast("inventory_added", map[string]interface{}{
		"id": i.ID, "medicine_name": i.MedicineName, "quantity": i.Quantity,
	})
	return nil
}

func (s *Service) GetItem(ctx context.Context, id int64) (*InventoryItem, error) {
	return s.inventory.GetByID(ctx, id)
}

func (s *Service) ListItems(ctx context.Context, limit, offset int) ([]*InventoryItem, int, error) {
	return s.inventory.List(ctx, limit, offset)
}

func (s *Service) UpdateItem(ctx context.Context, i *InventoryItem) error {
	if err := s.inventory.Update(ctx, i); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "inventory_item_updated", fmt.Sprintf("id=%d", i.ID))
	s.bus.Broadcast("inventory_updated", map[string]interface{}{
		"id": i.ID, "quantity": i.Quantity,
	})
	return nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.inventory.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "inventory_item_deleted", fmt.Sprintf("id=%d", id))
	s.bus.Broadcast("inventory_deleted", map[string]interface{}{"id": id})
	return nil
}

// LowStock filters at read time against the current clock: nothing is flagged
// in the store, so threshold and expiry changes take effect immediately.
func (s *Service) LowStock(ctx context.Context) ([]*InventoryItem, error) {
	items, err := s.inventory.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	low := make([]*InventoryItem, 0)
	for _, i := range items {
		if i.LowStock(now) {
			low = append(low, i)
		}
	}
	return low, nil
}

func (s *Service) CreateInteraction(ctx context.Context, d *DrugInteraction) error {
	if err := s.interactions.Create(ctx, d); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "drug_interaction_created",
		fmt.Sprintf("%s / %s", d.Drug1, d.Drug2))
	s.bus.Broadcast("drug_interaction_added", map[string]interface{}{
		"id": d.ID, "drug1": d.Drug1, "drug2": d.Drug2, "severity": d.Severity,
	})
	return nil
}

func (s *Service) ListInteractions(ctx context.Context) ([]*DrugInteraction, error) {
	return s.interactions.List(ctx)
}

// CheckInteractions tests every unordered pair from the given drug list
// against the stored interactions. (A, B) matches a stored (B, A); each
// stored interaction appears at most once in the result.
func (s *Service) CheckInteractions(ctx context.Context, drugs []string) ([]*DrugInteraction, error) {
	if len(drugs) < 2 {
		return []*DrugInteraction{}, nil
	}
	stored, err := s.interactions.List(ctx)
	if err != nil {
		return nil, err
	}

	found := make([]*DrugInteraction, 0)
	seen := make(map[int64]bool)
	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			for _, d := range stored {
				if !seen[d.ID] && d.Matches(drugs[i], drugs[j]) {
					seen[d.ID] = true
					found = append(found, d)
				}
			}
		}
	}
	return found, nil
}

package pharmacy

import "context"

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	SetDispensed(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Prescription, int, error)
}

type InventoryRepository interface {
	Create(ctx context.Context, i *InventoryItem) error
	GetByID(ctx context.Context, id int64) (*InventoryItem, error)
	Update(ctx context.Context, i *InventoryItem) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*InventoryItem, int, error)
	// ListAll feeds the low-stock filter; the inventory is small enough to
	// scan in full.
	ListAll(ctx context.Context) ([]*InventoryItem, error)
}

type InteractionRepository interface {
	Create(ctx context.Context, d *DrugInteraction) error
	List(ctx context.Context) ([]*DrugInteraction, error)
}

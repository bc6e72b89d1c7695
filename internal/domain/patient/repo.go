package patient

import "context"

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error)
}

// RecordRepository persists append-only medical records.
type RecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalRecord, int, error)
}

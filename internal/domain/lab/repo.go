package lab

import "context"

type Repository interface {
	Create(ctx context.Context, t *LabTest) error
	GetByID(ctx context.Context, id int64) (*LabTest, error)
	Update(ctx context.Context, t *LabTest) error
	List(ctx context.Context, limit, offset int) ([]*LabTest, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*LabTest, int, error)
}

// StatsRepository maintains the per-test-name order counters.
type StatsRepository interface {
	Increment(ctx context.Context, testName string) error
	List(ctx context.Context) ([]*TestStatistic, error)
}

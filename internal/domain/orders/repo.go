package orders

import "context"

type NursingRepository interface {
	Create(ctx context.Context, o *NursingOrder) error
	GetByID(ctx context.Context, id int64) (*NursingOrder, error)
	Update(ctx context.Context, o *NursingOrder) error
	List(ctx context.Context, status string, limit, offset int) ([]*NursingOrder, int, error)
}

type UltrasoundRepository interface {
	Create(ctx context.Context, o *UltrasoundOrder) error
	GetByID(ctx context.Context, id int64) (*UltrasoundOrder, error)
	Update(ctx context.Context, o *UltrasoundOrder) error
	SetImages(ctx context.Context, id int64, raw string) error
	List(ctx context.Context, status string, limit, offset int) ([]*UltrasoundOrder, int, error)
}

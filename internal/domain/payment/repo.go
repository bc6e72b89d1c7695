package payment

import "context"

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context, limit, offset int) ([]*Payment, int, error)
}

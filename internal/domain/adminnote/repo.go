package adminnote

import "context"

type Repository interface {
	Create(ctx context.Context, n *Note) error
	MarkRead(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Note, int, error)
}

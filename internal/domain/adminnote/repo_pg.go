package adminnote

import (
	"context"

	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/db"
)

type RepoPG struct {
	store *db.Store
}

func NewRepoPG(store *db.Store) *RepoPG {
	return &RepoPG{store: store}
}

func (r *RepoPG) Create(ctx context.Context, n *Note) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO admin_notes (sender_id, message, priority)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		[]interface{}{n.SenderID, n.Message, n.Priority},
		&n.ID, &n.CreatedAt)
}

func (r *RepoPG) MarkRead(ctx context.Context, id int64) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE admin_notes SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("admin note")
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, limit, offset int) ([]*Note, int, error) {
	var total int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM admin_notes`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.store.Query(ctx,
		`SELECT n.id, n.sender_id, u.full_name, n.message, n.priority, n.read, n.created_at
		 FROM admin_notes n
		 JOIN users u ON u.id = n.sender_id
		 ORDER BY n.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.SenderID, &n.SenderName, &n.Message, &n.Priority,
			&n.Read, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		notes = append(notes, &n)
	}
	return notes, total, rows.Err()
}

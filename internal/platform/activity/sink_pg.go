package activity

import (
	"context"

	"github.com/medidesk/medidesk/internal/platform/db"
)

type PGSink struct {
	store *db.Store
}

func NewPGSink(store *db.Store) *PGSink {
	return &PGSink{store: store}
}

func (s *PGSink) Append(ctx context.Context, actor, action, detail string) error {
	_, err := s.store.Exec(ctx,
		`INSERT INTO activity_log (actor, action, detail) VALUES ($1, $2, $3)`,
		actor, action, detail)
	return err
}

func (s *PGSink) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := s.store.QueryRow(ctx, `SELECT COUNT(*) FROM activity_log`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.store.Query(ctx,
		`SELECT id, actor, action, detail, created_at
		 FROM activity_log ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}

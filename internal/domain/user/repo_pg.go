package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/db"
)

type RepoPG struct {
	store *db.Store
}

func NewRepoPG(store *db.Store) *RepoPG {
	return &RepoPG{store: store}
}

const userCols = `id, username, password_hash, full_name, role, active, shift, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role,
		&u.Active, &u.Shift, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	return &u, err
}

func (r *RepoPG) Create(ctx context.Context, u *User) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO users (username, password_hash, full_name, role, active, shift)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		[]interface{}{u.Username, u.PasswordHash, u.FullName, u.Role, u.Active, u.Shift},
		&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.store.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *RepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.store.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1`, username))
}

func (r *RepoPG) Update(ctx context.Context, u *User) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE users SET full_name = $1, role = $2, shift = $3, updated_at = NOW()
		 WHERE id = $4`,
		u.FullName, u.Role, u.Shift, u.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *RepoPG) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *RepoPG) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE users SET active = $1, updated_at = NOW() WHERE id = $2`,
		active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *RepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.store.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.store.Query(ctx,
		`SELECT `+userCols+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

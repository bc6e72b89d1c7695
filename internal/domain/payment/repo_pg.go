package payment

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

const paymentSelect = `SELECT pay.id, pay.patient_id, p.full_name, pay.amount, pay.method,
	pay.reference, pay.qr_payload, pay.status, pay.created_at
	FROM payments pay
	JOIN patients p ON p.id = pay.patient_id`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.PatientID, &p.PatientName, &p.Amount, &p.Method,
		&p.Reference, &p.QRPayload, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("payment")
	}
	return &p, err
}

func (r *RepoPG) Create(ctx context.Context, p *Payment) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO payments (patient_id, amount, method, reference, qr_payload, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		[]interface{}{p.PatientID, p.Amount, p.Method, p.Reference, p.QRPayload, p.Status},
		&p.ID, &p.CreatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*Payment, error) {
	return scanPayment(r.store.QueryRow(ctx, paymentSelect+` WHERE pay.id = $1`, id))
}

func (r *RepoPG) List(ctx context.Context, limit, offset int) ([]*Payment, int, error) {
	var total int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM payments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.store.Query(ctx, paymentSelect+` ORDER BY pay.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

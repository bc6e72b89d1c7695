package appointment

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

// enriched select joining patient and doctor display names.
const apptSelect = `SELECT a.id, a.patient_id, p.full_name, a.doctor_id, COALESCE(u.full_name, ''),
	a.scheduled_at, a.reason, a.status, a.created_at, a.updated_at
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	LEFT JOIN users u ON u.id = a.doctor_id`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.DoctorID, &a.DoctorName,
		&a.ScheduledAt, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment")
	}
	return &a, err
}

func (r *RepoPG) Create(ctx context.Context, a *Appointment) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO appointments (patient_id, doctor_id, scheduled_at, reason, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		[]interface{}{a.PatientID, a.DoctorID, a.ScheduledAt, a.Reason, a.Status},
		&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppt(r.store.QueryRow(ctx, apptSelect+` WHERE a.id = $1`, id))
}

func (r *RepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE appointments SET doctor_id = $1, scheduled_at = $2, reason = $3, status = $4,
		 updated_at = NOW() WHERE id = $5`,
		a.DoctorID, a.ScheduledAt, a.Reason, a.Status, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment")
	}
	return nil
}

func (r *RepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.store.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment")
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.store.Query(ctx, apptSelect+` ORDER BY a.scheduled_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		appts = append(appts, a)
	}
	return appts, total, rows.Err()
}

package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/db"
)

type NursingRepoPG struct {
	store *db.Store
}

func NewNursingRepoPG(store *db.Store) *NursingRepoPG {
	return &NursingRepoPG{store: store}
}

const nursingSelect = `SELECT o.id, o.patient_id, p.full_name, o.doctor_id, COALESCE(u.full_name, ''),
	o.instructions, o.status, o.created_at, o.updated_at
	FROM nursing_orders o
	JOIN patients p ON p.id = o.patient_id
	LEFT JOIN users u ON u.id = o.doctor_id`

func scanNursing(row pgx.Row) (*NursingOrder, error) {
	var o NursingOrder
	err := row.Scan(&o.ID, &o.PatientID, &o.PatientName, &o.DoctorID, &o.DoctorName,
		&o.Instructions, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("nursing order")
	}
	return &o, err
}

func (r *NursingRepoPG) Create(ctx context.Context, o *NursingOrder) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO nursing_orders (patient_id, doctor_id, instructions, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		[]interface{}{o.PatientID, o.DoctorID, o.Instructions, o.Status},
		&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *NursingRepoPG) GetByID(ctx context.Context, id int64) (*NursingOrder, error) {
	return scanNursing(r.store.QueryRow(ctx, nursingSelect+` WHERE o.id = $1`, id))
}

func (r *NursingRepoPG) Update(ctx context.Context, o *NursingOrder) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE nursing_orders SET instructions = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		o.Instructions, o.Status, o.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("nursing order")
	}
	return nil
}

func (r *NursingRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*NursingOrder, int, error) {
	where, args := statusFilter("o.status", status)

	var total int
	countSQL := `SELECT COUNT(*) FROM nursing_orders o` + where
	if err := r.store.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL := fmt.Sprintf(nursingSelect+where+` ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`,
		len(args)+1, len(args)+2)
	rows, err := r.store.Query(ctx, listSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*NursingOrder
	for rows.Next() {
		o, err := scanNursing(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

type UltrasoundRepoPG struct {
	store *db.Store
}

func NewUltrasoundRepoPG(store *db.Store) *UltrasoundRepoPG {
	return &UltrasoundRepoPG{store: store}
}

const usSelect = `SELECT o.id, o.patient_id, p.full_name, o.doctor_id, COALESCE(u.full_name, ''),
	o.exam_type, o.findings, o.images, o.status, o.created_at, o.updated_at
	FROM ultrasound_orders o
	JOIN patients p ON p.id = o.patient_id
	LEFT JOIN users u ON u.id = o.doctor_id`

func scanUltrasound(row pgx.Row) (*UltrasoundOrder, error) {
	var o UltrasoundOrder
	err := row.Scan(&o.ID, &o.PatientID, &o.PatientName, &o.DoctorID, &o.DoctorName,
		&o.ExamType, &o.Findings, &o.RawImages, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("ultrasound order")
	}
	if err != nil {
		return nil, err
	}
	o.SplitImages()
	return &o, nil
}

func (r *UltrasoundRepoPG) Create(ctx context.Context, o *UltrasoundOrder) error {
	err := r.store.InsertRow(ctx,
		`INSERT INTO ultrasound_orders (patient_id, doctor_id, exam_type, findings, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		[]interface{}{o.PatientID, o.DoctorID, o.ExamType, o.Findings, o.Status},
		&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}
	o.SplitImages()
	return nil
}

func (r *UltrasoundRepoPG) GetByID(ctx context.Context, id int64) (*UltrasoundOrder, error) {
	return scanUltrasound(r.store.QueryRow(ctx, usSelect+` WHERE o.id = $1`, id))
}

func (r *UltrasoundRepoPG) Update(ctx context.Context, o *UltrasoundOrder) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE ultrasound_orders SET exam_type = $1, findings = $2, status = $3, updated_at = NOW()
		 WHERE id = $4`,
		o.ExamType, o.Findings, o.Status, o.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("ultrasound order")
	}
	return nil
}

func (r *UltrasoundRepoPG) SetImages(ctx context.Context, id int64, raw string) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE ultrasound_orders SET images = $1, updated_at = NOW() WHERE id = $2`, raw, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("ultrasound order")
	}
	return nil
}

func (r *UltrasoundRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*UltrasoundOrder, int, error) {
	where, args := statusFilter("o.status", status)

	var total int
	countSQL := `SELECT COUNT(*) FROM ultrasound_orders o` + where
	if err := r.store.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL := fmt.Sprintf(usSelect+where+` ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`,
		len(args)+1, len(args)+2)
	rows, err := r.store.Query(ctx, listSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*UltrasoundOrder
	for rows.Next() {
		o, err := scanUltrasound(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func statusFilter(column, status string) (string, []interface{}) {
	if status == "" {
		return "", nil
	}
	return ` WHERE ` + column + ` = $1`, []interface{}{status}
}

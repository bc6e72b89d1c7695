package patient

import (
	"context"
	"errors"
	"fmt"

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

const patientCols = `id, full_name, phone, national_id, birth_date, gender, address,
	medical_history, allergies, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.Phone, &p.NationalID, &p.BirthDate,
		&p.Gender, &p.Address, &p.MedicalHistory, &p.Allergies, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient")
	}
	return &p, err
}

func (r *RepoPG) Create(ctx context.Context, p *Patient) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO patients (full_name, phone, national_id, birth_date, gender, address, medical_history, allergies)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		[]interface{}{p.FullName, p.Phone, p.NationalID, p.BirthDate, p.Gender, p.Address, p.MedicalHistory, p.Allergies},
		&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return scanPatient(r.store.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *RepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE patients SET full_name = $1, phone = $2, national_id = $3, birth_date = $4,
		 gender = $5, address = $6, medical_history = $7, allergies = $8, updated_at = NOW()
		 WHERE id = $9`,
		p.FullName, p.Phone, p.NationalID, p.BirthDate, p.Gender, p.Address,
		p.MedicalHistory, p.Allergies, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient")
	}
	return nil
}

func (r *RepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.store.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient")
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = `WHERE full_name ILIKE $1 OR phone ILIKE $1 OR national_id ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM patients `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM patients %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		patientCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.store.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

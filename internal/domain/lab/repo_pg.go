package lab

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

const testSelect = `SELECT t.id, t.patient_id, p.full_name, t.doctor_id, COALESCE(u.full_name, ''),
	t.test_names, t.result, t.status, t.created_at, t.updated_at
	FROM lab_tests t
	JOIN patients p ON p.id = t.patient_id
	LEFT JOIN users u ON u.id = t.doctor_id`

func scanTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.PatientID, &t.PatientName, &t.DoctorID, &t.DoctorName,
		&t.TestNames, &t.Result, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("lab test")
	}
	return &t, err
}

func (r *RepoPG) Create(ctx context.Context, t *LabTest) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO lab_tests (patient_id, doctor_id, test_names, result, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		[]interface{}{t.PatientID, t.DoctorID, t.TestNames, t.Result, t.Status},
		&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*LabTest, error) {
	return scanTest(r.store.QueryRow(ctx, testSelect+` WHERE t.id = $1`, id))
}

func (r *RepoPG) Update(ctx context.Context, t *LabTest) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE lab_tests SET result = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		t.Result, t.Status, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lab test")
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, limit, offset int) ([]*LabTest, int, error) {
	var total int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM lab_tests`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return r.collect(ctx, testSelect+` ORDER BY t.created_at DESC LIMIT $1 OFFSET $2`, total, limit, offset)
}

func (r *RepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*LabTest, int, error) {
	var total int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM lab_tests WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return r.collect(ctx, testSelect+` WHERE t.patient_id = $3 ORDER BY t.created_at DESC LIMIT $1 OFFSET $2`,
		total, limit, offset, patientID)
}

func (r *RepoPG) collect(ctx context.Context, sql string, total, limit, offset int, extra ...interface{}) ([]*LabTest, int, error) {
	args := append([]interface{}{limit, offset}, extra...)
	rows, err := r.store.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tests []*LabTest
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, 0, err
		}
		tests = append(tests, t)
	}
	return tests, total, rows.Err()
}

// StatsRepoPG backs the per-test counters. Increments run through the store's
// serialized write path, so concurrent upserts for the same name cannot race.
type StatsRepoPG struct {
	store *db.Store
}

func NewStatsRepoPG(store *db.Store) *StatsRepoPG {
	return &StatsRepoPG{store: store}
}

func (r *StatsRepoPG) Increment(ctx context.Context, testName string) error {
	_, err := r.store.Exec(ctx,
		`INSERT INTO test_statistics (test_name, count) VALUES ($1, 1)
		 ON CONFLICT (test_name) DO UPDATE
		 SET count = test_statistics.count + 1, updated_at = NOW()`,
		testName)
	return err
}

func (r *StatsRepoPG) List(ctx context.Context) ([]*TestStatistic, error) {
	rows, err := r.store.Query(ctx,
		`SELECT id, test_name, count, updated_at FROM test_statistics ORDER BY count DESC, test_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*TestStatistic
	for rows.Next() {
		var s TestStatistic
		if err := rows.Scan(&s.ID, &s.TestName, &s.Count, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

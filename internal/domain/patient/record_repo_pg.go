package patient

import (
	"context"

	"github.com/medidesk/medidesk/internal/platform/db"
)

type RecordRepoPG struct {
	store *db.Store
}

func NewRecordRepoPG(store *db.Store) *RecordRepoPG {
	return &RecordRepoPG{store: store}
}

func (r *RecordRepoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO medical_records (patient_id, doctor_id, note)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		[]interface{}{rec.PatientID, rec.DoctorID, rec.Note},
		&rec.ID, &rec.CreatedAt)
}

func (r *RecordRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.store.QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_records WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.store.Query(ctx,
		`SELECT m.id, m.patient_id, m.doctor_id, COALESCE(u.full_name, ''), m.note, m.created_at
		 FROM medical_records m
		 LEFT JOIN users u ON u.id = m.doctor_id
		 WHERE m.patient_id = $1
		 ORDER BY m.created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*MedicalRecord
	for rows.Next() {
		var rec MedicalRecord
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.DoctorName,
			&rec.Note, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, &rec)
	}
	return records, total, rows.Err()
}

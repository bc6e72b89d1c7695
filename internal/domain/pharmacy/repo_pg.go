package pharmacy

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/db"
)

type PrescriptionRepoPG struct {
	store *db.Store
}

func NewPrescriptionRepoPG(store *db.Store) *PrescriptionRepoPG {
	return &PrescriptionRepoPG{store: store}
}

const rxSelect = `SELECT rx.id, rx.patient_id, p.full_name, rx.doctor_id, COALESCE(u.full_name, ''),
	rx.medication, rx.dosage, rx.frequency, rx.duration, rx.notes, rx.status, rx.dispensed,
	rx.created_at, rx.updated_at
	FROM prescriptions rx
	JOIN patients p ON p.id = rx.patient_id
	LEFT JOIN users u ON u.id = rx.doctor_id`

func scanRx(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.PatientName, &p.DoctorID, &p.DoctorName,
		&p.Medication, &p.Dosage, &p.Frequency, &p.Duration, &p.Notes, &p.Status, &p.Dispensed,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("prescription")
	}
	return &p, err
}

func (r *PrescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO prescriptions (patient_id, doctor_id, medication, dosage, frequency, duration, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		[]interface{}{p.PatientID, p.DoctorID, p.Medication, p.Dosage, p.Frequency, p.Duration, p.Notes, p.Status},
		&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PrescriptionRepoPG) GetByID(ctx context.Context, id int64) (*Prescription, error) {
	return scanRx(r.store.QueryRow(ctx, rxSelect+` WHERE rx.id = $1`, id))
}

func (r *PrescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE prescriptions SET medication = $1, dosage = $2, frequency = $3, duration = $4,
		 notes = $5, status = $6, updated_at = NOW() WHERE id = $7`,
		p.Medication, p.Dosage, p.Frequency, p.Duration, p.Notes, p.Status, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("prescription")
	}
	return nil
}

func (r *PrescriptionRepoPG) SetDispensed(ctx context.Context, id int64) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE prescriptions SET dispensed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("prescription")
	}
	return nil
}

func (r *PrescriptionRepoPG) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.store.Query(ctx, rxSelect+` ORDER BY rx.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rxs []*Prescription
	for rows.Next() {
		p, err := scanRx(rows)
		if err != nil {
			return nil, 0, err
		}
		rxs = append(rxs, p)
	}
	return rxs, total, rows.Err()
}

type InventoryRepoPG struct {
	store *db.Store
}

func NewInventoryRepoPG(store *db.Store) *InventoryRepoPG {
	return &InventoryRepoPG{store: store}
}

const invSelect = `SELECT id, medicine_name, quantity, expiry_date, alert_threshold, created_at, updated_at
	FROM inventory_items`

func scanItem(row pgx.Row) (*InventoryItem, error) {
	var i InventoryItem
	err := row.Scan(&i.ID, &i.MedicineName, &i.Quantity, &i.ExpiryDate, &i.AlertThreshold,
		&i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("inventory item")
	}
	return &i, err
}

func (r *InventoryRepoPG) Create(ctx context.Context, i *InventoryItem) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO inventory_items (medicine_name, quantity, expiry_date, alert_threshold)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		[]interface{}{i.MedicineName, i.Quantity, i.ExpiryDate, i.AlertThreshold},
		&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

func (r *InventoryRepoPG) GetByID(ctx context.Context, id int64) (*InventoryItem, error) {
	return scanItem(r.store.QueryRow(ctx, invSelect+` WHERE id = $1`, id))
}

func (r *InventoryRepoPG) Update(ctx context.Context, i *InventoryItem) error {
	tag, err := r.store.Exec(ctx,
		`UPDATE inventory_items SET medicine_name = $1, quantity = $2, expiry_date = $3,
		 alert_threshold = $4, updated_at = NOW() WHERE id = $5`,
		i.MedicineName, i.Quantity, i.ExpiryDate, i.AlertThreshold, i.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("inventory item")
	}
	return nil
}

func (r *InventoryRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.store.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("inventory item")
	}
	return nil
}

func (r *InventoryRepoPG) List(ctx context.Context, limit, offset int) ([]*InventoryItem, int, error) {
	var total int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.store.Query(ctx, invSelect+` ORDER BY medicine_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectItems(rows)
	return items, total, err
}

func (r *InventoryRepoPG) ListAll(ctx context.Context) ([]*InventoryItem, error) {
	rows, err := r.store.Query(ctx, invSelect+` ORDER BY medicine_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]*InventoryItem, error) {
	var items []*InventoryItem
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type InteractionRepoPG struct {
	store *db.Store
}

func NewInteractionRepoPG(store *db.Store) *InteractionRepoPG {
	return &InteractionRepoPG{store: store}
}

func (r *InteractionRepoPG) Create(ctx context.Context, d *DrugInteraction) error {
	return r.store.InsertRow(ctx,
		`INSERT INTO drug_interactions (drug1, drug2, severity, description, alternatives)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		[]interface{}{d.Drug1, d.Drug2, d.Severity, d.Description, d.Alternatives},
		&d.ID, &d.CreatedAt)
}

func (r *InteractionRepoPG) List(ctx context.Context) ([]*DrugInteraction, error) {
	rows, err := r.store.Query(ctx,
		`SELECT id, drug1, drug2, severity, description, alternatives, created_at
		 FROM drug_interactions ORDER BY drug1, drug2`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []*DrugInteraction
	for rows.Next() {
		var d DrugInteraction
		if err := rows.Scan(&d.ID, &d.Drug1, &d.Drug2, &d.Severity, &d.Description,
			&d.Alternatives, &d.CreatedAt); err != nil {
			return nil, err
		}
		interactions = append(interactions, &d)
	}
	return interactions, rows.Err()
}

package pharmacy

import (
	"strings"
	"time"
)

const (
	PrescriptionActive    = "active"
	PrescriptionCompleted = "completed"
	PrescriptionCancelled = "cancelled"
)

// LowStockWindow is how far ahead expiry dates count as "expiring soon".
const LowStockWindow = 30 * 24 * time.Hour

type Prescription struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	PatientName string    `json:"patient_name,omitempty"`
	DoctorID    *int64    `json:"doctor_id,omitempty"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	Medication  string    `json:"medication"`
	Dosage      string    `json:"dosage"`
	Frequency   string    `json:"frequency"`
	Duration    string    `json:"duration"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	Dispensed   bool      `json:"dispensed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type InventoryItem struct {
	ID             int64      `json:"id"`
	MedicineName   string     `json:"medicine_name"`
	Quantity       int        `json:"quantity"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	AlertThreshold int        `json:"alert_threshold"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LowStock reports whether the item needs attention as of now: quantity at or
// under its threshold, or expiry within the 30-day window.
func (i *InventoryItem) LowStock(now time.Time) bool {
	if i.Quantity <= i.AlertThreshold {
		return true
	}
	if i.ExpiryDate != nil && !i.ExpiryDate.After(now.Add(LowStockWindow)) {
		return true
	}
	return false
}

type DrugInteraction struct {
	ID           int64     `json:"id"`
	Drug1        string    `json:"drug1"`
	Drug2        string    `json:"drug2"`
	Severity     string    `json:"severity"`
	Description  string    `json:"description,omitempty"`
	Alternatives string    `json:"alternatives,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Matches reports whether the stored interaction covers the unordered pair
// (a, b). Drug names compare case-insensitively.
func (d *DrugInteraction) Matches(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	d1, d2 := strings.ToLower(d.Drug1), strings.ToLower(d.Drug2)
	return (d1 == a && d2 == b) || (d1 == b && d2 == a)
}

func ValidPrescriptionStatus(s string) bool {
	switch s {
	case PrescriptionActive, PrescriptionCompleted, PrescriptionCancelled:
		return true
	}
	return false
}

package appointment

import "time"

// Statuses an appointment moves through. Transitions are not enforced; the
// reception desk corrects entries freely.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

type Appointment struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	PatientName string    `json:"patient_name,omitempty"`
	DoctorID    *int64    `json:"doctor_id,omitempty"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

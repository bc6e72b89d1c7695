package orders

import (
	"strings"
	"time"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

type NursingOrder struct {
	ID           int64     `json:"id"`
	PatientID    int64     `json:"patient_id"`
	PatientName  string    `json:"patient_name,omitempty"`
	DoctorID     *int64    `json:"doctor_id,omitempty"`
	DoctorName   string    `json:"doctor_name,omitempty"`
	Instructions string    `json:"instructions"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UltrasoundOrder carries its image filenames as a comma-delimited list in
// the store; Images/SetImages translate to and from the slice view.
type UltrasoundOrder struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	PatientName string    `json:"patient_name,omitempty"`
	DoctorID    *int64    `json:"doctor_id,omitempty"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	ExamType    string    `json:"exam_type"`
	Findings    string    `json:"findings,omitempty"`
	RawImages   string    `json:"-"`
	Images      []string  `json:"images"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SplitImages decodes the stored delimited list into the Images slice.
func (o *UltrasoundOrder) SplitImages() {
	o.Images = []string{}
	for _, part := range strings.Split(o.RawImages, ",") {
		if name := strings.TrimSpace(part); name != "" {
			o.Images = append(o.Images, name)
		}
	}
}

// AppendImage adds a stored filename to the delimited list.
func AppendImage(raw, name string) string {
	if raw == "" {
		return name
	}
	return raw + "," + name
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

package lab

import (
	"strings"
	"time"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// LabTest is a requested panel. TestNames is stored as a comma-delimited list
// exactly as entered; SplitTestNames produces the normalized per-test view.
type LabTest struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	PatientName string    `json:"patient_name,omitempty"`
	DoctorID    *int64    `json:"doctor_id,omitempty"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	TestNames   string    `json:"test_names"`
	Result      string    `json:"result,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TestStatistic counts how many times a test name has been ordered.
type TestStatistic struct {
	ID        int64     `json:"id"`
	TestName  string    `json:"test_name"`
	Count     int64     `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// SplitTestNames splits a comma-delimited test list, trimming whitespace and
// dropping empty segments. Duplicates are kept: each occurrence counts.
func SplitTestNames(names string) []string {
	var out []string
	for _, part := range strings.Split(names, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

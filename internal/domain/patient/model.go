package patient

import "time"

type Patient struct {
	ID             int64      `json:"id"`
	FullName       string     `json:"full_name"`
	Phone          string     `json:"phone"`
	NationalID     string     `json:"national_id"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Gender         string     `json:"gender"`
	Address        string     `json:"address"`
	MedicalHistory string     `json:"medical_history"`
	Allergies      string     `json:"allergies"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MedicalRecord is an append-only clinical note authored by a doctor.
type MedicalRecord struct {
	ID         int64     `json:"id"`
	PatientID  int64     `json:"patient_id"`
	DoctorID   int64     `json:"doctor_id"`
	DoctorName string    `json:"doctor_name,omitempty"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

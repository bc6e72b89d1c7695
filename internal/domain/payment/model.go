package payment

import "time"

// Payment methods accepted at the front desk. Only wallet payments carry a
// generated QR payload.
const (
	MethodCash   = "cash"
	MethodCard   = "card"
	MethodWallet = "wallet"
)

type Payment struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	PatientName string    `json:"patient_name,omitempty"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference,omitempty"`
	QRPayload   string    `json:"qr_payload,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidMethod reports whether m is an accepted payment method.
func ValidMethod(m string) bool {
	switch m {
	case MethodCash, MethodCard, MethodWallet:
		return true
	}
	return false
}

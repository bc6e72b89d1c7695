package adminnote

import "time"

// Note is a message any staff member can send up to the administrators.
type Note struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Message    string    `json:"message"`
	Priority   string    `json:"priority"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

package user

import (
	"time"

	"github.com/medidesk/medidesk/internal/platform/auth"
)

// PrimaryAdminID is the reserved first-created administrative account. It can
// never be deleted or deactivated through the standard routes.
const PrimaryAdminID int64 = 1

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         auth.Role `json:"role"`
	Active       bool      `json:"active"`
	Shift        string    `json:"shift"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

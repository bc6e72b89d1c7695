package auth

// Role is one of the fixed set of operator categories that determines route
// access.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDoctor     Role = "doctor"
	RoleReception  Role = "reception"
	RoleLab        Role = "lab"
	RolePharmacy   Role = "pharmacy"
	RoleNurse      Role = "nurse"
	RoleUltrasound Role = "ultrasound"
)

// AllRoles lists every valid role.
var AllRoles = []Role{
	RoleAdmin, RoleDoctor, RoleReception, RoleLab,
	RolePharmacy, RoleNurse, RoleUltrasound,
}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	for _, r := range AllRoles {
		if string(r) == s {
			return true
		}
	}
	return false
}

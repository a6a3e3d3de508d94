package model

import "time"

// Role labels the capability level of a registered user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleMilkman  Role = "milkman"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleMilkman, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered participant of the delivery network.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity is the verified caller passed through the capability facade.
type Identity struct {
	UserID int64
	Role   Role
}

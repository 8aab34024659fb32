package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleCourier  = "courier"
	RoleAdmin    = "administrator"
)

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleCourier, RoleAdmin:
		return true
	}
	return false
}

// User models an authenticated actor in the system. Credential holds either
// a bcrypt hash or the plaintext password depending on the storage mode the
// account was registered under; the two modes are not interchangeable.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Credential string    `json:"-"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// Identity is the authenticated principal attached to a request after the
// auth middleware has verified the bearer token.
type Identity struct {
	UserID string
	Role   string
}

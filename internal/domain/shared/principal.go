package shared

import "errors"

// ErrForbidden indicates the caller's role does not allow the operation
var ErrForbidden = errors.New("operation requires the admin role")

// Role identifies the authorization level of an authenticated caller
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Principal is the authenticated identity supplied by the request layer.
// Non-admin principals carry the customer identity they act for; admin
// principals have CustomerID zero unless they are also linked to a customer.
type Principal struct {
	UserID     int64
	Role       Role
	CustomerID int64
}

// IsAdmin reports whether the principal holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

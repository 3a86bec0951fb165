package domain

import (
	"slices"
	"time"
)

// UserRole enumerates access levels within the helpdesk.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAgent    UserRole = "agent"
	UserRoleAdmin    UserRole = "admin"
)

// UserRoles lists every role the API accepts.
var UserRoles = []UserRole{UserRoleCustomer, UserRoleAgent, UserRoleAdmin}

func (r UserRole) Valid() bool {
	return slices.Contains(UserRoles, r)
}

// Staff reports whether the role grants access to internal ticket data.
func (r UserRole) Staff() bool {
	return r == UserRoleAgent || r == UserRoleAdmin
}

// User models everyone who touches a ticket: customers who raise them and
// the agents and admins who work them. Role is fixed at creation.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

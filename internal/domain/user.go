package domain

import "time"

// UserRole distinguishes clients from help-desk staff.
type UserRole string

const (
	UserRoleClient   UserRole = "CLIENT"
	UserRoleOperator UserRole = "OPERATOR"
	UserRoleAdmin    UserRole = "ADMIN"
)

// User is the domain model for everyone who touches a ticket: clients,
// operators, admins and the designated bot account.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  *string
	Role          UserRole
	EmailVerified *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsStaff reports whether the user works the queue.
func (u *User) IsStaff() bool {
	return u.Role == UserRoleOperator || u.Role == UserRoleAdmin
}

package domain

import "time"

type UserRole string

const (
	UserRoleMember   UserRole = "MEMBER"
	UserRoleReviewer UserRole = "REVIEWER"
	UserRoleAdmin    UserRole = "ADMIN"
)

type User struct {
	ID           int32     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanReview reports whether the user may make review decisions and manage
// invite codes.
func (u *User) CanReview() bool {
	return u.Role == UserRoleReviewer || u.Role == UserRoleAdmin
}

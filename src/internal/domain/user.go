package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole maps raw onto the closed role set. Anything unrecognised is a USER,
// so an unknown role can never gain privileges.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

func (r Role) IsPrivileged() bool {
	return r == RoleAdmin
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, Active: u.Active}
}

// Actor is the caller identity supplied on every loan operation. It is trusted as given.
type Actor struct {
	ID     string
	Role   Role
	Active bool
}

type CreateUserInput struct {
	Email    string
	Password string
	Role     Role
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

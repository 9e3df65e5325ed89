package models

import (
	"errors"
	"strings"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (r CreateUserRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r CreateUserRequest) Input() domain.CreateUserInput {
	return domain.CreateUserInput{
		Email:    r.Email,
		Password: r.Password,
		Role:     domain.ParseRole(r.Role),
	}
}

type UpdateUserStatusRequest struct {
	Active *bool `json:"active"`
}

func (r UpdateUserStatusRequest) Validate() error {
	if r.Active == nil {
		return errors.New("active is required")
	}
	return nil
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func NewUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}

func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

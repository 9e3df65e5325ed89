package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

type UserService interface {
	CreateUser(ctx context.Context, in domain.CreateUserInput) (domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserStatus(ctx context.Context, id string, active bool) (domain.User, error)
	Authenticate(ctx context.Context, email string, password string) (domain.User, error)
	SeedAdmin(ctx context.Context, id string, email string, password string) (domain.User, bool, error)
}

package services_test

import (
	"context"
	"testing"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService() *services.UserService {
	return services.NewUserService(memory.NewUserRepository(memory.NewStore())).WithHashCost(bcrypt.MinCost)
}

func TestCreateUserHashesPasswordAndNormalizes(t *testing.T) {
	svc := newUserService()

	user, err := svc.CreateUser(context.Background(), domain.CreateUserInput{
		Email:    "  Officer@Bank.Example ",
		Password: "s3cret-pass",
		Role:     "SUPERUSER",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "officer@bank.example", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.Active)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))

	_, err = svc.CreateUser(context.Background(), domain.CreateUserInput{Email: "officer@bank.example", Password: "another-pass"})
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestCreateUserValidatesInput(t *testing.T) {
	svc := newUserService()

	_, err := svc.CreateUser(context.Background(), domain.CreateUserInput{Email: "not-an-email", Password: "long-enough"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateUser(context.Background(), domain.CreateUserInput{Email: "a@b.c", Password: "short"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService()
	user, err := svc.CreateUser(context.Background(), domain.CreateUserInput{Email: "analyst@bank.example", Password: "correct-horse", Role: domain.RoleAdmin})
	require.NoError(t, err)

	got, err := svc.Authenticate(context.Background(), "ANALYST@bank.example", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, domain.Actor{ID: user.ID, Role: domain.RoleAdmin, Active: true}, got.Actor())

	_, err = svc.Authenticate(context.Background(), "analyst@bank.example", "wrong-horse")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "nobody@bank.example", "correct-horse")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.UpdateUserStatus(context.Background(), user.ID, false)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "analyst@bank.example", "correct-horse")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateUserStatusUnknownUser(t *testing.T) {
	_, err := newUserService().UpdateUserStatus(context.Background(), "missing", true)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListUsersInCreationOrder(t *testing.T) {
	svc := newUserService()
	for _, email := range []string{"c@bank.example", "a@bank.example", "b@bank.example"} {
		_, err := svc.CreateUser(context.Background(), domain.CreateUserInput{Email: email, Password: "password-1"})
		require.NoError(t, err)
	}

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "c@bank.example", users[0].Email)
	assert.Equal(t, "b@bank.example", users[2].Email)
}

func TestSeedAdmin(t *testing.T) {
	svc := newUserService()

	_, created, err := svc.SeedAdmin(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.False(t, created)

	admin, created, err := svc.SeedAdmin(context.Background(), "admin-1", "Admin@Bank.Example", "bootstrap-pass")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "admin-1", admin.ID)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	again, created, err := svc.SeedAdmin(context.Background(), "admin-2", "admin@bank.example", "other-pass")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "admin-1", again.ID)

	_, err = svc.Authenticate(context.Background(), "admin@bank.example", "bootstrap-pass")
	require.NoError(t, err)
}

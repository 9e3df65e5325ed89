package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var _ service_interfaces.UserService = (*UserService)(nil)

const minPasswordLength = 8

type UserService struct {
	userRepo domain.UserRepository
	hashCost int
	now      func() time.Time
}

func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// WithHashCost lowers the bcrypt cost. Intended for tests.
func (s *UserService) WithHashCost(cost int) *UserService {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.hashCost = cost
	}
	return s
}

func (s *UserService) CreateUser(ctx context.Context, in domain.CreateUserInput) (domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	logger.Info("user service create user request", logger.Fields{
		"email": email,
		"role":  in.Role,
	})

	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	role := in.Role
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}

	created, err := s.create(ctx, uuid.NewString(), email, in.Password, role)
	if err != nil {
		return domain.User{}, err
	}

	logger.Info("user service create user success", logger.Fields{
		"userId": created.ID,
		"email":  created.Email,
		"role":   created.Role,
	})
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
		}
		logger.Error("user service get user failed", err, logger.Fields{"userId": id})
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		logger.Error("user service list users failed", err, nil)
		return nil, err
	}
	return users, nil
}

func (s *UserService) UpdateUserStatus(ctx context.Context, id string, active bool) (domain.User, error) {
	logger.Info("user service update user status request", logger.Fields{
		"userId": id,
		"active": active,
	})

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	user.Active = active
	user.UpdatedAt = s.now().UTC()
	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		logger.Error("user service update user status repository failed", err, logger.Fields{
			"userId": user.ID,
		})
		return domain.User{}, err
	}

	logger.Info("user service update user status success", logger.Fields{
		"userId": updated.ID,
		"active": updated.Active,
	})
	return updated, nil
}

// Authenticate resolves the user behind an email/password pair. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email string, password string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: credentials are required", domain.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			logger.Info("user service authenticate unknown email", logger.Fields{"email": email})
			return domain.User{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		logger.Error("user service authenticate lookup failed", err, logger.Fields{"email": email})
		return domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Info("user service authenticate password mismatch", logger.Fields{"email": email})
			return domain.User{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		wrappedErr := fmt.Errorf("compare password hash: %w", err)
		logger.Error("user service authenticate compare failed", wrappedErr, logger.Fields{"email": email})
		return domain.User{}, wrappedErr
	}

	if !user.Active {
		logger.Info("user service authenticate inactive user", logger.Fields{"userId": user.ID})
		return domain.User{}, fmt.Errorf("%w: user %s is not active", domain.ErrForbidden, user.ID)
	}
	return user, nil
}

// SeedAdmin creates an active ADMIN unless a user with the email already exists.
// The bool reports whether a user was created.
func (s *UserService) SeedAdmin(ctx context.Context, id string, email string, password string) (domain.User, bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		logger.Warn("user service seed admin skipped: email or password not set", nil)
		return domain.User{}, false, nil
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		logger.Info("user service seed admin already exists", logger.Fields{"email": email})
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		logger.Error("user service seed admin lookup failed", err, logger.Fields{"email": email})
		return domain.User{}, false, err
	}

	if id = strings.TrimSpace(id); id == "" {
		id = uuid.NewString()
	}
	created, err := s.create(ctx, id, email, password, domain.RoleAdmin)
	if err != nil {
		return domain.User{}, false, err
	}

	logger.Info("user service seed admin success", logger.Fields{
		"userId": created.ID,
		"email":  created.Email,
	})
	return created, true, nil
}

func (s *UserService) create(ctx context.Context, id string, email string, password string, role domain.Role) (domain.User, error) {
	hash, err := s.hashPassword(password)
	if err != nil {
		logger.Error("user service hash password failed", err, logger.Fields{"email": email})
		return domain.User{}, err
	}

	now := s.now().UTC()
	created, err := s.userRepo.Create(ctx, domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserAlreadyExists, email)
		}
		logger.Error("user service create user repository failed", err, logger.Fields{"email": email})
		return domain.User{}, err
	}
	return created, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

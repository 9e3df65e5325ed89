package memory

import (
	"context"
	"fmt"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

var _ domain.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	err := r.store.exec(ctx, func(s *Store) (func(), error) {
		if _, exists := s.users[user.ID]; exists {
			return nil, fmt.Errorf("%w: user %s", domain.ErrDuplicateKey, user.ID)
		}
		if _, exists := s.usersByEmail[user.Email]; exists {
			return nil, fmt.Errorf("%w: email %s", domain.ErrDuplicateKey, user.Email)
		}
		s.users[user.ID] = user
		s.usersByEmail[user.Email] = user.ID
		s.userOrder = append(s.userOrder, user.ID)
		return func() {
			delete(s.users, user.ID)
			delete(s.usersByEmail, user.Email)
			s.userOrder = s.userOrder[:len(s.userOrder)-1]
		}, nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.usersByEmail[email]
	if !ok {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return r.store.users[id], nil
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]domain.User, 0, len(r.store.userOrder))
	for _, id := range r.store.userOrder {
		users = append(users, r.store.users[id])
	}
	return users, nil
}

// Update replaces the stored user. The email is immutable.
func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	err := r.store.exec(ctx, func(s *Store) (func(), error) {
		current, ok := s.users[user.ID]
		if !ok {
			return nil, domain.ErrRecordNotFound
		}
		user.Email = current.Email
		s.users[user.ID] = user
		return func() { s.users[user.ID] = current }, nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

var _ domain.AccountRepository = (*AccountRepository)(nil)

type AccountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.Version == 0 {
		account.Version = 1
	}
	err := r.store.exec(ctx, func(s *Store) (func(), error) {
		if _, exists := s.accounts[account.AccountNumber]; exists {
			return nil, fmt.Errorf("%w: account number %s", domain.ErrDuplicateKey, account.AccountNumber)
		}
		s.accounts[account.AccountNumber] = account
		return func() { delete(s.accounts, account.AccountNumber) }, nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (r *AccountRepository) GetByAccountNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, ok := r.store.accounts[accountNumber]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return account, nil
}

func (r *AccountRepository) ExistsByAccountNumber(_ context.Context, accountNumber string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.accounts[accountNumber]
	return ok, nil
}

func (r *AccountRepository) Update(ctx context.Context, account domain.Account) (domain.Account, error) {
	next := account
	next.Version = account.Version + 1
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now().UTC()
	}

	err := r.store.exec(ctx, func(s *Store) (func(), error) {
		current, ok := s.accounts[account.AccountNumber]
		if !ok {
			return nil, domain.ErrRecordNotFound
		}
		if current.Version != account.Version {
			return nil, fmt.Errorf("%w: account %s at version %d, expected %d",
				domain.ErrConcurrentModification, account.AccountNumber, current.Version, account.Version)
		}
		s.accounts[account.AccountNumber] = next
		return func() { s.accounts[account.AccountNumber] = current }, nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return next, nil
}

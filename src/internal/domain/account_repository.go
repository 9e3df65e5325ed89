package domain

import "context"

type AccountRepository interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (Account, error)
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	// Update persists account when the stored version equals account.Version and
	// returns the record with the incremented version. A stale version yields
	// ErrConcurrentModification.
	Update(ctx context.Context, account Account) (Account, error)
}

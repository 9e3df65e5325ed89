package domain

import "context"

type TransactionRepository interface {
	Create(ctx context.Context, transaction Transaction) (Transaction, error)
	// ListByAccountNumber returns every record where accountNumber is the source or
	// the destination, in insertion order.
	ListByAccountNumber(ctx context.Context, accountNumber string) ([]Transaction, error)
}

package memory

import (
	"context"
	"fmt"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

var _ domain.TransactionRepository = (*TransactionRepository)(nil)

type TransactionRepository struct {
	store *Store
}

func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

func (r *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	err := r.store.exec(ctx, func(s *Store) (func(), error) {
		if _, exists := s.references[transaction.Reference]; exists {
			return nil, fmt.Errorf("%w: transaction reference %s", domain.ErrDuplicateKey, transaction.Reference)
		}
		s.references[transaction.Reference] = struct{}{}
		s.transactions = append(s.transactions, transaction)
		return func() {
			delete(s.references, transaction.Reference)
			s.transactions = s.transactions[:len(s.transactions)-1]
		}, nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return transaction, nil
}

func (r *TransactionRepository) ListByAccountNumber(_ context.Context, accountNumber string) ([]domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Transaction, 0)
	for _, t := range r.store.transactions {
		if t.Involves(accountNumber) {
			result = append(result, t)
		}
	}
	return result, nil
}

package memory

import (
	"context"
	"sync"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

// Store holds every aggregate for the in-memory backend. Writes made through a
// Transactor are staged and applied together under the store lock.
type Store struct {
	mu sync.RWMutex

	accounts     map[string]domain.Account
	transactions []domain.Transaction
	references   map[string]struct{}

	loans     map[string]domain.Loan
	loanOrder []string

	users        map[string]domain.User
	userOrder    []string
	usersByEmail map[string]string
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		references:   make(map[string]struct{}),
		loans:        make(map[string]domain.Loan),
		users:        make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

// op mutates the store with the lock held and returns the inverse mutation.
type op func(s *Store) (undo func(), err error)

func (s *Store) exec(ctx context.Context, o op) error {
	if tx := txFromContext(ctx); tx != nil && tx.store == s {
		tx.ops = append(tx.ops, o)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := o(s)
	return err
}

func (s *Store) commit(ops []op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	undos := make([]func(), 0, len(ops))
	for _, o := range ops {
		undo, err := o(s)
		if err != nil {
			for i := len(undos) - 1; i >= 0; i-- {
				undos[i]()
			}
			return err
		}
		undos = append(undos, undo)
	}
	return nil
}

type txKey struct{}

type tx struct {
	store *Store
	ops   []op
}

func txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

type Transactor struct {
	store *Store
}

var _ domain.Transactor = (*Transactor)(nil)

func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// WithinTransaction joins an enclosing unit when ctx already carries one.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if existing := txFromContext(ctx); existing != nil && existing.store == t.store {
		return fn(ctx)
	}

	unit := &tx{store: t.store}
	if err := fn(context.WithValue(ctx, txKey{}, unit)); err != nil {
		return err
	}
	return t.store.commit(unit.ops)
}

package domain

import "context"

// Transactor runs fn as one atomic unit against the store. Repository calls made
// with the ctx passed to fn take part in the unit; an error from fn discards it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serialises operations on the named aggregates for the lifetime of one
// operation. Keys are acquired in sorted order so callers touching overlapping
// sets cannot deadlock; disjoint key sets never wait on each other.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

func AccountLockKey(accountNumber string) string {
	return "account:" + accountNumber
}

func LoanLockKey(id string) string {
	return "loan:" + id
}

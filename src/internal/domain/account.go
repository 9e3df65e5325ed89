package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
	AccountStatusClosed AccountStatus = "CLOSED"
)

type Account struct {
	ID            string
	AccountNumber string
	HolderName    string
	Balance       decimal.Decimal
	Status        AccountStatus
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Credit returns a copy of the account with amount added to the balance.
func (a Account) Credit(amount decimal.Decimal) Account {
	a.Balance = a.Balance.Add(amount)
	return a
}

// Debit returns a copy of the account with amount subtracted from the balance.
// Callers check CanDebit first; the balance is never allowed below zero.
func (a Account) Debit(amount decimal.Decimal) Account {
	a.Balance = a.Balance.Sub(amount)
	return a
}

// Touch returns a copy of the account stamped as modified at the given time.
func (a Account) Touch(at time.Time) Account {
	a.UpdatedAt = at
	return a
}

func (a Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

type Transaction struct {
	ID                 string
	Reference          string
	Type               TransactionType
	Amount             decimal.Decimal
	Status             TransactionStatus
	SourceAccount      *string
	DestinationAccount *string
	Timestamp          time.Time
}

// Involves reports whether accountNumber is the source or destination of t.
func (t Transaction) Involves(accountNumber string) bool {
	return (t.SourceAccount != nil && *t.SourceAccount == accountNumber) ||
		(t.DestinationAccount != nil && *t.DestinationAccount == accountNumber)
}

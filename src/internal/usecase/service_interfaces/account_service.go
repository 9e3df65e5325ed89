package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

type AccountService interface {
	CreateAccount(ctx context.Context, holderName string) (domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	Deposit(ctx context.Context, accountNumber string, amount *decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, accountNumber string, amount *decimal.Decimal) (domain.Account, error)
	Transfer(ctx context.Context, sourceAccountNumber string, destinationAccountNumber string, amount *decimal.Decimal) (domain.Account, error)
	GetTransactions(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
}

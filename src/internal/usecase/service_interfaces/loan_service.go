package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

type LoanService interface {
	CreateLoan(ctx context.Context, in domain.CreateLoanInput, actor domain.Actor) (domain.Loan, error)
	GetLoanByID(ctx context.Context, id string) (domain.Loan, error)
	ListLoans(ctx context.Context, in domain.ListLoansInput) (domain.Page[domain.Loan], error)
	UpdateLoan(ctx context.Context, id string, in domain.UpdateLoanInput, actor domain.Actor) (domain.Loan, error)
	UpdateLoanAdmin(ctx context.Context, id string, in domain.UpdateLoanAdminInput, actor domain.Actor) (domain.Loan, error)
	ChangeStatus(ctx context.Context, id string, in domain.ChangeStatusInput, actor domain.Actor) (domain.Loan, error)
	DeleteLoan(ctx context.Context, id string, actor domain.Actor) (domain.Loan, error)
	CalculateLoanPricing(ctx context.Context, id string) (domain.Pricing, error)
}

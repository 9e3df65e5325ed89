package domain

import "context"

type LoanFilter struct {
	IncludeDeleted bool
	Status         *LoanStatus
	ClientName     string
	LoanType       string
}

// Matches applies the filter conjunctively. ClientName is a case-insensitive substring.
func (f LoanFilter) Matches(loan Loan) bool {
	if loan.Deleted && !f.IncludeDeleted {
		return false
	}
	if f.Status != nil && loan.Status != *f.Status {
		return false
	}
	if f.ClientName != "" && !containsFold(loan.ClientName, f.ClientName) {
		return false
	}
	if f.LoanType != "" && loan.LoanType != f.LoanType {
		return false
	}
	return true
}

type LoanRepository interface {
	Create(ctx context.Context, loan Loan) (Loan, error)
	GetByID(ctx context.Context, id string) (Loan, error)
	// Update persists loan when the stored version equals loan.Version.
	Update(ctx context.Context, loan Loan) (Loan, error)
	List(ctx context.Context, filter LoanFilter, page PageRequest) (Page[Loan], error)
}

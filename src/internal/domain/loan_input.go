package domain

import "github.com/shopspring/decimal"

type CreateLoanInput struct {
	ClientName           string
	LoanType             string
	RequestedAmount      decimal.Decimal
	ProposedInterestRate decimal.Decimal
	TenureMonths         int
	Financials           *Financials
}

// UpdateLoanInput carries the non-sensitive fields. A nil field is "not provided"
// and leaves the loan unchanged; there is no way to clear a field through it.
type UpdateLoanInput struct {
	ClientName           *string
	LoanType             *string
	RequestedAmount      *decimal.Decimal
	ProposedInterestRate *decimal.Decimal
	TenureMonths         *int
	Financials           *Financials
}

func (in UpdateLoanInput) ApplyTo(loan *Loan) {
	if in.ClientName != nil {
		loan.ClientName = *in.ClientName
	}
	if in.LoanType != nil {
		loan.LoanType = *in.LoanType
	}
	if in.RequestedAmount != nil {
		loan.RequestedAmount = *in.RequestedAmount
	}
	if in.ProposedInterestRate != nil {
		loan.ProposedInterestRate = *in.ProposedInterestRate
	}
	if in.TenureMonths != nil {
		loan.TenureMonths = *in.TenureMonths
	}
	if in.Financials != nil {
		f := *in.Financials
		loan.Financials = &f
	}
}

// UpdateLoanAdminInput carries the sensitive fields, with the same partial semantics.
type UpdateLoanAdminInput struct {
	SanctionedAmount     *decimal.Decimal
	ApprovedInterestRate *decimal.Decimal
}

func (in UpdateLoanAdminInput) ApplyTo(loan *Loan) {
	if in.SanctionedAmount != nil {
		v := *in.SanctionedAmount
		loan.SanctionedAmount = &v
	}
	if in.ApprovedInterestRate != nil {
		v := *in.ApprovedInterestRate
		loan.ApprovedInterestRate = &v
	}
}

type ChangeStatusInput struct {
	Status   string
	Comments string
}

type ListLoansInput struct {
	IncludeDeleted bool
	Status         string
	ClientName     string
	LoanType       string
	Page           PageRequest
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/lock"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	analyst = domain.Actor{ID: "user-1", Role: domain.RoleUser, Active: true}
	officer = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, Active: true}
)

func newLoanService(t *testing.T) *services.LoanService {
	t.Helper()
	store := memory.NewStore()
	return services.NewLoanService(memory.NewLoanRepository(store), lock.NewMemoryLocker(), services.NewPricingService()).
		WithClock(tickingClock())
}

func draftLoan(t *testing.T, svc *services.LoanService, client string, rating string) domain.Loan {
	t.Helper()
	loan, err := svc.CreateLoan(context.Background(), domain.CreateLoanInput{
		ClientName:           client,
		LoanType:             "TERM",
		RequestedAmount:      decimal.RequireFromString("50000000"),
		ProposedInterestRate: decimal.RequireFromString("11"),
		TenureMonths:         36,
		Financials:           &domain.Financials{Rating: rating},
	}, analyst)
	require.NoError(t, err)
	return loan
}

func changeStatus(svc *services.LoanService, id string, status domain.LoanStatus, actor domain.Actor) (domain.Loan, error) {
	return svc.ChangeStatus(context.Background(), id, domain.ChangeStatusInput{Status: string(status), Comments: "moving on"}, actor)
}

func TestLoanSubmissionScenario(t *testing.T) {
	svc := newLoanService(t)
	loan := draftLoan(t, svc, "Acme", "A")
	assert.Equal(t, domain.LoanStatusDraft, loan.Status)
	assert.Equal(t, analyst.ID, loan.CreatedBy)
	assert.Empty(t, loan.Actions)

	submitted, err := changeStatus(svc, loan.ID, domain.LoanStatusSubmitted, analyst)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusSubmitted, submitted.Status)
	require.Len(t, submitted.Actions, 1)
	assert.Equal(t, "STATUS_CHANGE: SUBMITTED", submitted.Actions[0].Action)
	assert.Equal(t, analyst.ID, submitted.Actions[0].By)
	assert.Equal(t, "moving on", submitted.Actions[0].Comments)

	_, err = changeStatus(svc, loan.ID, domain.LoanStatusUnderReview, analyst)
	require.ErrorIs(t, err, domain.ErrStatusChangeNotAllowed)

	stored, err := svc.GetLoanByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusSubmitted, stored.Status)
	assert.Len(t, stored.Actions, 1)
}

func TestLoanApprovalRecordsApprover(t *testing.T) {
	svc := newLoanService(t)
	loan := draftLoan(t, svc, "Acme", "A")

	for _, status := range []domain.LoanStatus{domain.LoanStatusSubmitted, domain.LoanStatusUnderReview, domain.LoanStatusApproved} {
		var err error
		loan, err = changeStatus(svc, loan.ID, status, officer)
		require.NoError(t, err)
	}

	require.NotNil(t, loan.ApprovedBy)
	require.NotNil(t, loan.ApprovedAt)
	assert.Equal(t, officer.ID, *loan.ApprovedBy)
	assert.Equal(t, officer.ID, loan.UpdatedBy)
	assert.Len(t, loan.Actions, 3)
	for i := 1; i < len(loan.Actions); i++ {
		assert.False(t, loan.Actions[i].Timestamp.Before(loan.Actions[i-1].Timestamp))
	}

	_, err := changeStatus(svc, loan.ID, domain.LoanStatusRejected, officer)
	require.ErrorIs(t, err, domain.ErrStatusChangeNotAllowed)
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	svc := newLoanService(t)
	loan := draftLoan(t, svc, "Acme", "A")

	_, err := svc.ChangeStatus(context.Background(), loan.ID, domain.ChangeStatusInput{Status: "CANCELLED"}, officer)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = changeStatus(svc, loan.ID, domain.LoanStatusDraft, officer)
	require.ErrorIs(t, err, domain.ErrStatusChangeNotAllowed)
}

func TestInactiveActorIsForbidden(t *testing.T) {
	svc := newLoanService(t)
	loan := draftLoan(t, svc, "Acme", "A")
	inactive := domain.Actor{ID: "user-9", Role: domain.RoleAdmin, Active: false}

	_, err := changeStatus(svc, loan.ID, domain.LoanStatusSubmitted, inactive)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.CreateLoan(context.Background(), domain.CreateLoanInput{ClientName: "X"}, inactive)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateLoanPartialAndRoleGated(t *testing.T) {
	svc := newLoanService(t)
	loan := draftLoan(t, svc, "Acme", "A")

	name := "Acme Renamed"
	tenure := 48
	updated, err := svc.UpdateLoan(context.Background(), loan.ID, domain.UpdateLoanInput{ClientName: &name, TenureMonths: &tenure}, analyst)
	require.NoError(t, err)
	assert.Equal(t, name, updated.ClientName)
	assert.Equal(t, 48, updated.TenureMonths)
	assert.Equal(t, "TERM", updated.LoanType)
	assert.True(t, updated.RequestedAmount.Equal(loan.RequestedAmount))
	assert.Empty(t, updated.Actions)
	assert.True(t, updated.UpdatedAt.After(loan.UpdatedAt))

	_, err = changeStatus(svc, loan.ID, domain.LoanStatusSubmitted, analyst)
	require.NoError(t, err)

	_, err = svc.UpdateLoan(context.Background(), loan.ID, domain.UpdateLoanInput{ClientName: &name}, analyst)
	require.ErrorIs(t, err, domain.ErrLoanEditNotAllowed)

	loanType := "REVOLVING"
	updated, err = svc.UpdateLoan(context.Background(), loan.ID, domain.UpdateLoanInput{LoanType: &loanType}, officer)
	require.NoError(t, err)
	assert.Equal(t, "REVOLVING", updated.LoanType)
	assert.Equal(t, officer.ID, updated.UpdatedBy)
}

func TestUpdateLoanAdminSetsSensitiveFields(t *testing.T) {
	svc := newLoanService(t)
	loan := draftLoan(t, svc, "Acme", "A")

	sanctioned := decimal.RequireFromString("45000000")
	updated, err := svc.UpdateLoanAdmin(context.Background(), loan.ID, domain.UpdateLoanAdminInput{SanctionedAmount: &sanctioned}, officer)
	require.NoError(t, err)
	require.NotNil(t, updated.SanctionedAmount)
	assert.True(t, updated.SanctionedAmount.Equal(sanctioned))
	assert.Nil(t, updated.ApprovedInterestRate)
	assert.Empty(t, updated.Actions)

	rate := decimal.RequireFromString("10.25")
	updated, err = svc.UpdateLoanAdmin(context.Background(), loan.ID, domain.UpdateLoanAdminInput{ApprovedInterestRate: &rate}, officer)
	require.NoError(t, err)
	assert.True(t, updated.SanctionedAmount.Equal(sanctioned))
	assert.True(t, updated.ApprovedInterestRate.Equal(rate))
}

func TestDeleteLoanIsSoftAndHidesLoan(t *testing.T) {
	svc := newLoanService(t)
	loan := draftLoan(t, svc, "Acme", "A")
	draftLoan(t, svc, "Beta", "B")

	deleted, err := svc.DeleteLoan(context.Background(), loan.ID, officer)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	require.NotNil(t, deleted.DeletedAt)
	require.Len(t, deleted.Actions, 1)
	assert.Equal(t, domain.LoanActionDeleted, deleted.Actions[0].Action)

	_, err = svc.GetLoanByID(context.Background(), loan.ID)
	require.ErrorIs(t, err, domain.ErrLoanNotFound)
	_, err = svc.DeleteLoan(context.Background(), loan.ID, officer)
	require.ErrorIs(t, err, domain.ErrLoanNotFound)
	_, err = changeStatus(svc, loan.ID, domain.LoanStatusSubmitted, officer)
	require.ErrorIs(t, err, domain.ErrLoanNotFound)

	name := "Acme Renamed"
	_, err = svc.UpdateLoan(context.Background(), loan.ID, domain.UpdateLoanInput{ClientName: &name}, officer)
	require.ErrorIs(t, err, domain.ErrLoanNotFound)
	sanctioned := decimal.RequireFromString("900")
	_, err = svc.UpdateLoanAdmin(context.Background(), loan.ID, domain.UpdateLoanAdminInput{SanctionedAmount: &sanctioned}, officer)
	require.ErrorIs(t, err, domain.ErrLoanNotFound)

	live, err := svc.ListLoans(context.Background(), domain.ListLoansInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), live.TotalItems)

	all, err := svc.ListLoans(context.Background(), domain.ListLoansInput{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalItems)
}

func TestListLoansDropsUnknownStatusFilter(t *testing.T) {
	svc := newLoanService(t)
	loan := draftLoan(t, svc, "Acme", "A")
	draftLoan(t, svc, "Beta", "B")
	_, err := changeStatus(svc, loan.ID, domain.LoanStatusSubmitted, analyst)
	require.NoError(t, err)

	page, err := svc.ListLoans(context.Background(), domain.ListLoansInput{Status: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)

	page, err = svc.ListLoans(context.Background(), domain.ListLoansInput{Status: "submitted"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, loan.ID, page.Items[0].ID)

	_, err = svc.ListLoans(context.Background(), domain.ListLoansInput{Page: domain.PageRequest{Size: 1000}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalculateLoanPricingUsesStoredTerms(t *testing.T) {
	svc := newLoanService(t)
	loan, err := svc.CreateLoan(context.Background(), domain.CreateLoanInput{
		ClientName:           "Acme",
		LoanType:             "TERM",
		RequestedAmount:      decimal.RequireFromString("10000"),
		ProposedInterestRate: decimal.RequireFromString("11"),
		TenureMonths:         12,
	}, analyst)
	require.NoError(t, err)

	pricing, err := svc.CalculateLoanPricing(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "12", pricing.RecommendedRate.String())
	assert.Equal(t, domain.RiskHigh, pricing.RiskCategory)
	assert.Equal(t, "888.49", pricing.EMI.String())

	_, err = svc.CalculateLoanPricing(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLoanServiceStaleWriteIsConcurrentModification(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewLoanRepository(store)
	svc := services.NewLoanService(repo, lock.NewMemoryLocker(), services.NewPricingService())
	loan := draftLoan(t, svc, "Acme", "A")

	stale, err := repo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	_, err = changeStatus(svc, loan.ID, domain.LoanStatusSubmitted, analyst)
	require.NoError(t, err)

	stale.ClientName = "Overwritten"
	stale.UpdatedAt = time.Now()
	_, err = repo.Update(context.Background(), stale)
	require.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.True(t, domain.Retryable(err))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
)

var _ service_interfaces.LoanService = (*LoanService)(nil)

type LoanService struct {
	loanRepo domain.LoanRepository
	locker   domain.Locker
	pricing  service_interfaces.PricingService
	now      func() time.Time
}

func NewLoanService(loanRepo domain.LoanRepository, locker domain.Locker, pricing service_interfaces.PricingService) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
		locker:   locker,
		pricing:  pricing,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *LoanService) WithClock(now func() time.Time) *LoanService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *LoanService) CreateLoan(ctx context.Context, in domain.CreateLoanInput, actor domain.Actor) (domain.Loan, error) {
	logger.Info("loan service create loan request", logger.Fields{
		"clientName": in.ClientName,
		"loanType":   in.LoanType,
		"actorId":    actor.ID,
	})

	if err := requireActive(actor); err != nil {
		return domain.Loan{}, err
	}

	now := s.now().UTC()
	loan := domain.Loan{
		ID:                   uuid.NewString(),
		ClientName:           strings.TrimSpace(in.ClientName),
		LoanType:             strings.TrimSpace(in.LoanType),
		RequestedAmount:      in.RequestedAmount,
		ProposedInterestRate: in.ProposedInterestRate,
		TenureMonths:         in.TenureMonths,
		Financials:           copyFinancials(in.Financials),
		Status:               domain.LoanStatusDraft,
		CreatedBy:            actor.ID,
		UpdatedBy:            actor.ID,
		CreatedAt:            now,
		UpdatedAt:            now,
		Actions:              []domain.LoanAction{},
		Version:              1,
	}

	created, err := s.loanRepo.Create(ctx, loan)
	if err != nil {
		logger.Error("loan service create loan repository failed", err, logger.Fields{
			"clientName": loan.ClientName,
		})
		return domain.Loan{}, err
	}

	logger.Info("loan service create loan success", logger.Fields{
		"loanId":  created.ID,
		"status":  created.Status,
		"actorId": actor.ID,
	})
	return created, nil
}

func (s *LoanService) GetLoanByID(ctx context.Context, id string) (domain.Loan, error) {
	return s.loadLoan(ctx, id)
}

func (s *LoanService) ListLoans(ctx context.Context, in domain.ListLoansInput) (domain.Page[domain.Loan], error) {
	page, err := in.Page.Normalize()
	if err != nil {
		return domain.Page[domain.Loan]{}, err
	}

	filter := domain.LoanFilter{
		IncludeDeleted: in.IncludeDeleted,
		ClientName:     strings.TrimSpace(in.ClientName),
		LoanType:       strings.TrimSpace(in.LoanType),
	}
	if raw := strings.TrimSpace(in.Status); raw != "" {
		if status, ok := domain.ParseLoanStatus(raw); ok {
			filter.Status = &status
		} else {
			logger.Info("loan service list loans ignoring unknown status filter", logger.Fields{
				"status": raw,
			})
		}
	}

	result, err := s.loanRepo.List(ctx, filter, page)
	if err != nil {
		logger.Error("loan service list loans failed", err, nil)
		return domain.Page[domain.Loan]{}, err
	}
	return result, nil
}

func (s *LoanService) UpdateLoan(ctx context.Context, id string, in domain.UpdateLoanInput, actor domain.Actor) (domain.Loan, error) {
	logger.Info("loan service update loan request", logger.Fields{
		"loanId":  id,
		"actorId": actor.ID,
	})

	return s.mutate(ctx, id, actor, "update loan", func(loan *domain.Loan, now time.Time) error {
		if err := domain.CheckEdit(loan.Status, actor.Role); err != nil {
			return err
		}
		in.ApplyTo(loan)
		loan.Touch(actor.ID, now)
		return nil
	})
}

// UpdateLoanAdmin writes the sensitive fields. The caller has already verified
// the actor is privileged; the loan's status is not consulted.
func (s *LoanService) UpdateLoanAdmin(ctx context.Context, id string, in domain.UpdateLoanAdminInput, actor domain.Actor) (domain.Loan, error) {
	logger.Info("loan service update loan admin request", logger.Fields{
		"loanId":  id,
		"actorId": actor.ID,
	})

	return s.mutate(ctx, id, actor, "update loan admin", func(loan *domain.Loan, now time.Time) error {
		in.ApplyTo(loan)
		loan.Touch(actor.ID, now)
		return nil
	})
}

func (s *LoanService) ChangeStatus(ctx context.Context, id string, in domain.ChangeStatusInput, actor domain.Actor) (domain.Loan, error) {
	logger.Info("loan service change status request", logger.Fields{
		"loanId":       id,
		"targetStatus": in.Status,
		"actorId":      actor.ID,
		"actorRole":    actor.Role,
	})

	return s.mutate(ctx, id, actor, "change status", func(loan *domain.Loan, now time.Time) error {
		target, ok := domain.ParseLoanStatus(in.Status)
		if !ok {
			return fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, in.Status)
		}
		if err := domain.CheckTransition(loan.Status, target, actor.Role); err != nil {
			return err
		}

		loan.Status = target
		loan.Touch(actor.ID, now)
		loan.AppendAction(domain.LoanAction{
			By:        actor.ID,
			Action:    domain.StatusChangeAction(target),
			Comments:  in.Comments,
			Timestamp: now,
		})
		if target == domain.LoanStatusApproved {
			approvedBy := actor.ID
			approvedAt := now
			loan.ApprovedBy = &approvedBy
			loan.ApprovedAt = &approvedAt
		}
		return nil
	})
}

func (s *LoanService) DeleteLoan(ctx context.Context, id string, actor domain.Actor) (domain.Loan, error) {
	logger.Info("loan service delete loan request", logger.Fields{
		"loanId":  id,
		"actorId": actor.ID,
	})

	return s.mutate(ctx, id, actor, "delete loan", func(loan *domain.Loan, now time.Time) error {
		deletedAt := now
		loan.Deleted = true
		loan.DeletedAt = &deletedAt
		loan.Touch(actor.ID, now)
		loan.AppendAction(domain.LoanAction{
			By:        actor.ID,
			Action:    domain.LoanActionDeleted,
			Comments:  "Loan soft deleted",
			Timestamp: now,
		})
		return nil
	})
}

// CalculateLoanPricing prices a stored loan from its own terms. The loan is not modified.
func (s *LoanService) CalculateLoanPricing(ctx context.Context, id string) (domain.Pricing, error) {
	loan, err := s.loadLoan(ctx, id)
	if err != nil {
		return domain.Pricing{}, err
	}

	return s.pricing.CalculatePricing(ctx, domain.PricingInput{
		Amount:       loan.RequestedAmount,
		ProposedRate: loan.ProposedInterestRate,
		TenureMonths: loan.TenureMonths,
		Rating:       loan.Rating(),
	})
}

// mutate runs change against the current, non-deleted loan under the loan's lock
// and persists it with a version check. change must not write on error.
func (s *LoanService) mutate(
	ctx context.Context,
	id string,
	actor domain.Actor,
	operation string,
	change func(loan *domain.Loan, now time.Time) error,
) (domain.Loan, error) {
	if err := requireActive(actor); err != nil {
		return domain.Loan{}, err
	}

	id = strings.TrimSpace(id)
	unlock, err := s.locker.Lock(ctx, domain.LoanLockKey(id))
	if err != nil {
		logger.Error("loan service "+operation+" lock failed", err, logger.Fields{"loanId": id})
		return domain.Loan{}, err
	}
	defer unlock()

	loan, err := s.loadLoan(ctx, id)
	if err != nil {
		return domain.Loan{}, err
	}

	if err := change(&loan, s.now().UTC()); err != nil {
		logger.Info("loan service "+operation+" rejected", logger.Fields{
			"loanId":  id,
			"status":  loan.Status,
			"actorId": actor.ID,
			"reason":  err.Error(),
		})
		return domain.Loan{}, err
	}

	saved, err := s.loanRepo.Update(ctx, loan)
	if err != nil {
		logger.Error("loan service "+operation+" repository failed", err, logger.Fields{
			"loanId": id,
		})
		return domain.Loan{}, err
	}

	logger.Info("loan service "+operation+" success", logger.Fields{
		"loanId":  saved.ID,
		"status":  saved.Status,
		"actorId": actor.ID,
	})
	return saved, nil
}

func (s *LoanService) loadLoan(ctx context.Context, id string) (domain.Loan, error) {
	id = strings.TrimSpace(id)
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Loan{}, fmt.Errorf("%w: %s", domain.ErrLoanNotFound, id)
		}
		logger.Error("loan service load loan failed", err, logger.Fields{"loanId": id})
		return domain.Loan{}, err
	}
	if loan.Deleted {
		return domain.Loan{}, fmt.Errorf("%w: %s", domain.ErrLoanNotFound, id)
	}
	return loan, nil
}

func requireActive(actor domain.Actor) error {
	if strings.TrimSpace(actor.ID) == "" {
		return fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}
	if !actor.Active {
		return fmt.Errorf("%w: actor %s is inactive", domain.ErrForbidden, actor.ID)
	}
	return nil
}

func copyFinancials(f *domain.Financials) *domain.Financials {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

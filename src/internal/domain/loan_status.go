package domain

import (
	"fmt"
	"strings"
)

type LoanStatus string

const (
	LoanStatusDraft       LoanStatus = "DRAFT"
	LoanStatusSubmitted   LoanStatus = "SUBMITTED"
	LoanStatusUnderReview LoanStatus = "UNDER_REVIEW"
	LoanStatusApproved    LoanStatus = "APPROVED"
	LoanStatusRejected    LoanStatus = "REJECTED"
)

var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusDraft:       {LoanStatusSubmitted},
	LoanStatusSubmitted:   {LoanStatusUnderReview},
	LoanStatusUnderReview: {LoanStatusApproved, LoanStatusRejected},
	LoanStatusApproved:    {},
	LoanStatusRejected:    {},
}

// ParseLoanStatus accepts the status name in any case.
func ParseLoanStatus(raw string) (LoanStatus, bool) {
	status := LoanStatus(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := loanTransitions[status]
	return status, ok
}

func (s LoanStatus) IsTerminal() bool {
	return len(loanTransitions[s]) == 0
}

// CanTransitionTo reports whether the transition table allows s -> next.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	if s == next {
		return false
	}
	for _, allowed := range loanTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CheckTransition decides whether role may move a loan from current to target.
// The table is checked first; a USER is then limited to DRAFT -> SUBMITTED.
func CheckTransition(current, target LoanStatus, role Role) error {
	if !current.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrStatusChangeNotAllowed, current, target)
	}
	if !role.IsPrivileged() && (current != LoanStatusDraft || target != LoanStatusSubmitted) {
		return fmt.Errorf("%w: users can only submit loans from DRAFT status", ErrStatusChangeNotAllowed)
	}
	return nil
}

// CheckEdit decides whether role may edit the non-sensitive fields of a loan in status.
func CheckEdit(status LoanStatus, role Role) error {
	if !role.IsPrivileged() && status != LoanStatusDraft {
		return fmt.Errorf("%w: USER can only edit loans in DRAFT status", ErrLoanEditNotAllowed)
	}
	return nil
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Financials struct {
	Revenue *decimal.Decimal
	EBITDA  *decimal.Decimal
	Rating  string
}

type LoanAction struct {
	By        string
	Action    string
	Comments  string
	Timestamp time.Time
}

const LoanActionDeleted = "DELETED"

func StatusChangeAction(status LoanStatus) string {
	return "STATUS_CHANGE: " + string(status)
}

type Loan struct {
	ID                   string
	ClientName           string
	LoanType             string
	RequestedAmount      decimal.Decimal
	ProposedInterestRate decimal.Decimal
	TenureMonths         int
	Financials           *Financials
	Status               LoanStatus
	SanctionedAmount     *decimal.Decimal
	ApprovedInterestRate *decimal.Decimal
	CreatedBy            string
	UpdatedBy            string
	ApprovedBy           *string
	ApprovedAt           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Actions              []LoanAction
	Deleted              bool
	DeletedAt            *time.Time
	Version              int64
}

// AppendAction adds action to the audit trail. Existing entries are never
// modified; a fresh backing array is used so earlier copies of the loan keep
// their own view of the trail.
func (l *Loan) AppendAction(action LoanAction) {
	actions := make([]LoanAction, len(l.Actions), len(l.Actions)+1)
	copy(actions, l.Actions)
	l.Actions = append(actions, action)
}

func (l *Loan) Touch(actorID string, at time.Time) {
	l.UpdatedBy = actorID
	l.UpdatedAt = at
}

// Rating returns the credit rating used for pricing; "C" when none is recorded.
func (l Loan) Rating() string {
	if l.Financials == nil {
		return DefaultRating
	}
	return l.Financials.Rating
}

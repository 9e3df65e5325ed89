package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

var _ domain.LoanRepository = (*LoanRepository)(nil)

type LoanRepository struct {
	store *Store
}

func NewLoanRepository(store *Store) *LoanRepository {
	return &LoanRepository{store: store}
}

func (r *LoanRepository) Create(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	if loan.Version == 0 {
		loan.Version = 1
	}
	stored := cloneLoan(loan)
	err := r.store.exec(ctx, func(s *Store) (func(), error) {
		if _, exists := s.loans[stored.ID]; exists {
			return nil, fmt.Errorf("%w: loan %s", domain.ErrDuplicateKey, stored.ID)
		}
		s.loans[stored.ID] = stored
		s.loanOrder = append(s.loanOrder, stored.ID)
		return func() {
			delete(s.loans, stored.ID)
			s.loanOrder = s.loanOrder[:len(s.loanOrder)-1]
		}, nil
	})
	if err != nil {
		return domain.Loan{}, err
	}
	return cloneLoan(stored), nil
}

func (r *LoanRepository) GetByID(_ context.Context, id string) (domain.Loan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	loan, ok := r.store.loans[id]
	if !ok {
		return domain.Loan{}, domain.ErrRecordNotFound
	}
	return cloneLoan(loan), nil
}

func (r *LoanRepository) Update(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	next := cloneLoan(loan)
	next.Version = loan.Version + 1

	err := r.store.exec(ctx, func(s *Store) (func(), error) {
		current, ok := s.loans[loan.ID]
		if !ok {
			return nil, domain.ErrRecordNotFound
		}
		if current.Version != loan.Version {
			return nil, fmt.Errorf("%w: loan %s at version %d, expected %d",
				domain.ErrConcurrentModification, loan.ID, current.Version, loan.Version)
		}
		s.loans[loan.ID] = next
		return func() { s.loans[loan.ID] = current }, nil
	})
	if err != nil {
		return domain.Loan{}, err
	}
	return cloneLoan(next), nil
}

func (r *LoanRepository) List(_ context.Context, filter domain.LoanFilter, page domain.PageRequest) (domain.Page[domain.Loan], error) {
	r.store.mu.RLock()
	matched := make([]domain.Loan, 0)
	for _, id := range r.store.loanOrder {
		if loan := r.store.loans[id]; filter.Matches(loan) {
			matched = append(matched, loan)
		}
	}
	r.store.mu.RUnlock()

	less := loanComparator(page.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		if page.Direction == domain.SortAsc {
			return less(matched[i], matched[j]) < 0
		}
		return less(matched[i], matched[j]) > 0
	})

	total := int64(len(matched))
	start := min(page.Offset(), len(matched))
	end := min(start+page.Size, len(matched))

	items := make([]domain.Loan, 0, end-start)
	for _, loan := range matched[start:end] {
		items = append(items, cloneLoan(loan))
	}
	return domain.NewPage(items, page, total), nil
}

func loanComparator(sortBy string) func(a, b domain.Loan) int {
	switch sortBy {
	case "updatedAt":
		return func(a, b domain.Loan) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case "clientName":
		return func(a, b domain.Loan) int { return strings.Compare(a.ClientName, b.ClientName) }
	case "loanType":
		return func(a, b domain.Loan) int { return strings.Compare(a.LoanType, b.LoanType) }
	case "requestedAmount":
		return func(a, b domain.Loan) int { return a.RequestedAmount.Cmp(b.RequestedAmount) }
	case "status":
		return func(a, b domain.Loan) int { return strings.Compare(string(a.Status), string(b.Status)) }
	case "tenureMonths":
		return func(a, b domain.Loan) int { return a.TenureMonths - b.TenureMonths }
	default:
		return func(a, b domain.Loan) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

// cloneLoan copies every reference held by loan so stored records never alias caller values.
func cloneLoan(loan domain.Loan) domain.Loan {
	c := loan
	if loan.Financials != nil {
		f := *loan.Financials
		if f.Revenue != nil {
			v := *f.Revenue
			f.Revenue = &v
		}
		if f.EBITDA != nil {
			v := *f.EBITDA
			f.EBITDA = &v
		}
		c.Financials = &f
	}
	if loan.SanctionedAmount != nil {
		v := *loan.SanctionedAmount
		c.SanctionedAmount = &v
	}
	if loan.ApprovedInterestRate != nil {
		v := *loan.ApprovedInterestRate
		c.ApprovedInterestRate = &v
	}
	if loan.ApprovedBy != nil {
		v := *loan.ApprovedBy
		c.ApprovedBy = &v
	}
	if loan.ApprovedAt != nil {
		v := *loan.ApprovedAt
		c.ApprovedAt = &v
	}
	if loan.DeletedAt != nil {
		v := *loan.DeletedAt
		c.DeletedAt = &v
	}
	c.Actions = append([]domain.LoanAction{}, loan.Actions...)
	return c
}

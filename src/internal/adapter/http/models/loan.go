package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

type FinancialsPayload struct {
	Revenue string `json:"revenue,omitempty"`
	EBITDA  string `json:"ebitda,omitempty"`
	Rating  string `json:"rating,omitempty"`
}

func (p *FinancialsPayload) toDomain(errs *[]string) *domain.Financials {
	if p == nil {
		return nil
	}
	revenue, err := parseOptionalDecimal("financials.revenue", p.Revenue)
	if err != nil {
		*errs = append(*errs, err.Error())
	}
	ebitda, err := parseOptionalDecimal("financials.ebitda", p.EBITDA)
	if err != nil {
		*errs = append(*errs, err.Error())
	}
	return &domain.Financials{
		Revenue: revenue,
		EBITDA:  ebitda,
		Rating:  strings.ToUpper(strings.TrimSpace(p.Rating)),
	}
}

type CreateLoanRequest struct {
	ClientName           string             `json:"clientName"`
	LoanType             string             `json:"loanType"`
	RequestedAmount      string             `json:"requestedAmount"`
	ProposedInterestRate string             `json:"proposedInterestRate"`
	TenureMonths         int                `json:"tenureMonths"`
	Financials           *FinancialsPayload `json:"financials,omitempty"`
}

// Input validates the request and converts it. All problems are reported together.
func (r CreateLoanRequest) Input() (domain.CreateLoanInput, error) {
	var errs []string

	if strings.TrimSpace(r.ClientName) == "" {
		errs = append(errs, "clientName is required")
	}
	if strings.TrimSpace(r.LoanType) == "" {
		errs = append(errs, "loanType is required")
	}
	amount := requiredDecimal("requestedAmount", r.RequestedAmount, &errs)
	if amount != nil && !amount.IsPositive() {
		errs = append(errs, "requestedAmount must be greater than zero")
	}
	rate := requiredDecimal("proposedInterestRate", r.ProposedInterestRate, &errs)
	if rate != nil && rate.IsNegative() {
		errs = append(errs, "proposedInterestRate cannot be negative")
	}
	if r.TenureMonths <= 0 {
		errs = append(errs, "tenureMonths must be greater than zero")
	}
	financials := r.Financials.toDomain(&errs)

	if len(errs) > 0 {
		return domain.CreateLoanInput{}, errors.New(strings.Join(errs, "; "))
	}

	return domain.CreateLoanInput{
		ClientName:           r.ClientName,
		LoanType:             r.LoanType,
		RequestedAmount:      *amount,
		ProposedInterestRate: *rate,
		TenureMonths:         r.TenureMonths,
		Financials:           financials,
	}, nil
}

// UpdateLoanRequest is a partial update: absent fields are left unchanged.
type UpdateLoanRequest struct {
	ClientName           *string            `json:"clientName,omitempty"`
	LoanType             *string            `json:"loanType,omitempty"`
	RequestedAmount      *string            `json:"requestedAmount,omitempty"`
	ProposedInterestRate *string            `json:"proposedInterestRate,omitempty"`
	TenureMonths         *int               `json:"tenureMonths,omitempty"`
	Financials           *FinancialsPayload `json:"financials,omitempty"`
}

func (r UpdateLoanRequest) Input() (domain.UpdateLoanInput, error) {
	var errs []string
	in := domain.UpdateLoanInput{
		ClientName: trimmedPtr(r.ClientName),
		LoanType:   trimmedPtr(r.LoanType),
	}

	if in.ClientName != nil && *in.ClientName == "" {
		errs = append(errs, "clientName cannot be blank")
	}
	if in.LoanType != nil && *in.LoanType == "" {
		errs = append(errs, "loanType cannot be blank")
	}
	if r.RequestedAmount != nil {
		in.RequestedAmount = requiredDecimal("requestedAmount", *r.RequestedAmount, &errs)
		if in.RequestedAmount != nil && !in.RequestedAmount.IsPositive() {
			errs = append(errs, "requestedAmount must be greater than zero")
		}
	}
	if r.ProposedInterestRate != nil {
		in.ProposedInterestRate = requiredDecimal("proposedInterestRate", *r.ProposedInterestRate, &errs)
		if in.ProposedInterestRate != nil && in.ProposedInterestRate.IsNegative() {
			errs = append(errs, "proposedInterestRate cannot be negative")
		}
	}
	if r.TenureMonths != nil {
		if *r.TenureMonths <= 0 {
			errs = append(errs, "tenureMonths must be greater than zero")
		}
		in.TenureMonths = r.TenureMonths
	}
	in.Financials = r.Financials.toDomain(&errs)

	if len(errs) > 0 {
		return domain.UpdateLoanInput{}, errors.New(strings.Join(errs, "; "))
	}
	return in, nil
}

type UpdateLoanAdminRequest struct {
	SanctionedAmount     *string `json:"sanctionedAmount,omitempty"`
	ApprovedInterestRate *string `json:"approvedInterestRate,omitempty"`
}

func (r UpdateLoanAdminRequest) Input() (domain.UpdateLoanAdminInput, error) {
	var errs []string
	var in domain.UpdateLoanAdminInput

	if r.SanctionedAmount != nil {
		in.SanctionedAmount = requiredDecimal("sanctionedAmount", *r.SanctionedAmount, &errs)
		if in.SanctionedAmount != nil && in.SanctionedAmount.IsNegative() {
			errs = append(errs, "sanctionedAmount cannot be negative")
		}
	}
	if r.ApprovedInterestRate != nil {
		in.ApprovedInterestRate = requiredDecimal("approvedInterestRate", *r.ApprovedInterestRate, &errs)
		if in.ApprovedInterestRate != nil && in.ApprovedInterestRate.IsNegative() {
			errs = append(errs, "approvedInterestRate cannot be negative")
		}
	}

	if len(errs) > 0 {
		return domain.UpdateLoanAdminInput{}, errors.New(strings.Join(errs, "; "))
	}
	return in, nil
}

type ChangeStatusRequest struct {
	Status   string `json:"status"`
	Comments string `json:"comments,omitempty"`
}

func (r ChangeStatusRequest) Validate() error {
	if strings.TrimSpace(r.Status) == "" {
		return errors.New("status is required")
	}
	return nil
}

// ListLoansQuery reads the list filters and paging parameters from a query string.
func ListLoansQuery(get func(string) string) (domain.ListLoansInput, error) {
	var errs []string
	in := domain.ListLoansInput{
		Status:     get("status"),
		ClientName: get("clientName"),
		LoanType:   get("loanType"),
		Page: domain.PageRequest{
			SortBy:    strings.TrimSpace(get("sortBy")),
			Direction: domain.SortDirection(strings.TrimSpace(get("direction"))),
		},
	}

	if raw := strings.TrimSpace(get("includeDeleted")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, "includeDeleted must be true or false")
		}
		in.IncludeDeleted = v
	}
	in.Page.Page = queryInt("page", get("page"), &errs)
	in.Page.Size = queryInt("size", get("size"), &errs)

	if len(errs) > 0 {
		return domain.ListLoansInput{}, errors.New(strings.Join(errs, "; "))
	}
	return in, nil
}

type LoanActionResponse struct {
	By        string `json:"by"`
	Action    string `json:"action"`
	Comments  string `json:"comments,omitempty"`
	Timestamp string `json:"timestamp"`
}

type LoanResponse struct {
	ID                   string               `json:"id"`
	ClientName           string               `json:"clientName"`
	LoanType             string               `json:"loanType"`
	RequestedAmount      string               `json:"requestedAmount"`
	ProposedInterestRate string               `json:"proposedInterestRate"`
	TenureMonths         int                  `json:"tenureMonths"`
	Financials           *FinancialsPayload   `json:"financials,omitempty"`
	Status               string               `json:"status"`
	SanctionedAmount     string               `json:"sanctionedAmount,omitempty"`
	ApprovedInterestRate string               `json:"approvedInterestRate,omitempty"`
	CreatedBy            string               `json:"createdBy"`
	UpdatedBy            string               `json:"updatedBy"`
	ApprovedBy           string               `json:"approvedBy,omitempty"`
	ApprovedAt           string               `json:"approvedAt,omitempty"`
	CreatedAt            string               `json:"createdAt"`
	UpdatedAt            string               `json:"updatedAt"`
	Actions              []LoanActionResponse `json:"actions"`
	Deleted              bool                 `json:"deleted"`
	DeletedAt            string               `json:"deletedAt,omitempty"`
}

func NewLoanResponse(loan domain.Loan) LoanResponse {
	actions := make([]LoanActionResponse, 0, len(loan.Actions))
	for _, a := range loan.Actions {
		actions = append(actions, LoanActionResponse{
			By:        a.By,
			Action:    a.Action,
			Comments:  a.Comments,
			Timestamp: formatTime(a.Timestamp),
		})
	}

	var financials *FinancialsPayload
	if loan.Financials != nil {
		financials = &FinancialsPayload{
			Revenue: decimalString(loan.Financials.Revenue),
			EBITDA:  decimalString(loan.Financials.EBITDA),
			Rating:  loan.Financials.Rating,
		}
	}

	return LoanResponse{
		ID:                   loan.ID,
		ClientName:           loan.ClientName,
		LoanType:             loan.LoanType,
		RequestedAmount:      loan.RequestedAmount.String(),
		ProposedInterestRate: loan.ProposedInterestRate.String(),
		TenureMonths:         loan.TenureMonths,
		Financials:           financials,
		Status:               string(loan.Status),
		SanctionedAmount:     decimalString(loan.SanctionedAmount),
		ApprovedInterestRate: decimalString(loan.ApprovedInterestRate),
		CreatedBy:            loan.CreatedBy,
		UpdatedBy:            loan.UpdatedBy,
		ApprovedBy:           derefString(loan.ApprovedBy),
		ApprovedAt:           formatOptionalTime(loan.ApprovedAt),
		CreatedAt:            formatTime(loan.CreatedAt),
		UpdatedAt:            formatTime(loan.UpdatedAt),
		Actions:              actions,
		Deleted:              loan.Deleted,
		DeletedAt:            formatOptionalTime(loan.DeletedAt),
	}
}

type PageResponse[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

func NewLoanPageResponse(page domain.Page[domain.Loan]) PageResponse[LoanResponse] {
	items := make([]LoanResponse, 0, len(page.Items))
	for _, loan := range page.Items {
		items = append(items, NewLoanResponse(loan))
	}
	return PageResponse[LoanResponse]{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
}

func requiredDecimal(field string, raw string, errs *[]string) *decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		*errs = append(*errs, field+" is required")
		return nil
	}
	parsed, err := parseOptionalDecimal(field, raw)
	if err != nil {
		*errs = append(*errs, err.Error())
		return nil
	}
	return parsed
}

func queryInt(field string, raw string, errs *[]string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, field+" must be an integer")
		return 0
	}
	return v
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func (r ChangeStatusRequest) Input() domain.ChangeStatusInput {
	return domain.ChangeStatusInput{
		Status:   strings.TrimSpace(r.Status),
		Comments: r.Comments,
	}
}

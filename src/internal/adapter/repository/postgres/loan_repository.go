package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"github.com/shopspring/decimal"
)

var _ domain.LoanRepository = (*LoanRepository)(nil)

var loanSortColumns = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"clientName":      "client_name",
	"loanType":        "loan_type",
	"requestedAmount": "requested_amount",
	"status":          "status",
	"tenureMonths":    "tenure_months",
}

const loanColumns = `id, client_name, loan_type, requested_amount, proposed_interest_rate, tenure_months,
financials, status, sanctioned_amount, approved_interest_rate, created_by, updated_by,
approved_by, approved_at, actions, deleted, deleted_at, version, created_at, updated_at`

type financialsRecord struct {
	Revenue *decimal.Decimal `json:"revenue,omitempty"`
	EBITDA  *decimal.Decimal `json:"ebitda,omitempty"`
	Rating  string           `json:"rating,omitempty"`
}

type actionRecord struct {
	By        string    `json:"by"`
	Action    string    `json:"action"`
	Comments  string    `json:"comments,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type LoanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) Create(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	logger.Info("loan repository create", logger.Fields{
		"loanId":     loan.ID,
		"clientName": loan.ClientName,
	})

	financials, actions, err := encodeLoanDocuments(loan)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan.Version == 0 {
		loan.Version = 1
	}

	const query = `
INSERT INTO loans (
	id, client_name, loan_type, requested_amount, proposed_interest_rate, tenure_months,
	financials, status, sanctioned_amount, approved_interest_rate, created_by, updated_by,
	approved_by, approved_at, actions, deleted, deleted_at, version, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	if _, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		loan.ID,
		loan.ClientName,
		loan.LoanType,
		loan.RequestedAmount,
		loan.ProposedInterestRate,
		loan.TenureMonths,
		nullJSON(financials),
		loan.Status,
		decimal.NullDecimal{Decimal: derefDecimal(loan.SanctionedAmount), Valid: loan.SanctionedAmount != nil},
		decimal.NullDecimal{Decimal: derefDecimal(loan.ApprovedInterestRate), Valid: loan.ApprovedInterestRate != nil},
		loan.CreatedBy,
		loan.UpdatedBy,
		nullString(loan.ApprovedBy),
		nullTime(loan.ApprovedAt),
		string(actions),
		loan.Deleted,
		nullTime(loan.DeletedAt),
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.Loan{}, fmt.Errorf("%w: loan %s", domain.ErrDuplicateKey, loan.ID)
		}
		logger.Error("loan repository create failed", err, logger.Fields{"loanId": loan.ID})
		return domain.Loan{}, fmt.Errorf("create loan: %w", err)
	}

	return loan, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id::text = $1`

	loan, err := scanLoan(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("loan repository record not found", logger.Fields{"loanId": id})
			return domain.Loan{}, domain.ErrRecordNotFound
		}
		logger.Error("loan repository get failed", err, logger.Fields{"loanId": id})
		return domain.Loan{}, fmt.Errorf("get loan by id: %w", err)
	}
	return loan, nil
}

func (r *LoanRepository) Update(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	logger.Info("loan repository update", logger.Fields{
		"loanId":  loan.ID,
		"version": loan.Version,
	})

	financials, actions, err := encodeLoanDocuments(loan)
	if err != nil {
		return domain.Loan{}, err
	}

	const query = `
UPDATE loans
SET client_name = $2,
    loan_type = $3,
    requested_amount = $4,
    proposed_interest_rate = $5,
    tenure_months = $6,
    financials = $7,
    status = $8,
    sanctioned_amount = $9,
    approved_interest_rate = $10,
    updated_by = $11,
    approved_by = $12,
    approved_at = $13,
    actions = $14,
    deleted = $15,
    deleted_at = $16,
    updated_at = $17,
    version = version + 1
WHERE id::text = $1
  AND version = $18
RETURNING version`

	q := conn(ctx, r.db)
	err = q.QueryRowContext(
		ctx,
		query,
		loan.ID,
		loan.ClientName,
		loan.LoanType,
		loan.RequestedAmount,
		loan.ProposedInterestRate,
		loan.TenureMonths,
		nullJSON(financials),
		loan.Status,
		decimal.NullDecimal{Decimal: derefDecimal(loan.SanctionedAmount), Valid: loan.SanctionedAmount != nil},
		decimal.NullDecimal{Decimal: derefDecimal(loan.ApprovedInterestRate), Valid: loan.ApprovedInterestRate != nil},
		loan.UpdatedBy,
		nullString(loan.ApprovedBy),
		nullTime(loan.ApprovedAt),
		string(actions),
		loan.Deleted,
		nullTime(loan.DeletedAt),
		loan.UpdatedAt,
		loan.Version,
	).Scan(&loan.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Loan{}, versionConflict(ctx, q, "loans", "id::text", loan.ID)
	}
	if err != nil {
		logger.Error("loan repository update failed", err, logger.Fields{"loanId": loan.ID})
		return domain.Loan{}, fmt.Errorf("update loan: %w", err)
	}

	return loan, nil
}

func (r *LoanRepository) List(ctx context.Context, filter domain.LoanFilter, page domain.PageRequest) (domain.Page[domain.Loan], error) {
	where, args := loanWhere(filter)

	var total int64
	countQuery := `SELECT COUNT(1) FROM loans` + where
	if err := conn(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		logger.Error("loan repository count failed", err, nil)
		return domain.Page[domain.Loan]{}, fmt.Errorf("count loans: %w", err)
	}

	column, ok := loanSortColumns[page.SortBy]
	if !ok {
		column = loanSortColumns[domain.DefaultSortBy]
	}
	direction := "DESC"
	if page.Direction == domain.SortAsc {
		direction = "ASC"
	}

	args = append(args, page.Size, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM loans%s ORDER BY %s %s, seq %s LIMIT $%d OFFSET $%d`,
		loanColumns, where, column, direction, direction, len(args)-1, len(args))

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("loan repository list failed", err, nil)
		return domain.Page[domain.Loan]{}, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Loan, 0, page.Size)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return domain.Page[domain.Loan]{}, fmt.Errorf("scan loan: %w", err)
		}
		items = append(items, loan)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Loan]{}, fmt.Errorf("iterate loans: %w", err)
	}

	return domain.NewPage(items, page, total), nil
}

func loanWhere(filter domain.LoanFilter) (string, []any) {
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 3)

	if !filter.IncludeDeleted {
		clauses = append(clauses, "deleted = FALSE")
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ClientName != "" {
		args = append(args, "%"+escapeLike(filter.ClientName)+"%")
		clauses = append(clauses, fmt.Sprintf("client_name ILIKE $%d", len(args)))
	}
	if filter.LoanType != "" {
		args = append(args, filter.LoanType)
		clauses = append(clauses, fmt.Sprintf("loan_type = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (domain.Loan, error) {
	var (
		loan                 domain.Loan
		financials           []byte
		actions              []byte
		sanctionedAmount     decimal.NullDecimal
		approvedInterestRate decimal.NullDecimal
		approvedBy           sql.NullString
		approvedAt           sql.NullTime
		deletedAt            sql.NullTime
	)

	if err := row.Scan(
		&loan.ID,
		&loan.ClientName,
		&loan.LoanType,
		&loan.RequestedAmount,
		&loan.ProposedInterestRate,
		&loan.TenureMonths,
		&financials,
		&loan.Status,
		&sanctionedAmount,
		&approvedInterestRate,
		&loan.CreatedBy,
		&loan.UpdatedBy,
		&approvedBy,
		&approvedAt,
		&actions,
		&loan.Deleted,
		&deletedAt,
		&loan.Version,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	); err != nil {
		return domain.Loan{}, err
	}

	if len(financials) > 0 && string(financials) != "null" {
		var record financialsRecord
		if err := json.Unmarshal(financials, &record); err != nil {
			return domain.Loan{}, fmt.Errorf("decode loan financials: %w", err)
		}
		loan.Financials = &domain.Financials{Revenue: record.Revenue, EBITDA: record.EBITDA, Rating: record.Rating}
	}

	var records []actionRecord
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &records); err != nil {
			return domain.Loan{}, fmt.Errorf("decode loan actions: %w", err)
		}
	}
	loan.Actions = make([]domain.LoanAction, 0, len(records))
	for _, a := range records {
		loan.Actions = append(loan.Actions, domain.LoanAction{By: a.By, Action: a.Action, Comments: a.Comments, Timestamp: a.Timestamp})
	}

	if sanctionedAmount.Valid {
		v := sanctionedAmount.Decimal
		loan.SanctionedAmount = &v
	}
	if approvedInterestRate.Valid {
		v := approvedInterestRate.Decimal
		loan.ApprovedInterestRate = &v
	}
	loan.ApprovedBy = stringPtr(approvedBy)
	loan.ApprovedAt = timePtr(approvedAt)
	loan.DeletedAt = timePtr(deletedAt)

	return loan, nil
}

func encodeLoanDocuments(loan domain.Loan) (financials []byte, actions []byte, err error) {
	if loan.Financials != nil {
		financials, err = json.Marshal(financialsRecord{
			Revenue: loan.Financials.Revenue,
			EBITDA:  loan.Financials.EBITDA,
			Rating:  loan.Financials.Rating,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("encode loan financials: %w", err)
		}
	}

	records := make([]actionRecord, 0, len(loan.Actions))
	for _, a := range loan.Actions {
		records = append(records, actionRecord{By: a.By, Action: a.Action, Comments: a.Comments, Timestamp: a.Timestamp})
	}
	actions, err = json.Marshal(records)
	if err != nil {
		return nil, nil, fmt.Errorf("encode loan actions: %w", err)
	}
	return financials, actions, nil
}

func derefDecimal(value *decimal.Decimal) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return *value
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	v := value.Time
	return &v
}

func nullJSON(value []byte) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(value), Valid: true}
}

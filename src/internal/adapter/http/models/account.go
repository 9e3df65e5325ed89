package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	HolderName string `json:"holderName"`
}

func (r CreateAccountRequest) Validate() error {
	if strings.TrimSpace(r.HolderName) == "" {
		return errors.New("holderName is required")
	}
	return nil
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

// ParsedAmount returns nil when no amount was sent; the ledger rejects that as an invalid amount.
func (r AmountRequest) ParsedAmount() (*decimal.Decimal, error) {
	return parseOptionalDecimal("amount", r.Amount)
}

type TransferRequest struct {
	SourceAccountNumber      string `json:"sourceAccountNumber"`
	DestinationAccountNumber string `json:"destinationAccountNumber"`
	Amount                   string `json:"amount"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.SourceAccountNumber) == "" {
		errs = append(errs, "sourceAccountNumber is required")
	}
	if strings.TrimSpace(r.DestinationAccountNumber) == "" {
		errs = append(errs, "destinationAccountNumber is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r TransferRequest) ParsedAmount() (*decimal.Decimal, error) {
	return parseOptionalDecimal("amount", r.Amount)
}

type AccountResponse struct {
	ID            string `json:"id"`
	AccountNumber string `json:"accountNumber"`
	HolderName    string `json:"holderName"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		HolderName:    account.HolderName,
		Balance:       account.Balance.String(),
		Status:        string(account.Status),
		CreatedAt:     formatTime(account.CreatedAt),
		UpdatedAt:     formatTime(account.UpdatedAt),
	}
}

type TransactionResponse struct {
	ID                 string `json:"id"`
	Reference          string `json:"reference"`
	Type               string `json:"type"`
	Amount             string `json:"amount"`
	Status             string `json:"status"`
	SourceAccount      string `json:"sourceAccount,omitempty"`
	DestinationAccount string `json:"destinationAccount,omitempty"`
	Timestamp          string `json:"timestamp"`
}

func NewTransactionResponses(transactions []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		out = append(out, TransactionResponse{
			ID:                 txn.ID,
			Reference:          txn.Reference,
			Type:               string(txn.Type),
			Amount:             txn.Amount.String(),
			Status:             string(txn.Status),
			SourceAccount:      derefString(txn.SourceAccount),
			DestinationAccount: derefString(txn.DestinationAccount),
			Timestamp:          formatTime(txn.Timestamp),
		})
	}
	return out
}

func parseOptionalDecimal(field string, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.New(field + " must be numeric")
	}
	return &parsed, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

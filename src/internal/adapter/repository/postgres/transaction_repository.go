package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
)

var _ domain.TransactionRepository = (*TransactionRepository)(nil)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	logger.Info("transaction repository create", logger.Fields{
		"reference": transaction.Reference,
		"type":      transaction.Type,
		"status":    transaction.Status,
	})

	const query = `
INSERT INTO transactions (
	id,
	reference,
	type,
	amount,
	status,
	source_account,
	destination_account,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		transaction.ID,
		transaction.Reference,
		transaction.Type,
		transaction.Amount,
		transaction.Status,
		nullString(transaction.SourceAccount),
		nullString(transaction.DestinationAccount),
		transaction.Timestamp,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.Transaction{}, fmt.Errorf("%w: transaction reference %s", domain.ErrDuplicateKey, transaction.Reference)
		}
		logger.Error("transaction repository create failed", err, logger.Fields{
			"reference": transaction.Reference,
		})
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	return transaction, nil
}

func (r *TransactionRepository) ListByAccountNumber(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	const query = `
SELECT id, reference, type, amount, status, source_account, destination_account, created_at
FROM transactions
WHERE source_account = $1 OR destination_account = $1
ORDER BY seq ASC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, accountNumber)
	if err != nil {
		logger.Error("transaction repository list failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		var source, destination sql.NullString
		if err := rows.Scan(
			&t.ID,
			&t.Reference,
			&t.Type,
			&t.Amount,
			&t.Status,
			&source,
			&destination,
			&t.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.SourceAccount = stringPtr(source)
		t.DestinationAccount = stringPtr(destination)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

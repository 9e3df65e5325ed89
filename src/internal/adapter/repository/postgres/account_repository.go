package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
)

var _ domain.AccountRepository = (*AccountRepository)(nil)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"accountNumber": account.AccountNumber,
	})

	const query = `
INSERT INTO accounts (
	id,
	account_number,
	holder_name,
	balance,
	status,
	version,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at`

	if account.Version == 0 {
		account.Version = 1
	}

	if err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		account.ID,
		account.AccountNumber,
		account.HolderName,
		account.Balance,
		account.Status,
		account.Version,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, fmt.Errorf("%w: account number %s", domain.ErrDuplicateKey, account.AccountNumber)
		}
		logger.Error("account repository create failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	logger.Info("account repository create success", logger.Fields{
		"accountId":     account.ID,
		"accountNumber": account.AccountNumber,
	})
	return account, nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	const query = `
SELECT id, account_number, holder_name, balance, status, version, created_at, updated_at
FROM accounts
WHERE account_number = $1`

	var account domain.Account
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, accountNumber).Scan(
		&account.ID,
		&account.AccountNumber,
		&account.HolderName,
		&account.Balance,
		&account.Status,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("account repository record not found", logger.Fields{
				"accountNumber": accountNumber,
			})
			return domain.Account{}, domain.ErrRecordNotFound
		}
		logger.Error("account repository get failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, fmt.Errorf("get account by account number: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`

	var exists bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, accountNumber).Scan(&exists); err != nil {
		logger.Error("account repository exists failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return false, fmt.Errorf("check account number: %w", err)
	}

	return exists, nil
}

func (r *AccountRepository) Update(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository update", logger.Fields{
		"accountNumber": account.AccountNumber,
		"version":       account.Version,
	})

	const query = `
UPDATE accounts
SET holder_name = $2,
    balance = $3,
    status = $4,
    version = version + 1,
    updated_at = COALESCE($6::timestamptz, NOW())
WHERE account_number = $1
  AND version = $5
RETURNING version, updated_at`

	var stamped *time.Time
	if !account.UpdatedAt.IsZero() {
		at := account.UpdatedAt
		stamped = &at
	}

	q := conn(ctx, r.db)
	err := q.QueryRowContext(
		ctx,
		query,
		account.AccountNumber,
		account.HolderName,
		account.Balance,
		account.Status,
		account.Version,
		nullTime(stamped),
	).Scan(&account.Version, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, versionConflict(ctx, q, "accounts", "account_number", account.AccountNumber)
	}
	if err != nil {
		logger.Error("account repository update failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}

	return account, nil
}

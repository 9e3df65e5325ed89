package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.AccountService = (*AccountService)(nil)

type AccountService struct {
	accountRepo     domain.AccountRepository
	transactionRepo domain.TransactionRepository
	transactor      domain.Transactor
	locker          domain.Locker
	random          RandomSource
	now             func() time.Time
}

type AccountServiceOption func(*AccountService)

func WithRandomSource(random RandomSource) AccountServiceOption {
	return func(s *AccountService) {
		if random != nil {
			s.random = random
		}
	}
}

func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewAccountService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	transactor domain.Transactor,
	locker domain.Locker,
	opts ...AccountServiceOption,
) *AccountService {
	s := &AccountService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		transactor:      transactor,
		locker:          locker,
		random:          cryptoRandom{},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AccountService) CreateAccount(ctx context.Context, holderName string) (domain.Account, error) {
	holderName = strings.TrimSpace(holderName)
	logger.Info("account service create account request", logger.Fields{
		"holderName": holderName,
	})

	prefix := accountNumberPrefix(holderName)
	for attempt := 0; attempt < maxAccountNumberAttempts; attempt++ {
		candidate := accountNumberCandidate(prefix, s.random)

		exists, err := s.accountRepo.ExistsByAccountNumber(ctx, candidate)
		if err != nil {
			logger.Error("account service create account existence check failed", err, logger.Fields{
				"accountNumber": candidate,
			})
			return domain.Account{}, err
		}
		if exists {
			continue
		}

		now := s.now().UTC()
		created, err := s.accountRepo.Create(ctx, domain.Account{
			ID:            uuid.NewString(),
			AccountNumber: candidate,
			HolderName:    holderName,
			Balance:       decimal.Zero,
			Status:        domain.AccountStatusActive,
			Version:       1,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if errors.Is(err, domain.ErrDuplicateKey) {
			// Lost a race for the same number; draw again within the same budget.
			continue
		}
		if err != nil {
			logger.Error("account service create account repository failed", err, logger.Fields{
				"accountNumber": candidate,
			})
			return domain.Account{}, err
		}

		logger.Info("account service create account success", logger.Fields{
			"accountId":     created.ID,
			"accountNumber": created.AccountNumber,
			"holderName":    created.HolderName,
		})
		return created, nil
	}

	err := fmt.Errorf("%w: prefix %s after %d attempts", domain.ErrAccountNumberExhausted, prefix, maxAccountNumberAttempts)
	logger.Error("account service create account number generation exhausted", err, logger.Fields{
		"holderName": holderName,
	})
	return domain.Account{}, err
}

func (s *AccountService) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	return s.loadAccount(ctx, strings.TrimSpace(accountNumber))
}

func (s *AccountService) Deposit(ctx context.Context, accountNumber string, amount *decimal.Decimal) (domain.Account, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	logger.Info("account service deposit request", logger.Fields{
		"accountNumber": accountNumber,
		"amount":        amountField(amount),
	})

	value, err := validateAmount(amount)
	if err != nil {
		return domain.Account{}, err
	}

	unlock, err := s.locker.Lock(ctx, domain.AccountLockKey(accountNumber))
	if err != nil {
		logger.Error("account service deposit lock failed", err, logger.Fields{"accountNumber": accountNumber})
		return domain.Account{}, err
	}
	defer unlock()

	account, err := s.loadAccount(ctx, accountNumber)
	if err != nil {
		return domain.Account{}, err
	}

	var updated domain.Account
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		now := s.now().UTC()
		updated, txErr = s.accountRepo.Update(ctx, account.Credit(value).Touch(now))
		if txErr != nil {
			return txErr
		}
		return s.record(ctx, now, domain.TransactionTypeDeposit, value, domain.TransactionStatusSuccess, "", accountNumber)
	})
	if err != nil {
		logger.Error("account service deposit failed", err, logger.Fields{
			"accountNumber": accountNumber,
			"amount":        value.String(),
		})
		return domain.Account{}, err
	}

	logger.Info("account service deposit success", logger.Fields{
		"accountNumber": accountNumber,
		"amount":        value.String(),
		"balance":       updated.Balance.String(),
	})
	return updated, nil
}

func (s *AccountService) Withdraw(ctx context.Context, accountNumber string, amount *decimal.Decimal) (domain.Account, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	logger.Info("account service withdraw request", logger.Fields{
		"accountNumber": accountNumber,
		"amount":        amountField(amount),
	})

	value, err := validateAmount(amount)
	if err != nil {
		return domain.Account{}, err
	}

	unlock, err := s.locker.Lock(ctx, domain.AccountLockKey(accountNumber))
	if err != nil {
		logger.Error("account service withdraw lock failed", err, logger.Fields{"accountNumber": accountNumber})
		return domain.Account{}, err
	}
	defer unlock()

	account, err := s.loadAccount(ctx, accountNumber)
	if err != nil {
		return domain.Account{}, err
	}

	if !account.CanDebit(value) {
		if recErr := s.record(ctx, s.now().UTC(), domain.TransactionTypeWithdraw, value, domain.TransactionStatusFailed, accountNumber, ""); recErr != nil {
			logger.Error("account service withdraw record failed attempt failed", recErr, logger.Fields{
				"accountNumber": accountNumber,
			})
			return domain.Account{}, fmt.Errorf("record failed withdrawal: %w", recErr)
		}
		err := fmt.Errorf("%w: account %s holds %s, requested %s", domain.ErrInsufficientBalance, accountNumber, account.Balance.String(), value.String())
		logger.Info("account service withdraw rejected", logger.Fields{
			"accountNumber": accountNumber,
			"amount":        value.String(),
			"balance":       account.Balance.String(),
		})
		return domain.Account{}, err
	}

	var updated domain.Account
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		now := s.now().UTC()
		updated, txErr = s.accountRepo.Update(ctx, account.Debit(value).Touch(now))
		if txErr != nil {
			return txErr
		}
		return s.record(ctx, now, domain.TransactionTypeWithdraw, value, domain.TransactionStatusSuccess, accountNumber, "")
	})
	if err != nil {
		logger.Error("account service withdraw failed", err, logger.Fields{
			"accountNumber": accountNumber,
			"amount":        value.String(),
		})
		return domain.Account{}, err
	}

	logger.Info("account service withdraw success", logger.Fields{
		"accountNumber": accountNumber,
		"amount":        value.String(),
		"balance":       updated.Balance.String(),
	})
	return updated, nil
}

func (s *AccountService) Transfer(ctx context.Context, sourceAccountNumber string, destinationAccountNumber string, amount *decimal.Decimal) (domain.Account, error) {
	sourceAccountNumber = strings.TrimSpace(sourceAccountNumber)
	destinationAccountNumber = strings.TrimSpace(destinationAccountNumber)
	logger.Info("account service transfer request", logger.Fields{
		"sourceAccount":      sourceAccountNumber,
		"destinationAccount": destinationAccountNumber,
		"amount":             amountField(amount),
	})

	value, err := validateAmount(amount)
	if err != nil {
		return domain.Account{}, err
	}
	if sourceAccountNumber == "" || destinationAccountNumber == "" || sourceAccountNumber == destinationAccountNumber {
		return domain.Account{}, fmt.Errorf("%w: source and destination accounts must differ", domain.ErrInvalidAmount)
	}

	unlock, err := s.locker.Lock(ctx,
		domain.AccountLockKey(sourceAccountNumber),
		domain.AccountLockKey(destinationAccountNumber),
	)
	if err != nil {
		logger.Error("account service transfer lock failed", err, logger.Fields{
			"sourceAccount":      sourceAccountNumber,
			"destinationAccount": destinationAccountNumber,
		})
		return domain.Account{}, err
	}
	defer unlock()

	source, err := s.loadAccount(ctx, sourceAccountNumber)
	if err != nil {
		return domain.Account{}, err
	}
	destination, err := s.loadAccount(ctx, destinationAccountNumber)
	if err != nil {
		return domain.Account{}, err
	}

	if !source.CanDebit(value) {
		if recErr := s.record(ctx, s.now().UTC(), domain.TransactionTypeTransfer, value, domain.TransactionStatusFailed, sourceAccountNumber, destinationAccountNumber); recErr != nil {
			logger.Error("account service transfer record failed attempt failed", recErr, logger.Fields{
				"sourceAccount":      sourceAccountNumber,
				"destinationAccount": destinationAccountNumber,
			})
			return domain.Account{}, fmt.Errorf("record failed transfer: %w", recErr)
		}
		logger.Info("account service transfer rejected", logger.Fields{
			"sourceAccount": sourceAccountNumber,
			"amount":        value.String(),
			"balance":       source.Balance.String(),
		})
		return domain.Account{}, fmt.Errorf("%w: account %s holds %s, requested %s", domain.ErrInsufficientBalance, sourceAccountNumber, source.Balance.String(), value.String())
	}

	var updatedSource, updatedDestination domain.Account
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		now := s.now().UTC()
		if updatedSource, txErr = s.accountRepo.Update(ctx, source.Debit(value).Touch(now)); txErr != nil {
			return txErr
		}
		if updatedDestination, txErr = s.accountRepo.Update(ctx, destination.Credit(value).Touch(now)); txErr != nil {
			return txErr
		}
		return s.record(ctx, now, domain.TransactionTypeTransfer, value, domain.TransactionStatusSuccess, sourceAccountNumber, destinationAccountNumber)
	})
	if err != nil {
		logger.Error("account service transfer failed", err, logger.Fields{
			"sourceAccount":      sourceAccountNumber,
			"destinationAccount": destinationAccountNumber,
			"amount":             value.String(),
		})
		return domain.Account{}, err
	}

	logger.Info("account service transfer success", logger.Fields{
		"sourceAccount":      sourceAccountNumber,
		"destinationAccount": destinationAccountNumber,
		"amount":             value.String(),
		"sourceBalance":      updatedSource.Balance.String(),
		"destinationBalance": updatedDestination.Balance.String(),
	})
	return updatedSource, nil
}

func (s *AccountService) GetTransactions(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if _, err := s.loadAccount(ctx, accountNumber); err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.ListByAccountNumber(ctx, accountNumber)
	if err != nil {
		logger.Error("account service list transactions failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return nil, err
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Timestamp.After(transactions[j].Timestamp)
	})
	return transactions, nil
}

func (s *AccountService) loadAccount(ctx context.Context, accountNumber string) (domain.Account, error) {
	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountNumber)
		}
		logger.Error("account service load account failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, err
	}
	return account, nil
}

func (s *AccountService) record(
	ctx context.Context,
	now time.Time,
	txType domain.TransactionType,
	amount decimal.Decimal,
	status domain.TransactionStatus,
	sourceAccount string,
	destinationAccount string,
) error {
	_, err := s.transactionRepo.Create(ctx, domain.Transaction{
		ID:                 uuid.NewString(),
		Reference:          generateTransactionReference(now),
		Type:               txType,
		Amount:             amount,
		Status:             status,
		SourceAccount:      optionalString(sourceAccount),
		DestinationAccount: optionalString(destinationAccount),
		Timestamp:          now,
	})
	return err
}

func validateAmount(amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive, got %s", domain.ErrInvalidAmount, amount.String())
	}
	return *amount, nil
}

func amountField(amount *decimal.Decimal) string {
	if amount == nil {
		return ""
	}
	return amount.String()
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

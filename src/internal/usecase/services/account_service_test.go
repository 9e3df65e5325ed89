package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/lock"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandom struct {
	values []int
	calls  int
}

func (r *fixedRandom) IntN(n int) int {
	v := r.values[r.calls%len(r.values)] % n
	r.calls++
	return v
}

type ledgerFixture struct {
	svc          *services.AccountService
	accounts     *memory.AccountRepository
	transactions *memory.TransactionRepository
}

// tickingClock advances one millisecond per reading so records never tie.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}

func newLedger(t *testing.T, opts ...services.AccountServiceOption) ledgerFixture {
	t.Helper()
	opts = append([]services.AccountServiceOption{services.WithAccountClock(tickingClock())}, opts...)
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	transactions := memory.NewTransactionRepository(store)
	svc := services.NewAccountService(accounts, transactions, memory.NewTransactor(store), lock.NewMemoryLocker(), opts...)
	return ledgerFixture{svc: svc, accounts: accounts, transactions: transactions}
}

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func openAccount(t *testing.T, f ledgerFixture, holder string, balance string) domain.Account {
	t.Helper()
	account, err := f.svc.CreateAccount(context.Background(), holder)
	require.NoError(t, err)
	if balance != "0" {
		account, err = f.svc.Deposit(context.Background(), account.AccountNumber, amount(balance))
		require.NoError(t, err)
	}
	return account
}

func TestCreateAccountPrefixes(t *testing.T) {
	cases := map[string]string{
		"Ana Lee": "ANA",
		"  bob  ": "BOB",
		"Al":      "ALX",
		"J":       "JXX",
		"7":       "ACC",
		"":        "ACC",
		"O'Neil":  "ONE",
		"Zoë":     "ZOX",
	}
	for holder, prefix := range cases {
		t.Run(holder, func(t *testing.T) {
			f := newLedger(t)
			account, err := f.svc.CreateAccount(context.Background(), holder)
			require.NoError(t, err)

			assert.Regexp(t, "^"+prefix+`\d{4}$`, account.AccountNumber)
			assert.True(t, account.Balance.IsZero())
			assert.Equal(t, domain.AccountStatusActive, account.Status)
			assert.NotEmpty(t, account.ID)
		})
	}
}

func TestCreateAccountRetriesTakenNumbers(t *testing.T) {
	random := &fixedRandom{values: []int{42, 42, 7}}
	f := newLedger(t, services.WithRandomSource(random))

	first, err := f.svc.CreateAccount(context.Background(), "Ana Lee")
	require.NoError(t, err)
	assert.Equal(t, "ANA0042", first.AccountNumber)

	second, err := f.svc.CreateAccount(context.Background(), "Ana Maria")
	require.NoError(t, err)
	assert.Equal(t, "ANA0007", second.AccountNumber)
}

func TestCreateAccountExhaustsAttemptBudget(t *testing.T) {
	random := &fixedRandom{values: []int{1}}
	f := newLedger(t, services.WithRandomSource(random))
	_, err := f.svc.CreateAccount(context.Background(), "Ana")
	require.NoError(t, err)

	random.calls = 0
	_, err = f.svc.CreateAccount(context.Background(), "Ana")
	require.ErrorIs(t, err, domain.ErrAccountNumberExhausted)
	assert.Equal(t, domain.KindFatal, domain.KindOf(err))
	assert.Equal(t, 25, random.calls)
}

func TestDepositRejectsMissingAndNonPositiveAmounts(t *testing.T) {
	f := newLedger(t)
	account := openAccount(t, f, "Ana", "0")

	for _, a := range []*decimal.Decimal{nil, amount("0"), amount("-5")} {
		_, err := f.svc.Deposit(context.Background(), account.AccountNumber, a)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	}

	txns, err := f.svc.GetTransactions(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestDepositUnknownAccount(t *testing.T) {
	f := newLedger(t)
	_, err := f.svc.Deposit(context.Background(), "NOP0000", amount("10"))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestDepositThenWithdrawExactDecimals(t *testing.T) {
	f := newLedger(t)
	account := openAccount(t, f, "Ana", "0.1")

	account, err := f.svc.Deposit(context.Background(), account.AccountNumber, amount("0.2"))
	require.NoError(t, err)
	assert.Equal(t, "0.3", account.Balance.String())

	account, err = f.svc.Withdraw(context.Background(), account.AccountNumber, amount("0.3"))
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())

	txns, err := f.svc.GetTransactions(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	for _, txn := range txns {
		assert.Equal(t, domain.TransactionStatusSuccess, txn.Status)
		assert.Regexp(t, `^TXN\d{30}$`, txn.Reference)
	}
}

func TestWithdrawInsufficientRecordsFailedAttempt(t *testing.T) {
	f := newLedger(t)
	account := openAccount(t, f, "Ana", "50")

	_, err := f.svc.Withdraw(context.Background(), account.AccountNumber, amount("80"))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	stored, err := f.svc.GetByAccountNumber(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, "50", stored.Balance.String())

	txns, err := f.svc.GetTransactions(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	failed := txns[0]
	assert.Equal(t, domain.TransactionTypeWithdraw, failed.Type)
	assert.Equal(t, domain.TransactionStatusFailed, failed.Status)
	assert.Equal(t, "80", failed.Amount.String())
	require.NotNil(t, failed.SourceAccount)
	assert.Equal(t, account.AccountNumber, *failed.SourceAccount)
	assert.Nil(t, failed.DestinationAccount)
}

func TestTransferMovesFundsAndRecordsOnce(t *testing.T) {
	f := newLedger(t)
	a := openAccount(t, f, "Ana", "100")
	b := openAccount(t, f, "Ben", "0")

	source, err := f.svc.Transfer(context.Background(), a.AccountNumber, b.AccountNumber, amount("30"))
	require.NoError(t, err)
	assert.Equal(t, "70", source.Balance.String())

	destination, err := f.svc.GetByAccountNumber(context.Background(), b.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, "30", destination.Balance.String())

	txns, err := f.svc.GetTransactions(context.Background(), b.AccountNumber)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, domain.TransactionTypeTransfer, txns[0].Type)
	assert.Equal(t, a.AccountNumber, *txns[0].SourceAccount)
	assert.Equal(t, b.AccountNumber, *txns[0].DestinationAccount)
}

func TestBalanceChangesStampAccountsWithLedgerClock(t *testing.T) {
	f := newLedger(t)
	a := openAccount(t, f, "Ana", "100")
	b := openAccount(t, f, "Ben", "0")

	txns, err := f.svc.GetTransactions(context.Background(), a.AccountNumber)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, txns[0].Timestamp, a.UpdatedAt)
	assert.Equal(t, 2025, a.UpdatedAt.Year())

	_, err = f.svc.Transfer(context.Background(), a.AccountNumber, b.AccountNumber, amount("30"))
	require.NoError(t, err)

	txns, err = f.svc.GetTransactions(context.Background(), b.AccountNumber)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	source, err := f.svc.GetByAccountNumber(context.Background(), a.AccountNumber)
	require.NoError(t, err)
	destination, err := f.svc.GetByAccountNumber(context.Background(), b.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, txns[0].Timestamp, source.UpdatedAt)
	assert.Equal(t, txns[0].Timestamp, destination.UpdatedAt)
}

func TestTransferValidation(t *testing.T) {
	f := newLedger(t)
	a := openAccount(t, f, "Ana", "100")

	_, err := f.svc.Transfer(context.Background(), a.AccountNumber, a.AccountNumber, amount("1"))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Transfer(context.Background(), a.AccountNumber, "NOP0000", amount("1"))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = f.svc.Transfer(context.Background(), a.AccountNumber, "NOP0000", amount("0"))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestTransferInsufficientRecordsFailedTransfer(t *testing.T) {
	f := newLedger(t)
	a := openAccount(t, f, "Ana", "10")
	b := openAccount(t, f, "Ben", "5")

	_, err := f.svc.Transfer(context.Background(), a.AccountNumber, b.AccountNumber, amount("10.01"))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	source, _ := f.svc.GetByAccountNumber(context.Background(), a.AccountNumber)
	destination, _ := f.svc.GetByAccountNumber(context.Background(), b.AccountNumber)
	assert.Equal(t, "10", source.Balance.String())
	assert.Equal(t, "5", destination.Balance.String())

	txns, err := f.svc.GetTransactions(context.Background(), b.AccountNumber)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, domain.TransactionStatusFailed, txns[0].Status)
	assert.Equal(t, domain.TransactionTypeTransfer, txns[0].Type)
}

func TestGetTransactionsNewestFirstWithStableTies(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	f := newLedger(t, services.WithAccountClock(clock))
	account := openAccount(t, f, "Ana", "1")

	_, err := f.svc.Deposit(context.Background(), account.AccountNumber, amount("2"))
	require.NoError(t, err)
	now = now.Add(time.Minute)
	_, err = f.svc.Deposit(context.Background(), account.AccountNumber, amount("3"))
	require.NoError(t, err)

	txns, err := f.svc.GetTransactions(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "3", txns[0].Amount.String())
	assert.Equal(t, "1", txns[1].Amount.String())
	assert.Equal(t, "2", txns[2].Amount.String())
}

func TestGetTransactionsUnknownAccount(t *testing.T) {
	f := newLedger(t)
	_, err := f.svc.GetTransactions(context.Background(), "NOP0000")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestConcurrentTransfersConserveTotal(t *testing.T) {
	f := newLedger(t)
	a := openAccount(t, f, "Ana", "1000")
	b := openAccount(t, f, "Ben", "1000")
	c := openAccount(t, f, "Cal", "1000")
	numbers := []string{a.AccountNumber, b.AccountNumber, c.AccountNumber}

	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := numbers[i%3]
			dst := numbers[(i+1+i/3)%3]
			if src == dst {
				dst = numbers[(i+2)%3]
			}
			_, err := f.svc.Transfer(context.Background(), src, dst, amount("7.25"))
			if err != nil && !errors.Is(err, domain.ErrInsufficientBalance) {
				t.Errorf("transfer %s -> %s: %v", src, dst, err)
			}
		}(i)
	}
	wg.Wait()

	total := decimal.Zero
	for _, number := range numbers {
		account, err := f.svc.GetByAccountNumber(context.Background(), number)
		require.NoError(t, err)
		assert.False(t, account.Balance.IsNegative())
		total = total.Add(account.Balance)
	}
	assert.Equal(t, "3000", total.String())
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	f := newLedger(t)
	account := openAccount(t, f, "Ana", "100")

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Withdraw(context.Background(), account.AccountNumber, amount("10")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stored, err := f.svc.GetByAccountNumber(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, 10, succeeded)
	assert.True(t, stored.Balance.IsZero())
}

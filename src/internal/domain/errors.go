package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrDuplicateKey = errors.New("Duplicate key")
var ErrConcurrentModification = errors.New("Concurrent modification")

var ErrAccountNotFound = errors.New("Account not found")
var ErrLoanNotFound = errors.New("Loan not found")
var ErrUserNotFound = errors.New("User not found")
var ErrUserAlreadyExists = errors.New("User already exists")

var ErrInvalidAmount = errors.New("Invalid amount")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrInvalidInput = errors.New("Invalid input")

var ErrLoanEditNotAllowed = errors.New("Loan edit not allowed")
var ErrStatusChangeNotAllowed = errors.New("Status change not allowed")
var ErrForbidden = errors.New("Forbidden")
var ErrUnauthorized = errors.New("Unauthorized")

// ErrAccountNumberExhausted is fatal: no free account number was found within the attempt budget.
var ErrAccountNumberExhausted = errors.New("Failed to generate a unique account number")

type ErrorKind string

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindInvalidAmount          ErrorKind = "INVALID_AMOUNT"
	KindInvalidInput           ErrorKind = "INVALID_INPUT"
	KindInsufficientBalance    ErrorKind = "INSUFFICIENT_BALANCE"
	KindLoanEditNotAllowed     ErrorKind = "LOAN_EDIT_NOT_ALLOWED"
	KindStatusChangeNotAllowed ErrorKind = "STATUS_CHANGE_NOT_ALLOWED"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindConcurrentModification ErrorKind = "CONCURRENT_MODIFICATION"
	KindConflict               ErrorKind = "CONFLICT"
	KindFatal                  ErrorKind = "FATAL"
	KindInternal               ErrorKind = "INTERNAL"
)

// KindOf classifies err for callers that map failures onto a transport.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrLoanNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	case errors.Is(err, ErrLoanEditNotAllowed):
		return KindLoanEditNotAllowed
	case errors.Is(err, ErrStatusChangeNotAllowed):
		return KindStatusChangeNotAllowed
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrConcurrentModification):
		return KindConcurrentModification
	case errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrDuplicateKey):
		return KindConflict
	case errors.Is(err, ErrAccountNumberExhausted):
		return KindFatal
	default:
		return KindInternal
	}
}

// Retryable reports whether the whole operation may be retried by the caller.
func Retryable(err error) bool {
	return KindOf(err) == KindConcurrentModification
}

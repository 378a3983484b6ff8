package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	AccountNotFound        ErrorCode = "account_not_found"
	InvalidReference       ErrorCode = "invalid_reference"
	InsufficientFunds      ErrorCode = "insufficient_funds"
	TransactionTypeMissing ErrorCode = "transaction_type_missing"
	DuplicateTransaction   ErrorCode = "duplicate_transaction"
	InvalidAmount          ErrorCode = "invalid_amount"
	InvalidInput           ErrorCode = "invalid_input"
	InternalError          ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps an error code to the status the handlers respond with.
// TransactionTypeMissing is a fatal misconfiguration, not a caller error.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case AccountNotFound:
		return http.StatusNotFound
	case InvalidReference, InsufficientFunds:
		return http.StatusUnprocessableEntity
	case InvalidAmount, InvalidInput:
		return http.StatusBadRequest
	case DuplicateTransaction:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound           = NewAppError(AccountNotFound, "account not found")
	ErrInsufficientFunds         = NewAppError(InsufficientFunds, "insufficient funds")
	ErrInvalidAmount             = NewAppError(InvalidAmount, "amount must be positive")
	ErrCannotBeginTransaction    = NewAppError(InternalError, "store cannot begin a transaction")
	ErrTransactionTypeMissing    = NewAppError(TransactionTypeMissing, "required transaction type is not registered")
	ErrSameAccountTransfer       = NewAppError(InvalidInput, "source and target accounts must differ")
	ErrInvalidAccountID          = NewAppError(InvalidInput, "account id must be a positive integer")
	ErrInvalidAccountTypeID      = NewAppError(InvalidReference, "account type does not exist")
	ErrNegativeOverdraftLimit    = NewAppError(InvalidInput, "overdraft limit must not be negative")
	ErrOverdraftOnNonChecking    = NewAppError(InvalidInput, "overdraft limit is only valid for checking accounts")
	ErrNegativeInitialBalance    = NewAppError(InvalidAmount, "initial balance must not be negative")
	ErrInitialBalanceOutOfBounds = NewAppError(InvalidAmount, "initial balance exceeds maximum limit")
)

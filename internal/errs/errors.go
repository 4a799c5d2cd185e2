package errs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")

	ErrMissingAccountType  = errors.New("missing_account_type")
	ErrInvalidCategoryType = errors.New("invalid_category_type")
	ErrHangingTransactions = errors.New("hanging_transactions")
	ErrPeriodResolution    = errors.New("period_resolution_failure")
)

// MissingAccountTypeError is returned when an account is saved without a type.
type MissingAccountTypeError struct {
	AccountID uuid.UUID
}

func (e *MissingAccountTypeError) Error() string {
	return fmt.Sprintf("account %s: account type is required", e.AccountID)
}

func (e *MissingAccountTypeError) Unwrap() error { return ErrMissingAccountType }

// InvalidCategoryTypeError is returned when the attached category belongs to another account type.
type InvalidCategoryTypeError struct {
	AccountID    uuid.UUID
	AccountType  string
	CategoryType string
}

func (e *InvalidCategoryTypeError) Error() string {
	return fmt.Sprintf("account %s: category type %s does not match account type %s", e.AccountID, e.CategoryType, e.AccountType)
}

func (e *InvalidCategoryTypeError) Unwrap() error { return ErrInvalidCategoryType }

// HangingTransactionsError is returned when deleting an account whose closing balance is not zero.
type HangingTransactionsError struct {
	AccountID uuid.UUID
	Balance   decimal.Decimal
}

func (e *HangingTransactionsError) Error() string {
	return fmt.Sprintf("account %s has a closing balance of %s", e.AccountID, e.Balance.String())
}

func (e *HangingTransactionsError) Unwrap() error { return ErrHangingTransactions }

// PeriodResolutionError is returned when no reporting period exists for the requested year.
// Year is 0 when the caller relied on a current period that the context does not carry.
type PeriodResolutionError struct {
	EntityID uuid.UUID
	Year     int
}

func (e *PeriodResolutionError) Error() string {
	if e.Year == 0 {
		return fmt.Sprintf("entity %s: no current reporting period", e.EntityID)
	}
	return fmt.Sprintf("entity %s: no reporting period for year %d", e.EntityID, e.Year)
}

func (e *PeriodResolutionError) Unwrap() error { return ErrPeriodResolution }

// Package account implements the account lifecycle rules: validation before any
// write, code assignment from the account type's band, and deletion only at a zero balance.
package account

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bookkeeping/internal/errs"
	"github.com/tinoosan/bookkeeping/internal/ledger"
)

// maxCodeAttempts bounds recount-and-retry when a concurrent create takes the same code.
const maxCodeAttempts = 3

type Repo interface {
	GetAccount(ctx context.Context, entityID, accountID uuid.UUID) (ledger.Account, error)
	GetCategory(ctx context.Context, entityID, categoryID uuid.UUID) (ledger.Category, error)
	// ListAccounts returns the entity's live accounts ordered by code.
	ListAccounts(ctx context.Context, entityID uuid.UUID) ([]ledger.Account, error)
	// CountByType counts the entity's accounts of type t; soft-deleted ones too when includeDeleted.
	CountByType(ctx context.Context, entityID uuid.UUID, t ledger.AccountType, includeDeleted bool) (int, error)
}

// Writer persists accounts. Create and Update report a taken (entity, type, code) as errs.ErrConflict.
type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	DeleteAccount(ctx context.Context, entityID, accountID uuid.UUID) error
}

// CodeBase resolves the first code of an account type's band and the band's width.
type CodeBase interface {
	BaseOffset(t ledger.AccountType) int
	BandSize(t ledger.AccountType) int
}

// Balances is the closing-balance source consulted before deletion.
type Balances interface {
	ClosingBalance(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, end *time.Time) (decimal.Decimal, error)
}

type Service interface {
	Validate(ctx context.Context, rc ledger.ReportingContext, a ledger.Account) (ledger.Account, error)
	Create(ctx context.Context, rc ledger.ReportingContext, a ledger.Account) (ledger.Account, error)
	Get(ctx context.Context, rc ledger.ReportingContext, accountID uuid.UUID) (ledger.Account, error)
	List(ctx context.Context, rc ledger.ReportingContext, types []ledger.AccountType) ([]ledger.Account, error)
	Update(ctx context.Context, rc ledger.ReportingContext, a ledger.Account) (ledger.Account, error)
	Delete(ctx context.Context, rc ledger.ReportingContext, accountID uuid.UUID) error
}

type service struct {
	repo     Repo
	writer   Writer
	codes    CodeBase
	balances Balances
}

func New(repo Repo, writer Writer, codes CodeBase, balances Balances) Service {
	return &service{repo: repo, writer: writer, codes: codes, balances: balances}
}

// Validate normalizes a and checks it against the invariants that must hold before
// it is persisted. It never writes. The returned account carries the defaults applied.
func (s *service) Validate(ctx context.Context, rc ledger.ReportingContext, a ledger.Account) (ledger.Account, error) {
	if a.Type == "" {
		return ledger.Account{}, &errs.MissingAccountTypeError{AccountID: a.ID}
	}
	if !a.Type.Valid() {
		return ledger.Account{}, fmt.Errorf("%w: unknown account type %q", errs.ErrInvalid, a.Type)
	}
	a.Name = capitalize(strings.TrimSpace(a.Name))
	if a.Name == "" {
		return ledger.Account{}, fmt.Errorf("%w: name is required", errs.ErrInvalid)
	}
	a.EntityID = rc.EntityID
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if a.Currency == "" {
		a.Currency = strings.ToUpper(rc.Currency)
	}
	if _, err := money.ParseCurr(a.Currency); err != nil {
		return ledger.Account{}, fmt.Errorf("%w: currency %q", errs.ErrInvalid, a.Currency)
	}
	if a.HasCategory() {
		cat, err := s.repo.GetCategory(ctx, rc.EntityID, *a.CategoryID)
		if errors.Is(err, errs.ErrNotFound) {
			return ledger.Account{}, fmt.Errorf("%w: category %s not found", errs.ErrInvalid, *a.CategoryID)
		}
		if err != nil {
			return ledger.Account{}, err
		}
		if cat.Type != a.Type {
			return ledger.Account{}, &errs.InvalidCategoryTypeError{AccountID: a.ID, AccountType: string(a.Type), CategoryType: string(cat.Type)}
		}
	} else {
		a.CategoryID = nil
	}
	return a, nil
}

func (s *service) Create(ctx context.Context, rc ledger.ReportingContext, a ledger.Account) (ledger.Account, error) {
	if rc.EntityID == uuid.Nil {
		return ledger.Account{}, errs.ErrInvalid
	}
	a, err := s.Validate(ctx, rc, a)
	if err != nil {
		return ledger.Account{}, err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Deleted = false
	return s.writeWithCode(ctx, a, a.Code == 0, s.writer.CreateAccount)
}

func (s *service) Get(ctx context.Context, rc ledger.ReportingContext, accountID uuid.UUID) (ledger.Account, error) {
	if rc.EntityID == uuid.Nil || accountID == uuid.Nil {
		return ledger.Account{}, errs.ErrInvalid
	}
	acc, err := s.repo.GetAccount(ctx, rc.EntityID, accountID)
	if err != nil {
		return ledger.Account{}, err
	}
	if acc.Deleted {
		return ledger.Account{}, errs.ErrNotFound
	}
	return acc, nil
}

// List returns the chart of live accounts in code order, narrowed to types when any are given.
func (s *service) List(ctx context.Context, rc ledger.ReportingContext, types []ledger.AccountType) ([]ledger.Account, error) {
	if rc.EntityID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	all, err := s.repo.ListAccounts(ctx, rc.EntityID)
	if err != nil || len(types) == 0 {
		return all, err
	}
	out := make([]ledger.Account, 0, len(all))
	for _, a := range all {
		if slices.Contains(types, a.Type) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Update applies changes to name, type, category and currency. The code is kept
// unless the type changes or no code was ever assigned, in which case a new code
// is drawn from the type's band.
func (s *service) Update(ctx context.Context, rc ledger.ReportingContext, a ledger.Account) (ledger.Account, error) {
	current, err := s.Get(ctx, rc, a.ID)
	if err != nil {
		return ledger.Account{}, err
	}
	a, err = s.Validate(ctx, rc, a)
	if err != nil {
		return ledger.Account{}, err
	}
	a.Code = current.Code
	return s.writeWithCode(ctx, a, current.Code == 0 || current.Type != a.Type, s.writer.UpdateAccount)
}

// Delete soft-deletes the account once its closing balance as of now is exactly zero.
func (s *service) Delete(ctx context.Context, rc ledger.ReportingContext, accountID uuid.UUID) error {
	acc, err := s.Get(ctx, rc, accountID)
	if err != nil {
		return err
	}
	closing, err := s.balances.ClosingBalance(ctx, rc, acc, nil)
	if err != nil {
		return err
	}
	if !closing.IsZero() {
		return &errs.HangingTransactionsError{AccountID: acc.ID, Balance: closing}
	}
	return s.writer.DeleteAccount(ctx, rc.EntityID, acc.ID)
}

// NextCode returns base(t) + count of the entity's accounts of t, deleted included, + 1.
// It fails with errs.ErrConflict once that code would run into the next type's band.
func (s *service) NextCode(ctx context.Context, entityID uuid.UUID, t ledger.AccountType) (int, error) {
	n, err := s.repo.CountByType(ctx, entityID, t, true)
	if err != nil {
		return 0, fmt.Errorf("count %s accounts: %w", t, err)
	}
	if size := s.codes.BandSize(t); n+1 >= size {
		return 0, fmt.Errorf("%w: code band for %s is full (%d codes)", errs.ErrConflict, t, size-1)
	}
	return s.codes.BaseOffset(t) + n + 1, nil
}

func (s *service) writeWithCode(ctx context.Context, a ledger.Account, assign bool, write func(context.Context, ledger.Account) (ledger.Account, error)) (ledger.Account, error) {
	if !assign {
		return write(ctx, a)
	}
	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.NextCode(ctx, a.EntityID, a.Type)
		if err != nil {
			return ledger.Account{}, err
		}
		a.Code = code
		saved, err := write(ctx, a)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, errs.ErrConflict) {
			return ledger.Account{}, err
		}
		lastErr = err
	}
	return ledger.Account{}, fmt.Errorf("assign code for %s: %w", a.Type, lastErr)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

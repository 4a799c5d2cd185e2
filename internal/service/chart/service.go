// Package chart aggregates account balances into categorized statement sections.
package chart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bookkeeping/internal/errs"
	"github.com/tinoosan/bookkeeping/internal/ledger"
	"github.com/tinoosan/bookkeeping/internal/service/balance"
)

// Repo defines the reads needed to walk the chart of accounts.
type Repo interface {
	// AccountsByTypes returns the entity's live accounts of the given types ordered by code.
	AccountsByTypes(ctx context.Context, entityID uuid.UUID, types []ledger.AccountType) ([]ledger.Account, error)
	GetCategory(ctx context.Context, entityID, categoryID uuid.UUID) (ledger.Category, error)
}

// LabelLookup resolves the display label of an account type.
type LabelLookup interface {
	AccountTypeLabel(t ledger.AccountType) string
}

// Periods is the subset of the period resolver used for date defaults.
type Periods interface {
	Now() time.Time
	PeriodStart(d time.Time) time.Time
}

// AccountSnapshot is an account with the balances computed for the report.
type AccountSnapshot struct {
	ID             uuid.UUID          `json:"id"`
	Code           int                `json:"code"`
	Name           string             `json:"name"`
	Type           ledger.AccountType `json:"account_type"`
	CategoryID     *uuid.UUID         `json:"category_id,omitempty"`
	Currency       string             `json:"currency"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
	CurrentBalance decimal.Decimal    `json:"current_balance"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
}

// SectionCategory is one group of a section. ID is uuid.Nil for the account-type fallback group.
type SectionCategory struct {
	ID       uuid.UUID         `json:"id"`
	Accounts []AccountSnapshot `json:"accounts"`
	Total    decimal.Decimal   `json:"total"`
}

// SectionBalances is the result of aggregating accounts by category display name.
// Order lists the category names in first-inserted order.
type SectionBalances struct {
	Total      decimal.Decimal             `json:"sectionTotal"`
	Categories map[string]*SectionCategory `json:"sectionCategories"`
	Order      []string                    `json:"order"`
}

// Service exposes chart-level aggregations.
type Service interface {
	SectionBalances(ctx context.Context, rc ledger.ReportingContext, types []ledger.AccountType, start, end *time.Time) (SectionBalances, error)
	Movement(ctx context.Context, rc ledger.ReportingContext, types []ledger.AccountType, start, end *time.Time) (decimal.Decimal, error)
}

type service struct {
	repo     Repo
	balances balance.Service
	labels   LabelLookup
	periods  Periods
}

func New(repo Repo, balances balance.Service, labels LabelLookup, periods Periods) Service {
	return &service{repo: repo, balances: balances, labels: labels, periods: periods}
}

// SectionBalances computes every matching account's balance breakdown and groups the
// accounts with a non-zero closing balance under their category name, falling back
// to the account type label. Zero-balance accounts are left out entirely.
func (s *service) SectionBalances(ctx context.Context, rc ledger.ReportingContext, types []ledger.AccountType, start, end *time.Time) (SectionBalances, error) {
	out := SectionBalances{Total: decimal.Zero, Categories: map[string]*SectionCategory{}, Order: []string{}}
	if len(types) == 0 {
		return out, nil
	}
	accounts, err := s.repo.AccountsByTypes(ctx, rc.EntityID, types)
	if err != nil {
		return SectionBalances{}, fmt.Errorf("list accounts: %w", err)
	}
	categories := map[uuid.UUID]ledger.Category{}
	for _, acc := range accounts {
		b, err := s.balances.Breakdown(ctx, rc, acc, start, end)
		if err != nil {
			return SectionBalances{}, err
		}
		if b.Closing.IsZero() {
			continue
		}
		name, id, err := s.groupFor(ctx, rc, acc, categories)
		if err != nil {
			return SectionBalances{}, err
		}
		// groups are keyed by display name as already inserted; the first id wins
		group, ok := out.Categories[name]
		if !ok {
			group = &SectionCategory{ID: id, Accounts: []AccountSnapshot{}, Total: decimal.Zero}
			out.Categories[name] = group
			out.Order = append(out.Order, name)
		}
		group.Accounts = append(group.Accounts, AccountSnapshot{
			ID:             acc.ID,
			Code:           acc.Code,
			Name:           acc.Name,
			Type:           acc.Type,
			CategoryID:     acc.CategoryID,
			Currency:       acc.Currency,
			OpeningBalance: b.Opening,
			CurrentBalance: b.Current,
			ClosingBalance: b.Closing,
		})
		group.Total = group.Total.Add(b.Closing)
		out.Total = out.Total.Add(b.Closing)
	}
	return out, nil
}

// Movement is the change in section total between start and end, sign inverted:
// -(total as of end - total as of start), each total taken from its own period start.
func (s *service) Movement(ctx context.Context, rc ledger.ReportingContext, types []ledger.AccountType, start, end *time.Time) (decimal.Decimal, error) {
	to := s.periods.Now()
	if end != nil {
		to = *end
	}
	from := s.periods.PeriodStart(to)
	if start != nil {
		from = *start
	}
	fromStart, toStart := s.periods.PeriodStart(from), s.periods.PeriodStart(to)
	previous, err := s.SectionBalances(ctx, rc, types, &fromStart, &from)
	if err != nil {
		return decimal.Zero, err
	}
	current, err := s.SectionBalances(ctx, rc, types, &toStart, &to)
	if err != nil {
		return decimal.Zero, err
	}
	return current.Total.Sub(previous.Total).Neg(), nil
}

func (s *service) groupFor(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, cache map[uuid.UUID]ledger.Category) (string, uuid.UUID, error) {
	if !acc.HasCategory() {
		return s.labels.AccountTypeLabel(acc.Type), uuid.Nil, nil
	}
	cid := *acc.CategoryID
	cat, ok := cache[cid]
	if !ok {
		var err error
		cat, err = s.repo.GetCategory(ctx, rc.EntityID, cid)
		if errors.Is(err, errs.ErrNotFound) {
			return s.labels.AccountTypeLabel(acc.Type), uuid.Nil, nil
		}
		if err != nil {
			return "", uuid.Nil, fmt.Errorf("category %s: %w", cid, err)
		}
		cache[cid] = cat
	}
	return cat.Name, cat.ID, nil
}

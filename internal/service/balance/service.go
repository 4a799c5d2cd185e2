// Package balance derives opening, current-period and closing balances of an
// account, and its transaction history, from persisted balance rows and ledger postings.
package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bookkeeping/internal/ledger"
)

// LedgerQuery reads posted ledger rows.
type LedgerQuery interface {
	// NetContribution is the signed functional-currency sum of postings to the account within [start, end].
	NetContribution(ctx context.Context, accountID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	// TransactionsTouching lists distinct transactions with a posting to or from the account within [start, end].
	TransactionsTouching(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]ledger.TransactionRef, error)
	// Contribution is the account's signed contribution to a single transaction.
	Contribution(ctx context.Context, accountID, transactionID uuid.UUID) (decimal.Decimal, error)
}

// BalanceStore reads persisted opening balance rows.
type BalanceStore interface {
	BalancesFor(ctx context.Context, accountID, periodID uuid.UUID) ([]ledger.Balance, error)
}

// Periods maps dates to reporting periods.
type Periods interface {
	Now() time.Time
	PeriodStart(d time.Time) time.Time
	YearOf(d time.Time) int
	Period(ctx context.Context, rc ledger.ReportingContext, year *int) (ledger.ReportingPeriod, error)
}

// Breakdown is an account's balance as of End: the opening balance of End's year
// plus the movement between Start and End.
type Breakdown struct {
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
	Opening decimal.Decimal `json:"opening_balance"`
	Current decimal.Decimal `json:"current_balance"`
	Closing decimal.Decimal `json:"closing_balance"`
}

// TransactionLine is a transaction touching the account and the account's absolute share of it.
type TransactionLine struct {
	ledger.TransactionRef
	Amount decimal.Decimal `json:"amount"`
}

// Statement is the transaction history of an account over a date range.
type Statement struct {
	Total        decimal.Decimal   `json:"total"`
	Transactions []TransactionLine `json:"transactions"`
}

// Service exposes the balance computations of a single account.
type Service interface {
	OpeningBalance(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, year *int) (decimal.Decimal, error)
	CurrentBalance(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, start, end *time.Time) (decimal.Decimal, error)
	ClosingBalance(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, end *time.Time) (decimal.Decimal, error)
	Breakdown(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, start, end *time.Time) (Breakdown, error)
	Transactions(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, start, end *time.Time) (Statement, error)
}

type service struct {
	ledger   LedgerQuery
	balances BalanceStore
	periods  Periods
}

func New(lq LedgerQuery, bs BalanceStore, periods Periods) Service {
	return &service{ledger: lq, balances: bs, periods: periods}
}

// OpeningBalance sums the account's balance rows for the period of year (or the
// current period when year is nil), signed by balance type and normalized by exchange rate.
func (s *service) OpeningBalance(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, year *int) (decimal.Decimal, error) {
	p, err := s.periods.Period(ctx, rc, year)
	if err != nil {
		return decimal.Zero, err
	}
	rows, err := s.balances.BalancesFor(ctx, acc.ID, p.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("opening balances for %s: %w", acc.ID, err)
	}
	total := decimal.Zero
	for _, b := range rows {
		total = total.Add(b.Signed())
	}
	return total, nil
}

// CurrentBalance is the net posted movement on the account within [start, end].
// end defaults to now and start to the beginning of end's period.
func (s *service) CurrentBalance(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, start, end *time.Time) (decimal.Decimal, error) {
	from, to := s.window(start, end)
	net, err := s.ledger.NetContribution(ctx, acc.ID, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("current balance for %s: %w", acc.ID, err)
	}
	return net, nil
}

// ClosingBalance is the balance as of end: opening balance of end's year plus the
// movement from that period's start to end.
func (s *service) ClosingBalance(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, end *time.Time) (decimal.Decimal, error) {
	b, err := s.Breakdown(ctx, rc, acc, nil, end)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Closing, nil
}

// Breakdown composes opening (year of end) and current (start..end) into a closing balance.
// With a nil start the result is exactly ClosingBalance(end).
func (s *service) Breakdown(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, start, end *time.Time) (Breakdown, error) {
	from, to := s.window(start, end)
	year := s.periods.YearOf(to)
	opening, err := s.OpeningBalance(ctx, rc, acc, &year)
	if err != nil {
		return Breakdown{}, err
	}
	current, err := s.CurrentBalance(ctx, rc, acc, &from, &to)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{Start: from, End: to, Opening: opening, Current: current, Closing: opening.Add(current)}, nil
}

// Transactions lists the transactions touching the account in [start, end] with the
// absolute value of the account's contribution to each, and their running total.
func (s *service) Transactions(ctx context.Context, rc ledger.ReportingContext, acc ledger.Account, start, end *time.Time) (Statement, error) {
	from, to := s.window(start, end)
	refs, err := s.ledger.TransactionsTouching(ctx, acc.ID, from, to)
	if err != nil {
		return Statement{}, fmt.Errorf("transactions for %s: %w", acc.ID, err)
	}
	st := Statement{Total: decimal.Zero, Transactions: make([]TransactionLine, 0, len(refs))}
	for _, ref := range refs {
		c, err := s.ledger.Contribution(ctx, acc.ID, ref.TransactionID)
		if err != nil {
			return Statement{}, fmt.Errorf("contribution of %s to %s: %w", acc.ID, ref.TransactionID, err)
		}
		amt := c.Abs()
		st.Total = st.Total.Add(amt)
		st.Transactions = append(st.Transactions, TransactionLine{TransactionRef: ref, Amount: amt})
	}
	return st, nil
}

func (s *service) window(start, end *time.Time) (time.Time, time.Time) {
	to := s.periods.Now()
	if end != nil {
		to = *end
	}
	from := s.periods.PeriodStart(to)
	if start != nil {
		from = *start
	}
	return from, to
}

package balance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bookkeeping/internal/errs"
	"github.com/tinoosan/bookkeeping/internal/ledger"
	"github.com/tinoosan/bookkeeping/internal/period"
	"github.com/tinoosan/bookkeeping/internal/service/balance"
	"github.com/tinoosan/bookkeeping/internal/storage/memory"
)

var now = time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC)

type books struct {
	store  *memory.Store
	svc    balance.Service
	rc     ledger.ReportingContext
	period ledger.ReportingPeriod
}

func newBooks(t *testing.T) books {
	t.Helper()
	store := memory.New()
	ent := ledger.Entity{ID: uuid.New(), Name: "Acme", Currency: "USD"}
	p := ledger.ReportingPeriod{ID: uuid.New(), EntityID: ent.ID, Year: 2025, Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store.SeedEntity(ent)
	store.SeedPeriod(p)
	resolver := period.New(store, store, func() time.Time { return now })
	rc, err := resolver.Context(context.Background(), ent.ID)
	require.NoError(t, err)
	require.NotNil(t, rc.CurrentPeriod)
	return books{store: store, svc: balance.New(store, store, resolver), rc: rc, period: p}
}

func (b books) account(typ ledger.AccountType) ledger.Account {
	a := ledger.Account{ID: uuid.New(), EntityID: b.rc.EntityID, Name: string(typ), Type: typ, Currency: "USD"}
	b.store.SeedAccount(a)
	return a
}

func (b books) opening(acc ledger.Account, typ ledger.BalanceType, amount, rate string) {
	b.store.SeedBalance(ledger.Balance{ID: uuid.New(), AccountID: acc.ID, PeriodID: b.period.ID, Type: typ, Amount: d(amount), ExchangeRate: d(rate)})
}

// post records a two-sided transaction: debit to dr, credit to cr.
func (b books) post(dr, cr ledger.Account, amount string, on time.Time) uuid.UUID {
	tx := ledger.Transaction{ID: uuid.New(), EntityID: b.rc.EntityID, Type: "JNL", Date: on}
	b.store.SeedTransaction(tx)
	one := decimal.NewFromInt(1)
	b.store.SeedPosting(ledger.Posting{ID: uuid.New(), TransactionID: tx.ID, PostingDate: on, PostAccount: dr.ID, FolioAccount: cr.ID, Side: ledger.SideDebit, Amount: d(amount), Rate: one})
	b.store.SeedPosting(ledger.Posting{ID: uuid.New(), TransactionID: tx.ID, PostingDate: on, PostAccount: cr.ID, FolioAccount: dr.ID, Side: ledger.SideCredit, Amount: d(amount), Rate: one})
	return tx.ID
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(m time.Month, dd int) time.Time { return time.Date(2025, m, dd, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

func TestClosingBalance_NoRowsIsZero(t *testing.T) {
	b := newBooks(t)
	acc := b.account(ledger.AccountTypeBank)
	closing, err := b.svc.ClosingBalance(context.Background(), b.rc, acc, nil)
	require.NoError(t, err)
	assert.True(t, closing.IsZero(), closing.String())
}

func TestClosingBalance_OpeningLessCredit(t *testing.T) {
	b := newBooks(t)
	bank := b.account(ledger.AccountTypeBank)
	expense := b.account(ledger.AccountTypeOperatingExpense)
	b.opening(bank, ledger.BalanceTypeDebit, "100", "1")
	b.post(expense, bank, "30", day(time.March, 1))

	bd, err := b.svc.Breakdown(context.Background(), b.rc, bank, nil, nil)
	require.NoError(t, err)
	assert.True(t, d("100").Equal(bd.Opening), bd.Opening.String())
	assert.True(t, d("-30").Equal(bd.Current), bd.Current.String())
	assert.True(t, d("70").Equal(bd.Closing), bd.Closing.String())
	assert.Equal(t, day(time.January, 1), bd.Start)
	assert.Equal(t, now, bd.End)

	closing, err := b.svc.ClosingBalance(context.Background(), b.rc, bank, nil)
	require.NoError(t, err)
	assert.True(t, d("70").Equal(closing))
}

func TestBreakdown_Composition(t *testing.T) {
	b := newBooks(t)
	bank := b.account(ledger.AccountTypeBank)
	sales := b.account(ledger.AccountTypeOperatingRevenue)
	b.opening(bank, ledger.BalanceTypeDebit, "500", "1")
	b.post(bank, sales, "120.50", day(time.February, 10))
	b.post(bank, sales, "80", day(time.April, 2))
	b.post(sales, bank, "15.25", day(time.May, 20))

	ctx := context.Background()
	windows := []struct{ start, end *time.Time }{
		{nil, nil},
		{nil, ptr(day(time.March, 31))},
		{ptr(day(time.March, 1)), ptr(day(time.May, 31))},
		{ptr(day(time.April, 2)), ptr(day(time.April, 2))},
	}
	for _, w := range windows {
		bd, err := b.svc.Breakdown(ctx, b.rc, bank, w.start, w.end)
		require.NoError(t, err)
		assert.True(t, bd.Opening.Add(bd.Current).Equal(bd.Closing))

		if w.start == nil {
			closing, err := b.svc.ClosingBalance(ctx, b.rc, bank, w.end)
			require.NoError(t, err)
			assert.True(t, closing.Equal(bd.Closing))
		}
	}

	closing, err := b.svc.ClosingBalance(ctx, b.rc, bank, ptr(day(time.March, 31)))
	require.NoError(t, err)
	assert.True(t, d("620.5").Equal(closing), closing.String())

	current, err := b.svc.CurrentBalance(ctx, b.rc, bank, ptr(day(time.March, 1)), ptr(day(time.May, 31)))
	require.NoError(t, err)
	assert.True(t, d("64.75").Equal(current), current.String())
}

func TestOpeningBalance_SignAndRate(t *testing.T) {
	b := newBooks(t)
	loan := b.account(ledger.AccountTypeNonCurrentLiability)
	b.opening(loan, ledger.BalanceTypeCredit, "200", "2")
	b.opening(loan, ledger.BalanceTypeDebit, "10", "0")

	opening, err := b.svc.OpeningBalance(context.Background(), b.rc, loan, nil)
	require.NoError(t, err)
	assert.True(t, d("-90").Equal(opening), opening.String())

	opening, err = b.svc.OpeningBalance(context.Background(), b.rc, loan, ptr(2025))
	require.NoError(t, err)
	assert.True(t, d("-90").Equal(opening))
}

func TestOpeningBalance_PeriodResolution(t *testing.T) {
	b := newBooks(t)
	acc := b.account(ledger.AccountTypeBank)

	_, err := b.svc.OpeningBalance(context.Background(), b.rc, acc, ptr(2024))
	var pe *errs.PeriodResolutionError
	require.True(t, errors.As(err, &pe), err)
	assert.Equal(t, 2024, pe.Year)

	noPeriod := b.rc
	noPeriod.CurrentPeriod = nil
	_, err = b.svc.OpeningBalance(context.Background(), noPeriod, acc, nil)
	assert.ErrorIs(t, err, errs.ErrPeriodResolution)

	_, err = b.svc.ClosingBalance(context.Background(), b.rc, acc, ptr(day(time.March, 1).AddDate(-1, 0, 0)))
	assert.ErrorIs(t, err, errs.ErrPeriodResolution)
}

func TestTransactions_PostAndFolio(t *testing.T) {
	b := newBooks(t)
	bank := b.account(ledger.AccountTypeBank)
	sales := b.account(ledger.AccountTypeOperatingRevenue)
	rent := b.account(ledger.AccountTypeOverheadExpense)
	first := b.post(bank, sales, "100", day(time.February, 1))
	second := b.post(rent, bank, "40", day(time.March, 1))
	b.post(rent, sales, "5", day(time.March, 2))
	b.post(bank, sales, "1", day(time.December, 1).AddDate(-1, 0, 0))

	st, err := b.svc.Transactions(context.Background(), b.rc, bank, nil, nil)
	require.NoError(t, err)
	require.Len(t, st.Transactions, 2)
	assert.Equal(t, first, st.Transactions[0].TransactionID)
	assert.Equal(t, second, st.Transactions[1].TransactionID)
	assert.Equal(t, "JNL", st.Transactions[1].Type)
	assert.True(t, d("100").Equal(st.Transactions[0].Amount))
	assert.True(t, d("40").Equal(st.Transactions[1].Amount))
	assert.True(t, d("140").Equal(st.Total))

	st, err = b.svc.Transactions(context.Background(), b.rc, bank, ptr(day(time.February, 2)), nil)
	require.NoError(t, err)
	require.Len(t, st.Transactions, 1)
	assert.Equal(t, second, st.Transactions[0].TransactionID)
}

// Package storage holds what the storage backends share, currently the dev seed fixture.
package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bookkeeping/internal/ledger"
)

// Fixture is a complete set of books that a backend can load in one go.
type Fixture struct {
	Entity       ledger.Entity
	Periods      []ledger.ReportingPeriod
	Categories   []ledger.Category
	Accounts     []ledger.Account
	Balances     []ledger.Balance
	Transactions []ledger.Transaction
	Postings     []ledger.Posting
}

// AccountByName returns the fixture account with the given name.
func (f Fixture) AccountByName(name string) (ledger.Account, bool) {
	for _, a := range f.Accounts {
		if a.Name == name {
			return a, true
		}
	}
	return ledger.Account{}, false
}

// DevFixture builds a small set of books for the year of now: a bank account with an
// opening balance, a receivable, a revenue account and one cash sale posted in both directions.
func DevFixture(now time.Time) Fixture {
	ent := ledger.Entity{ID: uuid.New(), Name: "Demo Trading", Currency: "USD"}
	year := now.Year()
	period := ledger.ReportingPeriod{ID: uuid.New(), EntityID: ent.ID, Year: year, Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)}
	sales := ledger.Category{ID: uuid.New(), EntityID: ent.ID, Name: "Sales", Type: ledger.AccountTypeOperatingRevenue}
	salesID := sales.ID

	bank := ledger.Account{ID: uuid.New(), EntityID: ent.ID, Code: 301, Name: "Bank Account", Type: ledger.AccountTypeBank, Currency: "USD"}
	receivable := ledger.Account{ID: uuid.New(), EntityID: ent.ID, Code: 501, Name: "Trade Debtors", Type: ledger.AccountTypeReceivable, Currency: "USD"}
	revenue := ledger.Account{ID: uuid.New(), EntityID: ent.ID, Code: 4001, Name: "Product Sales", Type: ledger.AccountTypeOperatingRevenue, CategoryID: &salesID, Currency: "USD"}

	opening := ledger.Balance{ID: uuid.New(), AccountID: bank.ID, PeriodID: period.ID, Type: ledger.BalanceTypeDebit, Amount: decimal.NewFromInt(1000), ExchangeRate: decimal.NewFromInt(1)}

	saleDate := period.Start.AddDate(0, 0, 14)
	sale := ledger.Transaction{ID: uuid.New(), EntityID: ent.ID, Type: "CS", Date: saleDate, Reference: "CS-0001", Narration: "Cash sale"}
	amount := decimal.NewFromInt(250)
	one := decimal.NewFromInt(1)
	postings := []ledger.Posting{
		{ID: uuid.New(), TransactionID: sale.ID, PostingDate: saleDate, PostAccount: bank.ID, FolioAccount: revenue.ID, Side: ledger.SideDebit, Amount: amount, Rate: one},
		{ID: uuid.New(), TransactionID: sale.ID, PostingDate: saleDate, PostAccount: revenue.ID, FolioAccount: bank.ID, Side: ledger.SideCredit, Amount: amount, Rate: one},
	}

	return Fixture{
		Entity:       ent,
		Periods:      []ledger.ReportingPeriod{period},
		Categories:   []ledger.Category{sales},
		Accounts:     []ledger.Account{bank, receivable, revenue},
		Balances:     []ledger.Balance{opening},
		Transactions: []ledger.Transaction{sale},
		Postings:     postings,
	}
}

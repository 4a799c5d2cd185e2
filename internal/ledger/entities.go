package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side represents the accounting position of a posting.
type Side string

const (
	// SideDebit records a value on the debit side of an account.
	SideDebit Side = "debit"
	// SideCredit records a value on the credit side of an account.
	SideCredit Side = "credit"
)

// BalanceType is the recorded sign convention of a persisted opening balance row.
type BalanceType string

const (
	BalanceTypeDebit  BalanceType = "DEBIT"
	BalanceTypeCredit BalanceType = "CREDIT"
)

// AccountType enumerates the classification of an account. It determines the
// reporting section an account lands in and the band its code is drawn from.
type AccountType string

const (
	AccountTypeNonCurrentAsset     AccountType = "NON_CURRENT_ASSET"
	AccountTypeContraAsset         AccountType = "CONTRA_ASSET"
	AccountTypeInventory           AccountType = "INVENTORY"
	AccountTypeBank                AccountType = "BANK"
	AccountTypeCurrentAsset        AccountType = "CURRENT_ASSET"
	AccountTypeReceivable          AccountType = "RECEIVABLE"
	AccountTypeNonCurrentLiability AccountType = "NON_CURRENT_LIABILITY"
	AccountTypeControl             AccountType = "CONTROL"
	AccountTypeCurrentLiability    AccountType = "CURRENT_LIABILITY"
	AccountTypePayable             AccountType = "PAYABLE"
	AccountTypeReconciliation      AccountType = "RECONCILIATION"
	AccountTypeEquity              AccountType = "EQUITY"
	AccountTypeOperatingRevenue    AccountType = "OPERATING_REVENUE"
	AccountTypeOperatingExpense    AccountType = "OPERATING_EXPENSE"
	AccountTypeNonOperatingRevenue AccountType = "NON_OPERATING_REVENUE"
	AccountTypeDirectExpense       AccountType = "DIRECT_EXPENSE"
	AccountTypeOverheadExpense     AccountType = "OVERHEAD_EXPENSE"
	AccountTypeOtherExpense        AccountType = "OTHER_EXPENSE"
)

// AccountTypes lists every account type in chart order.
var AccountTypes = []AccountType{
	AccountTypeNonCurrentAsset,
	AccountTypeContraAsset,
	AccountTypeInventory,
	AccountTypeBank,
	AccountTypeCurrentAsset,
	AccountTypeReceivable,
	AccountTypeNonCurrentLiability,
	AccountTypeControl,
	AccountTypeCurrentLiability,
	AccountTypePayable,
	AccountTypeReconciliation,
	AccountTypeEquity,
	AccountTypeOperatingRevenue,
	AccountTypeOperatingExpense,
	AccountTypeNonOperatingRevenue,
	AccountTypeDirectExpense,
	AccountTypeOverheadExpense,
	AccountTypeOtherExpense,
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	for _, k := range AccountTypes {
		if k == t {
			return true
		}
	}
	return false
}

// ParseAccountType accepts "operating_revenue", "Operating-Revenue" and the canonical form.
func ParseAccountType(s string) (AccountType, bool) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	t := AccountType(norm)
	return t, t.Valid()
}

// Entity is the owner of a set of books. Its currency is the functional
// (reporting) currency every balance is normalized to.
type Entity struct {
	ID       uuid.UUID
	Name     string
	Currency string
}

// ReportingPeriod is a calendar-year-bounded accounting window.
type ReportingPeriod struct {
	ID       uuid.UUID
	EntityID uuid.UUID
	Year     int
	Start    time.Time
}

// ReportingContext carries what used to be ambient state: the entity being
// reported on, its functional currency and its current reporting period.
// CurrentPeriod is nil when the entity has no period for the current year.
type ReportingContext struct {
	EntityID      uuid.UUID
	Currency      string
	CurrentPeriod *ReportingPeriod
}

// Category groups accounts of a single type for reporting.
type Category struct {
	ID       uuid.UUID
	EntityID uuid.UUID
	Name     string
	Type     AccountType
}

// Account is a chart-of-accounts entry.
type Account struct {
	ID       uuid.UUID
	EntityID uuid.UUID
	// Code is assigned once from the account type's band and reassigned only when the type changes.
	Code       int
	Name       string
	Type       AccountType
	CategoryID *uuid.UUID
	Currency   string
	// Deleted marks a soft-deleted account. Soft-deleted accounts still count towards code assignment.
	Deleted bool
}

// HasCategory reports whether a category is attached.
func (a Account) HasCategory() bool { return a.CategoryID != nil && *a.CategoryID != uuid.Nil }

// Balance is a persisted opening balance row for an account in a reporting period.
// Amount is in the account currency; ExchangeRate converts to the functional currency.
type Balance struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	PeriodID     uuid.UUID
	Type         BalanceType
	Amount       decimal.Decimal
	ExchangeRate decimal.Decimal
}

// Transaction is the header of a posted journal transaction.
type Transaction struct {
	ID        uuid.UUID
	EntityID  uuid.UUID
	Type      string
	Date      time.Time
	Reference string
	Narration string
}

// Posting is one ledger row generated from a posted transaction. It moves
// Amount on Side of PostAccount, with FolioAccount as the contra account.
type Posting struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	PostingDate   time.Time
	PostAccount   uuid.UUID
	FolioAccount  uuid.UUID
	Side          Side
	Amount        decimal.Decimal
	Rate          decimal.Decimal
}

// Contribution is the signed, functional-currency value of the posting for its post account:
// debits add, credits subtract. A zero rate is treated as 1.
func (p Posting) Contribution() decimal.Decimal {
	v := normalize(p.Amount, p.Rate)
	if p.Side == SideCredit {
		return v.Neg()
	}
	return v
}

// Signed is the functional-currency value of the balance row, negative when recorded as CREDIT.
func (b Balance) Signed() decimal.Decimal {
	v := normalize(b.Amount, b.ExchangeRate)
	if b.Type == BalanceTypeCredit {
		return v.Neg()
	}
	return v
}

// ConversionScale is the number of decimal places a converted amount is rounded to.
// The Postgres store rounds to the same scale so both backends agree on exact zero.
const ConversionScale = 10

func normalize(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return amount
	}
	return amount.DivRound(rate, ConversionScale)
}

// TransactionRef identifies a transaction touching an account within a date range.
type TransactionRef struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	PostingDate   time.Time `json:"posting_date"`
}

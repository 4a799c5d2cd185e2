package dictionary

import (
	"github.com/tinoosan/bookkeeping/internal/ledger"
	"github.com/tinoosan/bookkeeping/internal/slug"
)

// Section names a financial-statement section and the account types it aggregates.
type Section struct {
	Code  string               `json:"code"`
	Label string               `json:"label"`
	Types []ledger.AccountType `json:"types"`
}

var sections = []Section{
	{Code: "non_current_assets", Label: "Non Current Assets", Types: []ledger.AccountType{ledger.AccountTypeNonCurrentAsset, ledger.AccountTypeContraAsset}},
	{Code: "current_assets", Label: "Current Assets", Types: []ledger.AccountType{ledger.AccountTypeInventory, ledger.AccountTypeBank, ledger.AccountTypeCurrentAsset, ledger.AccountTypeReceivable}},
	{Code: "non_current_liabilities", Label: "Non Current Liabilities", Types: []ledger.AccountType{ledger.AccountTypeNonCurrentLiability}},
	{Code: "current_liabilities", Label: "Current Liabilities", Types: []ledger.AccountType{ledger.AccountTypeControl, ledger.AccountTypeCurrentLiability, ledger.AccountTypePayable, ledger.AccountTypeReconciliation}},
	{Code: "equity", Label: "Equity", Types: []ledger.AccountType{ledger.AccountTypeEquity}},
	{Code: "operating_revenues", Label: "Operating Revenues", Types: []ledger.AccountType{ledger.AccountTypeOperatingRevenue}},
	{Code: "operating_expenses", Label: "Operating Expenses", Types: []ledger.AccountType{ledger.AccountTypeOperatingExpense}},
	{Code: "non_operating_revenues", Label: "Non Operating Revenues", Types: []ledger.AccountType{ledger.AccountTypeNonOperatingRevenue}},
	{Code: "non_operating_expenses", Label: "Non Operating Expenses", Types: []ledger.AccountType{ledger.AccountTypeDirectExpense, ledger.AccountTypeOverheadExpense, ledger.AccountTypeOtherExpense}},
}

// SectionFor returns the section with the given code. The code may also be given
// as its label or in another case ("Current Assets", "current-assets").
func SectionFor(code string) (Section, bool) {
	key := slug.Key(code)
	for _, s := range sections {
		if s.Code == key {
			return s, true
		}
	}
	return Section{}, false
}

// Sections returns all statement sections.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

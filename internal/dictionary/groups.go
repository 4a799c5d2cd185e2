package dictionary

import "github.com/tinoosan/bookkeeping/internal/ledger"

// TypeDef describes one account type: its display label and the base of its code band.
type TypeDef struct {
	Type     ledger.AccountType `json:"type"`
	Label    string             `json:"label"`
	CodeBase int                `json:"code_base"`
}

var curated = []TypeDef{
	{Type: ledger.AccountTypeNonCurrentAsset, Label: "Non Current Asset", CodeBase: 0},
	{Type: ledger.AccountTypeContraAsset, Label: "Contra Asset", CodeBase: 100},
	{Type: ledger.AccountTypeInventory, Label: "Inventory", CodeBase: 200},
	{Type: ledger.AccountTypeBank, Label: "Bank", CodeBase: 300},
	{Type: ledger.AccountTypeCurrentAsset, Label: "Current Asset", CodeBase: 400},
	{Type: ledger.AccountTypeReceivable, Label: "Receivable", CodeBase: 500},
	{Type: ledger.AccountTypeNonCurrentLiability, Label: "Non Current Liability", CodeBase: 2000},
	{Type: ledger.AccountTypeControl, Label: "Control", CodeBase: 2100},
	{Type: ledger.AccountTypeCurrentLiability, Label: "Current Liability", CodeBase: 2200},
	{Type: ledger.AccountTypePayable, Label: "Payable", CodeBase: 2300},
	{Type: ledger.AccountTypeReconciliation, Label: "Reconciliation", CodeBase: 2400},
	{Type: ledger.AccountTypeEquity, Label: "Equity", CodeBase: 3000},
	{Type: ledger.AccountTypeOperatingRevenue, Label: "Operating Revenue", CodeBase: 4000},
	{Type: ledger.AccountTypeOperatingExpense, Label: "Operating Expense", CodeBase: 5000},
	{Type: ledger.AccountTypeNonOperatingRevenue, Label: "Non Operating Revenue", CodeBase: 6000},
	{Type: ledger.AccountTypeDirectExpense, Label: "Direct Expense", CodeBase: 7000},
	{Type: ledger.AccountTypeOverheadExpense, Label: "Overhead Expense", CodeBase: 8000},
	{Type: ledger.AccountTypeOtherExpense, Label: "Other Expense", CodeBase: 9000},
}

// Table is the account-type dictionary built once at startup. It serves both as
// the label lookup and as the code-base lookup. It is read-only after construction.
type Table struct {
	defs  []TypeDef
	byTyp map[ledger.AccountType]TypeDef
}

// New builds the table from the curated defaults, applying label overrides.
// Overrides for unknown types are ignored.
func New(labelOverrides map[ledger.AccountType]string) *Table {
	t := &Table{defs: make([]TypeDef, 0, len(curated)), byTyp: make(map[ledger.AccountType]TypeDef, len(curated))}
	for _, d := range curated {
		if l, ok := labelOverrides[d.Type]; ok && l != "" {
			d.Label = l
		}
		t.defs = append(t.defs, d)
		t.byTyp[d.Type] = d
	}
	return t
}

// AccountTypeLabel returns the human-readable label for t, or the raw type when unknown.
func (t *Table) AccountTypeLabel(typ ledger.AccountType) string {
	if d, ok := t.byTyp[typ]; ok {
		return d.Label
	}
	return string(typ)
}

// BaseOffset returns the first code of t's band.
func (t *Table) BaseOffset(typ ledger.AccountType) int {
	return t.byTyp[typ].CodeBase
}

// lastBandSize is the width of the highest band, which has no successor.
const lastBandSize = 1000

// BandSize returns how many codes t's band spans: the distance to the next
// higher base. Codes base+1 through base+BandSize-1 belong to t.
func (t *Table) BandSize(typ ledger.AccountType) int {
	base := t.BaseOffset(typ)
	next := -1
	for _, d := range t.defs {
		if d.CodeBase > base && (next < 0 || d.CodeBase < next) {
			next = d.CodeBase
		}
	}
	if next < 0 {
		return lastBandSize
	}
	return next - base
}

// All returns every definition in chart order.
func (t *Table) All() []TypeDef {
	out := make([]TypeDef, len(t.defs))
	copy(out, t.defs)
	return out
}

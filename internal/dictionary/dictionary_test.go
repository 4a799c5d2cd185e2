package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bookkeeping/internal/ledger"
)

func TestTable_CoversEveryAccountType(t *testing.T) {
	tbl := New(nil)
	require.Len(t, tbl.All(), len(ledger.AccountTypes))
	seen := map[int]ledger.AccountType{}
	for _, typ := range ledger.AccountTypes {
		assert.NotEqual(t, string(typ), tbl.AccountTypeLabel(typ), typ)
		base := tbl.BaseOffset(typ)
		if other, dup := seen[base]; dup {
			t.Errorf("%s and %s share code base %d", typ, other, base)
		}
		seen[base] = typ
	}
	assert.Equal(t, 300, tbl.BaseOffset(ledger.AccountTypeBank))
	assert.Equal(t, 9000, tbl.BaseOffset(ledger.AccountTypeOtherExpense))
	assert.Equal(t, "Non Current Asset", tbl.AccountTypeLabel(ledger.AccountTypeNonCurrentAsset))
}

func TestTable_BandSize(t *testing.T) {
	tbl := New(nil)
	assert.Equal(t, 100, tbl.BandSize(ledger.AccountTypeNonCurrentAsset))
	assert.Equal(t, 100, tbl.BandSize(ledger.AccountTypeBank))
	assert.Equal(t, 1500, tbl.BandSize(ledger.AccountTypeReceivable))
	assert.Equal(t, 600, tbl.BandSize(ledger.AccountTypeReconciliation))
	assert.Equal(t, 1000, tbl.BandSize(ledger.AccountTypeOtherExpense))
}

func TestTable_LabelOverrides(t *testing.T) {
	tbl := New(map[ledger.AccountType]string{ledger.AccountTypeBank: "Cash at Bank", ledger.AccountTypeEquity: ""})
	assert.Equal(t, "Cash at Bank", tbl.AccountTypeLabel(ledger.AccountTypeBank))
	assert.Equal(t, "Equity", tbl.AccountTypeLabel(ledger.AccountTypeEquity))
	assert.Equal(t, "MYSTERY", tbl.AccountTypeLabel("MYSTERY"))

	all := tbl.All()
	all[0].Label = "mutated"
	assert.NotEqual(t, "mutated", tbl.All()[0].Label)
}

func TestSections(t *testing.T) {
	covered := map[ledger.AccountType]string{}
	for _, s := range Sections() {
		for _, typ := range s.Types {
			if prev, ok := covered[typ]; ok {
				t.Errorf("%s is in both %s and %s", typ, prev, s.Code)
			}
			covered[typ] = s.Code
		}
	}
	assert.Len(t, covered, len(ledger.AccountTypes))

	for _, code := range []string{"current_assets", "Current Assets", "current-assets"} {
		sec, ok := SectionFor(code)
		require.True(t, ok, code)
		assert.Contains(t, sec.Types, ledger.AccountTypeBank)
	}
	_, ok := SectionFor("goodwill")
	assert.False(t, ok)
}

package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAccountType(t *testing.T) {
	for in, want := range map[string]AccountType{
		"BANK":              AccountTypeBank,
		"bank":              AccountTypeBank,
		"operating-revenue": AccountTypeOperatingRevenue,
		"Non_Current_Asset": AccountTypeNonCurrentAsset,
	} {
		got, ok := ParseAccountType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseAccountType("ASSET")
	assert.False(t, ok)
	_, ok = ParseAccountType("")
	assert.False(t, ok)
}

func TestSignedValues(t *testing.T) {
	d := decimal.RequireFromString
	cases := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"debit balance", Balance{Type: BalanceTypeDebit, Amount: d("100"), ExchangeRate: d("1")}.Signed(), "100"},
		{"credit balance converted", Balance{Type: BalanceTypeCredit, Amount: d("150"), ExchangeRate: d("1.5")}.Signed(), "-100"},
		{"zero rate", Balance{Type: BalanceTypeDebit, Amount: d("7"), ExchangeRate: decimal.Zero}.Signed(), "7"},
		{"debit posting", Posting{Side: SideDebit, Amount: d("30"), Rate: d("1")}.Contribution(), "30"},
		{"credit posting", Posting{Side: SideCredit, Amount: d("30"), Rate: d("2")}.Contribution(), "-15"},
	}
	for _, tc := range cases {
		assert.True(t, d(tc.want).Equal(tc.got), "%s: got %s", tc.name, tc.got)
	}
}

func TestSignedValues_FixedConversionScale(t *testing.T) {
	d := decimal.RequireFromString
	third := Balance{Type: BalanceTypeDebit, Amount: d("100"), ExchangeRate: d("3")}.Signed()
	assert.Equal(t, "33.3333333333", third.String())

	offset := Posting{Side: SideCredit, Amount: d("33.3333333333"), Rate: d("1")}.Contribution()
	assert.True(t, third.Add(offset).IsZero())

	twoThirds := Posting{Side: SideCredit, Amount: d("200"), Rate: d("3")}.Contribution()
	assert.Equal(t, "-66.6666666667", twoThirds.String())
}

func TestAccountHasCategory(t *testing.T) {
	id := uuid.New()
	nilID := uuid.Nil
	assert.True(t, Account{CategoryID: &id}.HasCategory())
	assert.False(t, Account{CategoryID: &nilID}.HasCategory())
	assert.False(t, Account{}.HasCategory())
}

package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	cases := map[string]string{
		"Current Assets":     "current_assets",
		"current-assets":     "current_assets",
		"CURRENT_ASSETS":     "current_assets",
		"  Bank  Account  ":  "bank_account",
		"Non-Operating (II)": "non_operating_ii",
		"":                   "",
	}
	for in, want := range cases {
		got := Key(in)
		assert.Equal(t, want, got, in)
		if want != "" {
			assert.True(t, IsKey(got), got)
		}
	}
	assert.False(t, IsKey("Current Assets"))
	assert.False(t, IsKey("_x"))
}

// Package slug turns display names into stable lower_snake_case keys.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

const maxLen = 64

var reKey = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

// IsKey reports whether s is already a normalized key.
func IsKey(s string) bool {
	return len(s) <= maxLen && reKey.MatchString(s)
}

// Key lowercases s and joins its letter and digit runs with single underscores,
// so "Current Assets", "current-assets" and "CURRENT_ASSETS" all become "current_assets".
func Key(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r)) || r > unicode.MaxASCII {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
		if b.Len() >= maxLen {
			break
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

package models

import (
	"strings"
	"unicode"
)

// NormalizePhone reduces a sender address to digits only so that
// numbers stored with "+", spaces or the "whatsapp:" transport prefix
// all compare equal. Applied both when allow-list entries are created
// and when inbound messages arrive.
func NormalizePhone(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "whatsapp:")

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

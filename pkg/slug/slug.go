// Package slug derives URL-friendly identifiers from display names.
package slug

import (
	"fmt"
	"strings"
)

// Turkish letters get ASCII equivalents; every other non-alphanumeric rune
// acts as a separator. Uppercase forms are handled by the ToLower pass
// (including dotted capital I, whose simple lowercase mapping is plain i).
var translitASCII = map[rune]rune{
	'ç': 'c',
	'ğ': 'g',
	'ı': 'i',
	'ö': 'o',
	'ş': 's',
	'ü': 'u',
}

// Generate creates a URL-friendly slug from the given name.
//
// Examples:
//   - "Kadın Giyim" → "kadin-giyim"
//   - "Çocuk Ürünleri" → "cocuk-urunleri"
//   - "Hello   World!" → "hello-world"
//
// Runs of separator characters collapse into a single hyphen and never
// appear at the edges, so Generate("!hello!") is "hello".
func Generate(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(lowered))
	pendingHyphen := false
	for _, r := range lowered {
		if mapped, ok := translitASCII[r]; ok {
			r = mapped
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

// WithSuffix returns the n-th collision candidate for a base slug.
// The first candidate is the base itself; counting starts at 2, so
// WithSuffix("phone", 2) yields "phone-2".
func WithSuffix(base string, n int) string {
	return fmt.Sprintf("%s-%d", base, n)
}

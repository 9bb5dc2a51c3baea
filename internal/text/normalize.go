package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldChain = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold trims, lowercases, and strips combining diacritical marks from s so that
// locale-specific accents ("cachorro latindo" vs "cachôrro latindò") do not
// cause spurious mismatches before similarity scoring. Input that cannot be
// transformed is returned trimmed and lowercased only.
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		return s
	}
	return out
}

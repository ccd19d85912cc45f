package normalizer

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks (RENÉE -> RENEE) without touching
// base letters.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// FoldToASCII strips diacritics and transliterates any remaining non-ASCII
// runes. Filing data occasionally carries names pasted from other scripts;
// folding keeps them comparable against the registry.
func FoldToASCII(s string) string {
	return strings.TrimSpace(unidecode.Unidecode(StripDiacritics(s)))
}

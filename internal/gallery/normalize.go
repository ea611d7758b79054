package gallery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName folds a name for fuzzy comparison (lowercase, no diacritics,
// spaces for dashes). Enrollment uses this to warn about near-duplicate
// names; storage and merge dedup always compare exact strings.
func NormalizeName(name string) string {
	name = removeDiacritics(name)
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// SimilarName reports whether two names collide after normalization but are
// not exact-equal, e.g. "alice" vs "Alice". Used for advisory warnings only.
func SimilarName(a, b string) bool {
	return a != b && NormalizeName(a) == NormalizeName(b)
}

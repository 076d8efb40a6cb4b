package hunt

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes an answer for comparison: accents are folded
// to their base letters, case is folded, everything outside letters,
// digits, spaces and hyphens is dropped, hyphens join their surrounding
// words ("cross-roads" equals "crossroads"), and whitespace runs
// collapse to a single space. The result of Normalize is a fixed point:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	// NFD decomposition followed by removal of combining marks folds
	// accented letters onto their ASCII base ("café" becomes "cafe").
	decomposed, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), raw)
	if err != nil {
		decomposed = raw
	}
	folded := cases.Fold().String(decomposed)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case r == '-':
			// hyphens join words rather than separate them
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// Match reports whether a submitted answer matches the expected answer
// after normalization. An expected answer that normalizes to empty
// never matches anything.
func Match(submitted, expected string) bool {
	want := Normalize(expected)
	if want == "" {
		return false
	}
	return Normalize(submitted) == want
}

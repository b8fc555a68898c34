// Package commitment turns answer text into the fixed-size digests stored against questions.
package commitment

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trivia-proof-service/internal/domain"
)

// Normalize trims surrounding whitespace and lower-cases with the root locale's full case
// mapping, so commitments match those produced by JavaScript's trim and toLowerCase
// (U+FEFF is trimmed, U+0085 is kept, final sigma and dotted capital I map as in JS).
func Normalize(text string) string {
	// Casers are stateful and must not be shared between goroutines.
	return cases.Lower(language.Und).String(strings.TrimFunc(text, isTrimmable))
}

func isTrimmable(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

// Commit hashes the normalized answer with SHA-256.
func Commit(text string) domain.Hash {
	return sha256.Sum256([]byte(Normalize(text)))
}

// Equal compares two commitments without an early exit on the first differing byte.
func Equal(a, b domain.Hash) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

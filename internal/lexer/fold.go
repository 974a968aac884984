package lexer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldKeyword normalizes a word for keyword matching: accents are removed
// (É -> E, Ã -> A), the word is upper-cased and a trailing '?' is dropped.
// Identifiers are never folded; only the parser's phrase table uses this.
func FoldKeyword(word string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, word)
	if err != nil {
		folded = word
	}
	return strings.TrimRight(strings.ToUpper(folded), "?")
}

// Package transform applies the post-evaluation string transformations to
// rendered attribute values: case folding, whitespace removal, and diacritic
// folding. The order is fixed — case, then spaces, then normalization — and
// is never configurable.
package transform

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/identitykit/genattr/rule"
)

// stripMarks decomposes to NFD, drops combining marks, and recomposes.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// asciiFold maps characters that survive mark-stripping (they are not
// decomposable) to their closest ASCII representation, and drops
// apostrophes.
var asciiFold = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "Th",
	"ł", "l", "Ł", "L",
	"ı", "i",
	"'", "", "’", "", "ʼ", "",
)

// Apply runs the rule's configured transformations over a rendered value in
// the fixed pipeline order.
func Apply(value string, r *rule.Rule) string {
	value = ApplyCase(value, r.EffectiveCase())
	if r.RemoveSpaces {
		value = RemoveSpaces(value)
	}
	if r.Normalize {
		value = NormalizeDiacritics(value)
	}
	return value
}

// ApplyCase folds the value's case according to the mode. CaseCapitalize
// uppercases the first letter of each space-separated word and leaves the
// remainder of each word unchanged.
func ApplyCase(s string, mode rule.Case) string {
	switch mode {
	case rule.CaseLower:
		return strings.ToLower(s)
	case rule.CaseUpper:
		return strings.ToUpper(s)
	case rule.CaseCapitalize:
		words := strings.Split(s, " ")
		for i, word := range words {
			if word == "" {
				continue
			}
			r := []rune(word)
			r[0] = unicode.ToUpper(r[0])
			words[i] = string(r)
		}
		return strings.Join(words, " ")
	default:
		return s
	}
}

// RemoveSpaces strips every whitespace character from the value.
func RemoveSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeDiacritics folds the value to its closest ASCII representation
// and strips apostrophes. Characters with no ASCII fold are left in place.
func NormalizeDiacritics(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	return asciiFold.Replace(folded)
}

// PadNumber renders n left-padded with zeros to the given width. Values
// wider than the padding are returned unchanged: padding never truncates.
func PadNumber(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Package vntext provides Vietnamese text normalization helpers used for
// keyword matching and gazetteer lookups.
package vntext

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold strips Vietnamese diacritics so that "Cầu Giấy" and "cau giay"
// compare equal after normalization. The letter đ is not a combining mark
// and is mapped to d explicitly.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	out = strings.ReplaceAll(out, "đ", "d")
	out = strings.ReplaceAll(out, "Đ", "D")
	return out
}

// Normalize lowercases, trims and collapses internal whitespace.
// It keeps diacritics; combine with Fold for accent-insensitive matching.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Package gazetteer validates free-text district names against the fixed
// list of Hanoi administrative districts. Lookup is exact after
// normalization; there is no fuzzy matching or closest-guess correction,
// because a silently "corrected" district is worse than an explicit
// rejection.
package gazetteer

import (
	"github.com/manhsontran/topgo-rag-chatbot/pkg/vntext"
)

// districts holds the canonical (diacritic) spelling of every valid district.
var districts = []string{
	"Ba Đình",
	"Hoàn Kiếm",
	"Tây Hồ",
	"Long Biên",
	"Cầu Giấy",
	"Đống Đa",
	"Hai Bà Trưng",
	"Hoàng Mai",
	"Thanh Xuân",
	"Sóc Sơn",
	"Đông Anh",
	"Gia Lâm",
	"Nam Từ Liêm",
	"Thanh Trì",
	"Bắc Từ Liêm",
	"Mê Linh",
	"Hà Đông",
	"Sơn Tây",
	"Ba Vì",
	"Phúc Thọ",
	"Đan Phượng",
	"Hoài Đức",
	"Quốc Oai",
	"Thạch Thất",
	"Chương Mỹ",
	"Thanh Oai",
	"Thường Tín",
	"Phú Xuyên",
	"Ứng Hòa",
	"Mỹ Đức",
}

// canonical maps both the diacritic and the folded spelling of each district
// (normalized) to its canonical form. Built once at init, read-only after.
var canonical = buildIndex()

func buildIndex() map[string]string {
	idx := make(map[string]string, len(districts)*2)
	for _, d := range districts {
		norm := vntext.Normalize(d)
		idx[norm] = d
		idx[vntext.Fold(norm)] = d
	}
	return idx
}

// Valid reports whether the given location text names a real Hanoi district.
// Case, surrounding whitespace and diacritics are ignored.
func Valid(location string) bool {
	_, ok := Canonical(location)
	return ok
}

// Canonical resolves a location text to the canonical district spelling.
// Returns ok=false when the text is not an exact normalized match.
func Canonical(location string) (string, bool) {
	norm := vntext.Normalize(location)
	if norm == "" {
		return "", false
	}
	if d, ok := canonical[norm]; ok {
		return d, true
	}
	if d, ok := canonical[vntext.Fold(norm)]; ok {
		return d, true
	}
	return "", false
}

// Districts returns the canonical district names in declaration order.
// The returned slice is a copy.
func Districts() []string {
	out := make([]string, len(districts))
	copy(out, districts)
	return out
}

package vntext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "diacritics removed", in: "Cầu Giấy", expected: "Cau Giay"},
		{name: "dj mapped lowercase", in: "Đống Đa", expected: "Dong Da"},
		{name: "dj mapped in word", in: "quận đống đa", expected: "quan dong da"},
		{name: "plain ascii unchanged", in: "hello world", expected: "hello world"},
		{name: "empty", in: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fold(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "lowercases", in: "Tây Hồ", expected: "tây hồ"},
		{name: "trims", in: "  chào  ", expected: "chào"},
		{name: "collapses whitespace", in: "hai   bà\ttrưng", expected: "hai bà trưng"},
		{name: "keeps diacritics", in: "Hoàn Kiếm", expected: "hoàn kiếm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.in))
		})
	}
}

func TestFoldNormalizeCompose(t *testing.T) {
	assert.Equal(t, "cau giay", Fold(Normalize("  CẦU   GIẤY ")))
}

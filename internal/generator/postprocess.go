package generator

import (
	"regexp"
	"strings"

	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
)

// districtCorrections maps district misspellings that generation models
// produce under Vietnamese diacritic confusion to the correct names. A
// replacement only fires when the corrected district actually appears in
// the retrieved venues, so a venue genuinely on a street named "Cầu Gỗ"
// is left alone.
var districtCorrections = map[string]string{
	"hoàng kim": "Hoàn Kiếm",
	"hoang kim": "Hoàn Kiếm",
	"cầu gỗ":    "Cầu Giấy",
	"cau go":    "Cầu Giấy",
	"cầu giầy":  "Cầu Giấy",
	"tây hô":    "Tây Hồ",
	"tay ho":    "Tây Hồ",
	"đồng đa":   "Đống Đa",
	"dong da":   "Đống Đa",
}

// negativePhrases are "not found" openers a model sometimes appends after
// it has already recommended venues. Everything from the first such phrase
// onward is dropped.
var negativePhrases = []string{
	"Rất tiếc, tôi không tìm thấy",
	"Xin lỗi, không tìm thấy",
	"Không tìm thấy địa điểm phù hợp",
}

// contradictionMinLength guards the suppression: a short answer that leads
// with "not found" is probably a genuine miss, not a contradiction.
const contradictionMinLength = 100

// correctDistricts rewrites known district misspellings in the answer,
// case-insensitively, when the correct name belongs to a retrieved venue.
func correctDistricts(text string, venues []models.ScoredVenue) string {
	if len(venues) == 0 {
		return text
	}

	actual := make(map[string]bool, len(venues))
	for _, sv := range venues {
		actual[sv.Venue.District] = true
	}

	lower := strings.ToLower(text)
	for wrong, correct := range districtCorrections {
		if !actual[correct] || !strings.Contains(lower, wrong) {
			continue
		}
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(wrong))
		text = re.ReplaceAllString(text, correct)
		lower = strings.ToLower(text)
	}
	return text
}

// suppressContradiction removes trailing "not found" text from an answer
// that already introduced venues.
func suppressContradiction(text string, venues []models.ScoredVenue) string {
	if len(venues) == 0 || len(text) <= contradictionMinLength {
		return text
	}
	for _, phrase := range negativePhrases {
		if i := strings.Index(text, phrase); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
	}
	return text
}

// Package extractor derives structured search filters from free-text
// queries.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/manhsontran/topgo-rag-chatbot/internal/gazetteer"
	"github.com/manhsontran/topgo-rag-chatbot/internal/llm"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/pkg/vntext"
)

// InvalidDistrictError reports a district that is explicitly named in the
// query but does not exist. It is the only extraction failure surfaced to
// the orchestrator: forwarding a filter that can never match would turn a
// user typo into a misleading "no results" answer.
type InvalidDistrictError struct {
	Name string
}

func (e *InvalidDistrictError) Error() string {
	return fmt.Sprintf("invalid district %q", e.Name)
}

// districtMentionRe captures the phrase following a location indicator
// ("quận X" / "district X") up to punctuation or a following venue word.
var districtMentionRe = regexp.MustCompile(`(?:quận|district)\s+([^,.?!\n]+?)(?:\s+(?:nhà|quán|bar|restaurant|karaoke|giá|rẻ|sang)|$)`)

const extractPromptTemplate = `Phân tích câu hỏi và trích xuất thông tin:

Câu hỏi: "%s"

Tìm các thông tin sau (NẾU CÓ trong câu hỏi):
1. Quận (CHỈ các quận HỢP LỆ ở Hà Nội): Tây Hồ, Hoàn Kiếm, Cầu Giấy, Ba Đình, Đống Đa, Hai Bà Trưng, Thanh Xuân, Long Biên, Hoàng Mai
2. Loại: restaurant (nhà hàng), bar (quán bar), karaoke, cafe, buffet
3. Giá: binh_dan (bình dân/rẻ), trung_binh (trung bình), cao_cap (sang/cao cấp)

QUAN TRỌNG:
- CHỈ trích xuất quận NẾU nó là quận THẬT của Hà Nội
- NẾU quận KHÔNG HỢP LỆ (ví dụ: "sao Hỏa") → KHÔNG trả về district
- KHÔNG tự sửa hoặc đoán tên quận
- Nếu KHÔNG chắc chắn → bỏ qua key đó

Trả lời CHÍNH XÁC theo format JSON (KHÔNG thêm text):
{
    "district": "Tây Hồ",
    "category": "restaurant",
    "price_tier": "binh_dan"
}

Bây giờ trích xuất (chỉ JSON):`

const extractSystemPrompt = "Trả về JSON. KHÔNG giải thích."

// rawFilters is the JSON shape expected from the extraction model.
type rawFilters struct {
	District  string `json:"district"`
	Category  string `json:"category"`
	PriceTier string `json:"price_tier"`
}

// Extractor extracts filters from query text using a district pre-scan and
// a model-assisted JSON extraction, re-validating every field afterwards.
type Extractor struct {
	llm    llm.Client
	logger *slog.Logger
}

// New creates an extractor. client may be nil; extraction then only runs
// the district pre-scan and returns empty filters.
func New(client llm.Client, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{llm: client, logger: logger}
}

// Extract derives filters from the query. The returned error is nil or an
// *InvalidDistrictError; model and parse failures degrade to partial or
// empty filters rather than failing the call.
func (e *Extractor) Extract(ctx context.Context, query string) (models.Filters, error) {
	if name, ok := e.scanDistrictMention(query); ok {
		if !gazetteer.Valid(name) {
			e.logger.Info("query names an invalid district", "district", name)
			return models.Filters{}, &InvalidDistrictError{Name: name}
		}
	}

	if e.llm == nil || !e.llm.CheckConnection(ctx) {
		return models.Filters{}, nil
	}

	reply, err := e.llm.Generate(ctx, llm.GenerateRequest{
		Prompt:      fmt.Sprintf(extractPromptTemplate, query),
		System:      extractSystemPrompt,
		Temperature: 0.1,
		MaxTokens:   100,
	})
	if err != nil {
		e.logger.Warn("filter extraction model call failed, proceeding unfiltered", "error", err)
		return models.Filters{}, nil
	}

	raw, ok := llm.FirstJSONObject(reply)
	if !ok {
		return models.Filters{}, nil
	}

	var rf rawFilters
	if err := json.Unmarshal(raw, &rf); err != nil {
		e.logger.Warn("parsing extraction reply, proceeding unfiltered", "error", err)
		return models.Filters{}, nil
	}

	return e.validate(rf), nil
}

// scanDistrictMention finds an explicit "quận <name>" mention in the query.
func (e *Extractor) scanDistrictMention(query string) (string, bool) {
	lower := vntext.Normalize(query)
	m := districtMentionRe.FindStringSubmatch(lower)
	if m == nil {
		return "", false
	}

	name := strings.TrimSpace(m[1])
	// District names are at most three words; drop trailing capture noise.
	words := strings.Fields(name)
	if len(words) > 3 {
		name = strings.Join(words[:3], " ")
	}
	if name == "" {
		return "", false
	}
	return name, true
}

// validate re-checks each extracted field independently. Invalid optional
// fields are dropped silently; partial extraction is acceptable.
func (e *Extractor) validate(rf rawFilters) models.Filters {
	var f models.Filters

	if rf.District != "" {
		if canonical, ok := gazetteer.Canonical(rf.District); ok {
			f.District = canonical
		} else {
			e.logger.Warn("model extracted an unknown district, dropping", "district", rf.District)
		}
	}

	if rf.Category != "" {
		if c, ok := models.ParseCategory(rf.Category); ok {
			f.Category = c
		}
	}

	if rf.PriceTier != "" {
		if p, ok := models.ParsePriceTier(rf.PriceTier); ok {
			f.PriceTier = p
		}
	}

	return f
}

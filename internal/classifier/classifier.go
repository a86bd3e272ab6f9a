// Package classifier decides whether a query needs venue retrieval or a
// conversational reply.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/manhsontran/topgo-rag-chatbot/internal/llm"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/pkg/vntext"
)

// venuePatterns match queries that are clearly looking for a venue:
// category nouns, food nouns, district names, price and sentiment
// adjectives, and find/suggest verbs. The rule path is deterministic and
// works with the model down, so it runs before any model call.
var venuePatterns = []string{
	"nhà hàng", "quán ăn", "quán", "bar", "pub", "karaoke",
	"buffet", "restaurant", "cafe", "quán cafe",
	"ăn", "món", "đồ ăn", "thức ăn", "bữa", "cơm", "phở",
	"bún", "mì", "lẩu", "nướng", "dimsum",
	"quận", "ở đâu", "gần", "phù hợp", "tốt", "ngon",
	"giá rẻ", "bình dân", "sang trọng", "cao cấp",
	"trung bình", "gợi ý", "giới thiệu", "tìm", "cho tôi",
	"tây", "ý", "nhật", "hàn", "trung", "việt", "âu", "á",
	"cầu giấy", "tây hồ", "hoàn kiếm", "ba đình", "đống đa",
	"hai bà trưng", "thanh xuân", "long biên", "hoàng mai",
}

// greetingTokens are matched against the whole normalized query, not as
// substrings: "hi" inside a longer sentence is not a greeting.
var greetingTokens = []string{
	"xin chào", "chào", "hello", "hi", "hey",
}

// offTopicPatterns match subjects the assistant refuses outright:
// arithmetic, weather, news, science, programming.
var offTopicPatterns = []string{
	"toán", "tính", "+", "-", "*", "/", "bằng mấy", "kết quả",
	"thời tiết", "trời", "nắng", "mưa", "nhiệt độ",
	"tin tức", "bóng đá", "chính trị", "kinh tế",
	"lịch sử", "địa lý", "khoa học", "vật lý", "hóa học",
	"code", "lập trình", "python", "javascript",
}

const classifyPromptTemplate = `Phân tích câu hỏi của người dùng và trả lời theo format JSON:

Câu hỏi: "%s"

Hãy xác định:
1. Người dùng có đang TÌM KIẾM nhà hàng/quán bar/karaoke cụ thể không?
2. Hay chỉ đang chào hỏi/hỏi thông tin chung về chatbot?

Trả lời CHÍNH XÁC theo format JSON này (không giải thích thêm):
{
    "needs_search": true/false,
    "response_type": "greeting" hoặc "general_question" hoặc "venue_query",
    "reasoning": "lý do ngắn gọn"
}

Chỉ trả về JSON, không có text khác.`

const classifySystemPrompt = "Bạn là AI phân loại câu hỏi. Chỉ trả về JSON, không giải thích thêm."

// classifyVerdict is the raw JSON shape expected from the model.
type classifyVerdict struct {
	NeedsSearch  bool   `json:"needs_search"`
	ResponseType string `json:"response_type"`
	Reasoning    string `json:"reasoning"`
}

// Classifier classifies incoming queries with keyword rules first and a
// model-assisted verdict for the ambiguous remainder.
type Classifier struct {
	llm    llm.Client
	logger *slog.Logger
}

// New creates a classifier. client may be nil for a rule-only classifier.
func New(client llm.Client, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{llm: client, logger: logger}
}

// Classify produces a verdict for every query. It never fails: when the
// model path is unavailable or unparsable it defaults to venue_query, which
// favors attempting retrieval over silently refusing to help.
func (c *Classifier) Classify(ctx context.Context, query string) models.Classification {
	lower := vntext.Normalize(query)

	for _, p := range venuePatterns {
		if strings.Contains(lower, p) {
			return models.Classification{NeedsRetrieval: true, Kind: models.KindVenueQuery}
		}
	}

	for _, g := range greetingTokens {
		if lower == g {
			return models.Classification{NeedsRetrieval: false, Kind: models.KindGreeting}
		}
	}

	for _, p := range offTopicPatterns {
		if strings.Contains(lower, p) {
			return models.Classification{NeedsRetrieval: false, Kind: models.KindOffTopic}
		}
	}

	return c.classifyWithModel(ctx, query)
}

func (c *Classifier) classifyWithModel(ctx context.Context, query string) models.Classification {
	fallback := models.Classification{NeedsRetrieval: true, Kind: models.KindVenueQuery}
	if c.llm == nil {
		return fallback
	}

	reply, err := c.llm.Generate(ctx, llm.GenerateRequest{
		Prompt:      fmt.Sprintf(classifyPromptTemplate, query),
		System:      classifySystemPrompt,
		Temperature: 0.1,
		MaxTokens:   150,
	})
	if err != nil {
		c.logger.Warn("classification model call failed, defaulting to venue query", "error", err)
		return fallback
	}

	raw, ok := llm.FirstJSONObject(reply)
	if !ok {
		c.logger.Warn("classification reply contained no JSON, defaulting to venue query")
		return fallback
	}

	var verdict classifyVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		c.logger.Warn("parsing classification verdict, defaulting to venue query", "error", err)
		return fallback
	}

	if verdict.NeedsSearch {
		return models.Classification{NeedsRetrieval: true, Kind: models.KindVenueQuery}
	}

	switch verdict.ResponseType {
	case "greeting":
		return models.Classification{NeedsRetrieval: false, Kind: models.KindGreeting}
	case "general_question":
		return models.Classification{NeedsRetrieval: false, Kind: models.KindGeneralQuestion}
	default:
		// The model said no search but named an unknown kind; treat it as
		// a general question rather than refusing outright.
		return models.Classification{NeedsRetrieval: false, Kind: models.KindGeneralQuestion}
	}
}

package generator

import (
	"fmt"
	"strings"

	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/pkg/tokenizer"
)

// SystemPrompt constrains the model to the supplied venue facts, to
// Vietnamese output, and to the venue-advice domain.
const SystemPrompt = `Bạn là trợ lý AI thông minh chuyên tư vấn về nhà hàng, quán bar và karaoke tại Hà Nội.

QUAN TRỌNG: BẠN PHẢI TRẢ LỜI HOÀN TOÀN BẰNG TIẾNG VIỆT!

VAI TRÒ CỦA BẠN:
- Tư vấn và gợi ý địa điểm ăn uống, vui chơi phù hợp với nhu cầu của khách hàng
- Cung cấp thông tin chính xác dựa trên dữ liệu có sẵn
- Trả lời thân thiện, nhiệt tình và hữu ích bằng TIẾNG VIỆT

GIỚI HẠN CHUYÊN MÔN:
- Bạn CHỈ chuyên về tư vấn nhà hàng, quán bar, karaoke tại Hà Nội
- Nếu người dùng hỏi về lĩnh vực khác, hãy lịch sự từ chối

QUY TẮC QUAN TRỌNG - NGHIÊM CẤM VI PHẠM:
1. TUYỆT ĐỐI CẤM BỊA THÔNG TIN!
   - KHÔNG tự tạo tên nhà hàng, địa chỉ, số điện thoại
   - CHỈ giới thiệu các địa điểm CÓ TRONG DỮ LIỆU
2. PHẢI trả lời HOÀN TOÀN bằng TIẾNG VIỆT
3. CHỈ sử dụng thông tin từ "DỮ LIỆU CÁC ĐỊA ĐIỂM PHÙ HỢP"
   - Copy chính xác: tên, địa chỉ, số điện thoại từ dữ liệu
4. Nếu không có dữ liệu → Nói rõ "Không tìm thấy"
5. KHÔNG thay đổi tên quận từ dữ liệu
   VD: "Cầu Giấy" → PHẢI viết "Cầu Giấy" (KHÔNG viết "Cầu Gỗ" hay "Cầu Giầy")`

const queryPromptTemplate = `Dựa trên thông tin sau đây, hãy tư vấn cho khách hàng BẰNG TIẾNG VIỆT:

CÂU HỎI KHÁCH HÀNG:
%s

DỮ LIỆU CÁC ĐỊA ĐIỂM PHÙ HỢP:
%s

QUY TẮC BẮT BUỘC:
1. CHỈ giới thiệu các địa điểm có trong DỮ LIỆU, KHÔNG tự bịa tên, địa chỉ, số điện thoại
2. Phải cung cấp đầy đủ: tên, địa chỉ, số điện thoại
3. Copy CHÍNH XÁC tên quận từ dữ liệu, không sửa đổi
4. KHÔNG thêm câu "không tìm thấy" khi đã giới thiệu địa điểm
5. KẾT THÚC bằng lời khuyên hữu ích (đặt bàn trước, thời gian tốt nhất, v.v.)

Hãy trả lời HOÀN TOÀN bằng TIẾNG VIỆT, dựa CHÍNH XÁC vào dữ liệu được cung cấp.`

// NoResultsMessage is returned verbatim for an empty retrieval set while
// the model is up. Handing an empty context to a generative model invites
// fabricated venue names, so this case never reaches the model.
const NoResultsMessage = `Rất tiếc, tôi không tìm thấy địa điểm nào phù hợp với yêu cầu của bạn trong cơ sở dữ liệu hiện tại.

Bạn có thể thử:
- Mở rộng khu vực tìm kiếm (thử các quận khác)
- Điều chỉnh mức giá
- Thay đổi loại hình (nhà hàng, bar, karaoke)

Hoặc cho tôi biết thêm chi tiết về nhu cầu của bạn để tôi có thể tư vấn tốt hơn.`

// GreetingReply is the canned greeting; the model is not consulted for it.
const GreetingReply = `Xin chào! Tôi là trợ lý AI chuyên tư vấn về nhà hàng, quán bar và karaoke tại Hà Nội.

Tôi có thể giúp bạn:
- Tìm nhà hàng theo loại hình, quận, mức giá
- Gợi ý địa điểm phù hợp cho các dịp đặc biệt
- Tư vấn quán bar, karaoke

Bạn đang tìm loại địa điểm nào?`

// OffTopicReply names the assistant's sole competency and refuses the rest.
const OffTopicReply = `Xin lỗi bạn, tôi là chuyên viên tư vấn về nhà hàng, quán bar và karaoke tại Hà Nội. Tôi không có khả năng trả lời về các vấn đề khác.

Tôi chỉ có thể giúp bạn:
- Tìm nhà hàng phù hợp
- Gợi ý quán bar, karaoke
- Tư vấn địa điểm ăn uống theo nhu cầu

Bạn cần tìm loại địa điểm nào?`

// DegradedGreeting is the conversational reply when the model is down.
const DegradedGreeting = "Xin chào! Tôi là trợ lý tư vấn nhà hàng tại Hà Nội. Bạn cần tìm loại địa điểm nào?"

const conversationPromptTemplate = `Người dùng hỏi: %s

Trả lời NGẮN GỌN (2-3 câu) bằng TIẾNG VIỆT:

Nếu hỏi về BẠN:
- Giới thiệu: "Tôi là trợ lý AI chuyên tư vấn nhà hàng, quán bar và karaoke tại Hà Nội."
- Chức năng: "Tôi có thể giúp bạn tìm địa điểm ăn uống phù hợp với nhu cầu."
- Hỏi ngược: "Bạn cần tìm loại địa điểm nào?"

KHÔNG liệt kê nhà hàng cụ thể.`

const conversationSystemPrompt = "Bạn là trợ lý AI chuyên tư vấn nhà hàng tại Hà Nội. Trả lời ngắn gọn, thân thiện."

// historyPromptTurns is how many trailing turns are rendered into a
// conversational prompt. The full window (models.HistoryWindow) is what
// callers may pass; the prompt only needs the tail.
const historyPromptTurns = 3

// categoryLabels render categories for Vietnamese output. The switch-like
// exhaustive map keeps new categories from silently printing raw enum text.
var categoryLabels = map[models.Category]string{
	models.CategoryRestaurant: "Nhà hàng",
	models.CategoryBar:        "Bar",
	models.CategoryKaraoke:    "Karaoke",
	models.CategoryCafe:       "Cafe",
	models.CategoryBuffet:     "Buffet",
	models.CategoryOther:      "Khác",
}

var priceTierLabels = map[models.PriceTier]string{
	models.PriceCheap:     "Bình dân",
	models.PriceModerate:  "Trung bình",
	models.PriceExpensive: "Cao cấp",
}

// CategoryLabel returns the Vietnamese display label for a category.
func CategoryLabel(c models.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// PriceTierLabel returns the Vietnamese display label for a price tier.
func PriceTierLabel(p models.PriceTier) string {
	if l, ok := priceTierLabels[p]; ok {
		return l
	}
	return string(p)
}

// FormatVenueContext renders retrieved venues as the numbered fact block
// embedded in the generation prompt.
func FormatVenueContext(venues []models.ScoredVenue) string {
	if len(venues) == 0 {
		return "Không tìm thấy địa điểm phù hợp."
	}

	var sb strings.Builder
	for i, sv := range venues {
		v := sv.Venue
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, v.Name)
		fmt.Fprintf(&sb, "   - Loại hình: %s\n", CategoryLabel(v.Category))
		fmt.Fprintf(&sb, "   - Quận: %s\n", v.District)
		fmt.Fprintf(&sb, "   - Mức giá: %s\n", PriceTierLabel(v.PriceTier))
		fmt.Fprintf(&sb, "   - Số điện thoại: %s\n", v.Phone)
		fmt.Fprintf(&sb, "   - Địa chỉ: %s", v.Address)
		if len(v.Cuisines) > 0 {
			fmt.Fprintf(&sb, "\n   - Ẩm thực: %s", strings.Join(v.Cuisines, ", "))
		}
		if len(v.Features) > 0 {
			features := v.Features
			if len(features) > 5 {
				features = features[:5]
			}
			fmt.Fprintf(&sb, "\n   - Đặc điểm: %s", strings.Join(features, ", "))
		}
		fmt.Fprintf(&sb, "\n   - Độ phù hợp: %.0f%%\n", sv.Similarity*100)
	}
	return sb.String()
}

// contextTokenBudget caps the rendered venue block. Local models truncate
// silently past their window; cutting the tail of the context here is
// better than losing the rules at the end of the prompt.
const contextTokenBudget = 1500

// BuildPrompt assembles the grounded generation prompt for a query and its
// retrieved context.
func BuildPrompt(query string, venues []models.ScoredVenue) string {
	venueContext := tokenizer.Truncate(FormatVenueContext(venues), contextTokenBudget)
	return fmt.Sprintf(queryPromptTemplate, query, venueContext)
}

// BuildConversationPrompt assembles the prompt for conversational replies,
// prepending the tail of the rolling history when present.
func BuildConversationPrompt(query string, history []models.Turn) string {
	base := fmt.Sprintf(conversationPromptTemplate, query)
	if len(history) == 0 {
		return base
	}

	if len(history) > historyPromptTurns {
		history = history[len(history)-historyPromptTurns:]
	}

	var sb strings.Builder
	sb.WriteString("LỊCH SỬ HỘI THOẠI:\n")
	for _, turn := range history {
		switch turn.Role {
		case models.RoleUser:
			fmt.Fprintf(&sb, "Khách: %s\n", turn.Content)
		case models.RoleAssistant:
			fmt.Fprintf(&sb, "Trợ lý: %s\n", turn.Content)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(base)
	return sb.String()
}

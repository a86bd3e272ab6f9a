// Package generator turns retrieved venues into grounded Vietnamese
// answers, with a deterministic fallback when no model is reachable.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/manhsontran/topgo-rag-chatbot/internal/llm"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
)

// Generator produces answer text from a query and its retrieved context.
type Generator struct {
	llm         llm.Client
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// New creates a generator. client may be nil; every answer then comes from
// the fallback template.
func New(client llm.Client, temperature float64, maxTokens int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: client, temperature: temperature, maxTokens: maxTokens, logger: logger}
}

// Available reports whether the model path is usable.
func (g *Generator) Available(ctx context.Context) bool {
	return g.llm != nil && g.llm.CheckConnection(ctx)
}

// Generate produces a grounded answer for the query. An empty venue set
// returns the fixed no-results message without consulting the model. A
// model failure returns an error; callers degrade to Fallback.
func (g *Generator) Generate(ctx context.Context, query string, venues []models.ScoredVenue) (string, error) {
	if !g.Available(ctx) {
		g.logger.Warn("generation model unavailable, using fallback template")
		return g.Fallback(venues), nil
	}

	if len(venues) == 0 {
		return NoResultsMessage, nil
	}

	reply, err := g.llm.Generate(ctx, llm.GenerateRequest{
		Prompt:      BuildPrompt(query, venues),
		System:      SystemPrompt,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	reply = correctDistricts(reply, venues)
	reply = suppressContradiction(reply, venues)
	return strings.TrimSpace(reply), nil
}

// Conversational produces a reply for non-retrieval queries. Greetings and
// off-topic queries get canned text; general questions go to the model when
// it is up. It never fails.
func (g *Generator) Conversational(ctx context.Context, query string, kind models.QueryKind, history []models.Turn) string {
	switch kind {
	case models.KindGreeting:
		return GreetingReply
	case models.KindOffTopic:
		return OffTopicReply
	}

	if !g.Available(ctx) {
		return DegradedGreeting
	}

	reply, err := g.llm.Generate(ctx, llm.GenerateRequest{
		Prompt:      BuildConversationPrompt(query, history),
		System:      conversationSystemPrompt,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		g.logger.Warn("conversational model call failed, using canned reply", "error", err)
		return DegradedGreeting
	}
	return strings.TrimSpace(reply)
}

// Fallback renders a deterministic listing of the retrieved venues. It
// uses no model and cannot fail; it is the degraded-mode answer body.
func (g *Generator) Fallback(venues []models.ScoredVenue) string {
	if len(venues) == 0 {
		return "Không tìm thấy địa điểm phù hợp với yêu cầu của bạn."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tìm thấy %d địa điểm phù hợp:\n", len(venues))
	for i, sv := range venues {
		v := sv.Venue
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, v.Name)
		fmt.Fprintf(&sb, "   Loại hình: %s\n", CategoryLabel(v.Category))
		fmt.Fprintf(&sb, "   Quận: %s\n", v.District)
		fmt.Fprintf(&sb, "   Mức giá: %s\n", PriceTierLabel(v.PriceTier))
		if v.Phone != "" {
			fmt.Fprintf(&sb, "   Số điện thoại: %s\n", v.Phone)
		}
		if v.Address != "" {
			fmt.Fprintf(&sb, "   Địa chỉ: %s\n", v.Address)
		}
		if len(v.Cuisines) > 0 {
			fmt.Fprintf(&sb, "   Ẩm thực: %s\n", strings.Join(v.Cuisines, ", "))
		}
	}
	return strings.TrimSpace(sb.String())
}

// Package pipeline orchestrates classification, filter extraction,
// retrieval and answer generation for one query at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/manhsontran/topgo-rag-chatbot/internal/classifier"
	"github.com/manhsontran/topgo-rag-chatbot/internal/extractor"
	"github.com/manhsontran/topgo-rag-chatbot/internal/gazetteer"
	"github.com/manhsontran/topgo-rag-chatbot/internal/generator"
	"github.com/manhsontran/topgo-rag-chatbot/internal/metrics"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/internal/retriever"
)

// DefaultTopK is used when a request does not say how many venues it wants.
const DefaultTopK = 5

// EmptyQueryReply answers a blank input without running any stage.
const EmptyQueryReply = "Bạn chưa nhập câu hỏi. Hãy cho tôi biết bạn đang tìm loại địa điểm nào nhé!"

// Request is one pipeline invocation. Filters, when non-zero, bypass
// extraction; History is the caller-owned rolling dialogue window.
type Request struct {
	Query   string
	Filters models.Filters
	TopK    int
	History []models.Turn
}

// Pipeline wires the query-answering stages together.
type Pipeline struct {
	classifier  *classifier.Classifier
	extractor   *extractor.Extractor
	retriever   *retriever.Retriever
	generator   *generator.Generator
	logger      *slog.Logger
	defaultTopK int
}

// New assembles a pipeline from its stages.
func New(cl *classifier.Classifier, ex *extractor.Extractor, rt *retriever.Retriever, gen *generator.Generator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		classifier:  cl,
		extractor:   ex,
		retriever:   rt,
		generator:   gen,
		logger:      logger,
		defaultTopK: DefaultTopK,
	}
}

// SetDefaultTopK overrides the result count used when a request does not
// specify one. Non-positive values are ignored.
func (p *Pipeline) SetDefaultTopK(k int) {
	if k > 0 {
		p.defaultTopK = k
	}
}

// Answer runs the full pipeline for one query. Operational failures inside
// the stages degrade the answer rather than failing the call: every query
// gets a terminal Answer.
func (p *Pipeline) Answer(ctx context.Context, req Request) models.Answer {
	metrics.Inc(metrics.QueriesTotal)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return models.Answer{Query: req.Query, Text: EmptyQueryReply, Sources: []models.ScoredVenue{}}
	}

	history := req.History
	if len(history) > models.HistoryWindow {
		history = history[len(history)-models.HistoryWindow:]
	}

	verdict := p.classifier.Classify(ctx, query)
	p.logger.Info("classified query", "kind", verdict.Kind, "needs_retrieval", verdict.NeedsRetrieval)

	if !verdict.NeedsRetrieval {
		metrics.Inc(metrics.ConversationalTotal)
		text := p.generator.Conversational(ctx, query, verdict.Kind, history)
		return models.Answer{Query: query, Text: text, Sources: []models.ScoredVenue{}}
	}

	metrics.Inc(metrics.RetrievalQueries)

	filters := req.Filters
	if filters.IsZero() {
		extracted, err := p.extractor.Extract(ctx, query)
		var invalid *extractor.InvalidDistrictError
		if errors.As(err, &invalid) {
			metrics.Inc(metrics.InvalidDistricts)
			return models.Answer{Query: query, Text: invalidDistrictReply(invalid.Name), Sources: []models.ScoredVenue{}}
		}
		filters = extracted
	}

	topK := req.TopK
	if topK <= 0 {
		topK = p.defaultTopK
	}

	venues := p.retriever.Retrieve(ctx, query, filters, topK)
	if venues == nil {
		venues = []models.ScoredVenue{}
	}

	text, err := p.generator.Generate(ctx, query, venues)
	if err != nil {
		p.logger.Warn("answer generation failed, using fallback template", "error", err)
		metrics.Inc(metrics.FallbackAnswers)
		text = p.generator.Fallback(venues)
	}

	return models.Answer{
		Query:       query,
		Text:        text,
		Sources:     venues,
		SourceCount: len(venues),
	}
}

// Search runs extraction and retrieval without generation. The only error
// it surfaces is an invalid district named in the query.
func (p *Pipeline) Search(ctx context.Context, query string, filters models.Filters, topK int) ([]models.ScoredVenue, error) {
	query = strings.TrimSpace(query)

	if filters.IsZero() && query != "" {
		extracted, err := p.extractor.Extract(ctx, query)
		if err != nil {
			return nil, err
		}
		filters = extracted
	}

	if topK <= 0 {
		topK = p.defaultTopK
	}
	results := p.retriever.Retrieve(ctx, query, filters, topK)
	if results == nil {
		results = []models.ScoredVenue{}
	}
	return results, nil
}

// invalidDistrictReply names the rejected district and a handful of real
// ones the user can try instead.
func invalidDistrictReply(name string) string {
	districts := gazetteer.Districts()
	sample := districts
	if len(sample) > 10 {
		sample = sample[:10]
	}
	return fmt.Sprintf(
		"Xin lỗi, quận %q không tồn tại tại Hà Nội. Hà Nội có các quận/huyện sau: %s và các khu vực khác. Bạn có thể chọn một quận khác.",
		name, strings.Join(sample, ", "),
	)
}

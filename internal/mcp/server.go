// Package mcp implements the Model Context Protocol server for topgo.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/manhsontran/topgo-rag-chatbot/internal/extractor"
	"github.com/manhsontran/topgo-rag-chatbot/internal/gazetteer"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/internal/pipeline"
	"github.com/manhsontran/topgo-rag-chatbot/internal/store"
)

// defaultSearchLimit is the default number of results for search_venues.
const defaultSearchLimit = 5

// Server wraps an MCPServer with the chat pipeline dependencies.
type Server struct {
	mcp      *mcpserver.MCPServer
	pipeline *pipeline.Pipeline
	st       store.Store
	logger   *slog.Logger
}

// NewServer creates a new MCP server. If pipeline or st are nil, the
// corresponding tool calls return an error response instead of panicking.
func NewServer(p *pipeline.Pipeline, st store.Store, logger *slog.Logger) *Server {
	s := &Server{
		pipeline: p,
		st:       st,
		logger:   logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"topgo-rag-chatbot",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildAskTool(), s.handleAsk)
	mcpSrv.AddTool(buildSearchVenuesTool(), s.handleSearchVenues)
	mcpSrv.AddTool(buildListDistrictsTool(), s.handleListDistricts)
	mcpSrv.AddTool(buildStatsTool(), s.handleStats)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleAsk is the exported handler for the "ask" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleAsk(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleAsk(ctx, req)
}

// HandleSearchVenues is the exported handler for the "search_venues" tool.
func (s *Server) HandleSearchVenues(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSearchVenues(ctx, req)
}

// HandleListDistricts is the exported handler for the "list_districts" tool.
func (s *Server) HandleListDistricts(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleListDistricts(ctx, req)
}

// HandleStats is the exported handler for the "stats" tool.
func (s *Server) HandleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleStats(ctx, req)
}

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildAskTool() mcpgo.Tool {
	return mcpgo.NewTool("ask",
		mcpgo.WithDescription("Ask the Hanoi venue advisor a question in Vietnamese. Runs the full pipeline: classification, filter extraction, semantic retrieval and grounded answer generation."),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("The user question, e.g. 'nhà hàng Ý ở quận Tây Hồ'"),
		),
		mcpgo.WithNumber("top_k",
			mcpgo.Description("Maximum number of venues to retrieve (default: 5)"),
		),
	)
}

func buildSearchVenuesTool() mcpgo.Tool {
	return mcpgo.NewTool("search_venues",
		mcpgo.WithDescription("Semantic venue search without answer generation. Returns scored venues."),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("The search text"),
		),
		mcpgo.WithString("district",
			mcpgo.Description("Restrict to a Hanoi district, e.g. 'Cầu Giấy'"),
		),
		mcpgo.WithString("category",
			mcpgo.Description("Restrict to a venue category: restaurant, bar, karaoke, cafe, buffet"),
		),
		mcpgo.WithString("price_tier",
			mcpgo.Description("Restrict to a price tier: cheap, moderate, expensive"),
		),
		mcpgo.WithNumber("limit",
			mcpgo.Description("Maximum number of results (default: 5)"),
		),
	)
}

func buildListDistrictsTool() mcpgo.Tool {
	return mcpgo.NewTool("list_districts",
		mcpgo.WithDescription("List the valid Hanoi districts accepted as search filters."),
	)
}

func buildStatsTool() mcpgo.Tool {
	return mcpgo.NewTool("stats",
		mcpgo.WithDescription("Get index statistics: total venues, breakdown by category and price tier."),
	)
}

// --- tool handlers ---

// handleAsk runs the full pipeline for one question.
func (s *Server) handleAsk(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.pipeline == nil {
		return mcpgo.NewToolResultError("pipeline is unavailable"), nil
	}

	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcpgo.NewToolResultError("query is required and must not be empty"), nil
	}
	topK := req.GetInt("top_k", pipeline.DefaultTopK)

	answer := s.pipeline.Answer(ctx, pipeline.Request{Query: query, TopK: topK})

	s.logger.Info("mcp: ask answered", "source_count", answer.SourceCount)
	return toolResultJSON(answer)
}

// handleSearchVenues performs retrieval only and returns scored venues.
func (s *Server) handleSearchVenues(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.pipeline == nil {
		return mcpgo.NewToolResultError("pipeline is unavailable"), nil
	}

	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcpgo.NewToolResultError("query is required and must not be empty"), nil
	}

	limit := req.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var filters models.Filters
	if d := req.GetString("district", ""); d != "" {
		canonical, ok := gazetteer.Canonical(d)
		if !ok {
			return mcpgo.NewToolResultErrorf("invalid district %q: not a Hanoi district", d), nil
		}
		filters.District = canonical
	}
	if c := req.GetString("category", ""); c != "" {
		category, ok := models.ParseCategory(c)
		if !ok {
			return mcpgo.NewToolResultErrorf("invalid category %q: must be one of restaurant, bar, karaoke, cafe, buffet", c), nil
		}
		filters.Category = category
	}
	if p := req.GetString("price_tier", ""); p != "" {
		tier, ok := models.ParsePriceTier(p)
		if !ok {
			return mcpgo.NewToolResultErrorf("invalid price_tier %q: must be one of cheap, moderate, expensive", p), nil
		}
		filters.PriceTier = tier
	}

	results, err := s.pipeline.Search(ctx, query, filters, limit)
	if err != nil {
		var invalid *extractor.InvalidDistrictError
		if errors.As(err, &invalid) {
			return mcpgo.NewToolResultError(invalid.Error()), nil
		}
		return mcpgo.NewToolResultErrorf("search failed: %s", err.Error()), nil
	}

	result := map[string]any{
		"results": results,
	}
	return toolResultJSON(result)
}

// handleListDistricts returns the district gazetteer.
func (s *Server) handleListDistricts(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	result := map[string]any{
		"districts": gazetteer.Districts(),
	}
	return toolResultJSON(result)
}

// handleStats returns index statistics.
func (s *Server) handleStats(ctx context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	stats, err := s.st.Stats(ctx)
	if err != nil {
		return mcpgo.NewToolResultErrorf("stats failed: %s", err.Error()), nil
	}
	return toolResultJSON(stats)
}

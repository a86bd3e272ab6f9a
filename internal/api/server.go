package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"expvar"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/manhsontran/topgo-rag-chatbot/internal/extractor"
	"github.com/manhsontran/topgo-rag-chatbot/internal/gazetteer"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/internal/pipeline"
	"github.com/manhsontran/topgo-rag-chatbot/internal/store"
)

// Server is an HTTP API server that exposes the chat pipeline.
type Server struct {
	pipeline  *pipeline.Pipeline
	store     store.Store
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(p *pipeline.Pipeline, st store.Store, logger *slog.Logger, authToken string) *Server {
	return &Server{
		pipeline:  p,
		store:     st,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /debug/vars", expvar.Handler())

	// Chat and search endpoints — wrapped with auth middleware.
	mux.HandleFunc("POST /v1/chat", s.auth(s.handleChat))
	mux.HandleFunc("POST /v1/search", s.auth(s.handleSearch))
	mux.HandleFunc("GET /v1/districts", s.auth(s.handleDistricts))
	mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"status": "degraded", "index": "unreachable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "venues": count})
}

// chatRequest is the body accepted by POST /v1/chat. Explicit filters
// bypass extraction, same as /v1/search.
type chatRequest struct {
	Query     string        `json:"query"`
	District  string        `json:"district"`
	Category  string        `json:"category"`
	PriceTier string        `json:"price_tier"`
	TopK      int           `json:"top_k"`
	History   []models.Turn `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	filters, err := parseFilters(req.District, req.Category, req.PriceTier)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	answer := s.pipeline.Answer(r.Context(), pipeline.Request{
		Query:   req.Query,
		Filters: filters,
		TopK:    req.TopK,
		History: req.History,
	})

	s.writeJSON(w, http.StatusOK, answer)
}

// searchRequest is the body accepted by POST /v1/search.
type searchRequest struct {
	Query     string `json:"query"`
	District  string `json:"district"`
	Category  string `json:"category"`
	PriceTier string `json:"price_tier"`
	TopK      int    `json:"top_k"`
}

// searchResponse is returned by POST /v1/search.
type searchResponse struct {
	Results []models.ScoredVenue `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	filters, err := parseFilters(req.District, req.Category, req.PriceTier)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := s.pipeline.Search(r.Context(), req.Query, filters, req.TopK)
	if err != nil {
		var invalid *extractor.InvalidDistrictError
		if errors.As(err, &invalid) {
			s.writeError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		s.logger.Error("search failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	s.writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (s *Server) handleDistricts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"districts": gazetteer.Districts()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// parseFilters validates explicit filter fields from a request. Unlike
// extraction, explicitly supplied filters fail loudly when invalid.
func parseFilters(district, category, priceTier string) (models.Filters, error) {
	var f models.Filters

	if district != "" {
		canonical, ok := gazetteer.Canonical(district)
		if !ok {
			return f, &extractor.InvalidDistrictError{Name: district}
		}
		f.District = canonical
	}
	if category != "" {
		c, ok := models.ParseCategory(category)
		if !ok {
			return f, errors.New("invalid category")
		}
		f.Category = c
	}
	if priceTier != "" {
		p, ok := models.ParsePriceTier(priceTier)
		if !ok {
			return f, errors.New("invalid price_tier")
		}
		f.PriceTier = p
	}
	return f, nil
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

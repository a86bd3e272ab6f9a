package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/manhsontran/topgo-rag-chatbot/internal/classifier"
	"github.com/manhsontran/topgo-rag-chatbot/internal/config"
	"github.com/manhsontran/topgo-rag-chatbot/internal/embedder"
	"github.com/manhsontran/topgo-rag-chatbot/internal/extractor"
	"github.com/manhsontran/topgo-rag-chatbot/internal/generator"
	"github.com/manhsontran/topgo-rag-chatbot/internal/llm"
	"github.com/manhsontran/topgo-rag-chatbot/internal/pipeline"
	"github.com/manhsontran/topgo-rag-chatbot/internal/retriever"
	"github.com/manhsontran/topgo-rag-chatbot/internal/store"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "topgo",
		Short: "TopGo — RAG chatbot for Hanoi restaurants, bars and karaoke",
		Long:  "TopGo answers Vietnamese venue questions by combining semantic vector search over crawled venue data with grounded LLM answer generation.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		chatCmd(),
		askCmd(),
		searchCmd(),
		indexCmd(),
		statsCmd(),
		districtsCmd(),
		healthCmd(),
		serveCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newEmbedder(logger *slog.Logger) embedder.Embedder {
	return embedder.NewOllamaEmbedder(
		cfg.Ollama.BaseURL,
		cfg.Ollama.EmbedModel,
		int(cfg.Search.VectorDimension),
		logger,
	)
}

func newStore(logger *slog.Logger) (store.Store, error) {
	return store.NewQdrantStore(
		cfg.Qdrant.Host,
		cfg.Qdrant.GRPCPort,
		cfg.Qdrant.Collection,
		cfg.Search.VectorDimension,
		cfg.Qdrant.UseTLS,
		logger,
	)
}

func newLLM(logger *slog.Logger) llm.Client {
	if cfg.LLM.Provider == "anthropic" {
		return llm.NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, logger)
	}
	return llm.NewOllamaClient(
		cfg.Ollama.BaseURL,
		cfg.Ollama.Model,
		time.Duration(cfg.LLM.GenerateTimeoutSecs)*time.Second,
		logger,
	)
}

// newPipeline assembles the full query pipeline from configuration.
func newPipeline(logger *slog.Logger) (*pipeline.Pipeline, store.Store, error) {
	st, err := newStore(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to store: %w", err)
	}

	client := newLLM(logger)
	emb := newEmbedder(logger)

	p := pipeline.New(
		classifier.New(client, logger),
		extractor.New(client, logger),
		retriever.New(emb, st, logger),
		generator.New(client, cfg.LLM.Temperature, cfg.LLM.MaxTokens, logger),
		logger,
	)
	p.SetDefaultTopK(cfg.Search.TopK)
	return p, st, nil
}

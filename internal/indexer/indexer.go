// Package indexer loads crawled venue data and builds the vector index.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/manhsontran/topgo-rag-chatbot/internal/embedder"
	"github.com/manhsontran/topgo-rag-chatbot/internal/gazetteer"
	"github.com/manhsontran/topgo-rag-chatbot/internal/metrics"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/internal/store"
)

// embedBatchSize is how many venue texts go into one embedding request.
const embedBatchSize = 32

// embedWorkers bounds concurrent embedding batches. The embedding service
// runs one model; a small fan-out keeps it busy without queue blowup.
const embedWorkers = 4

// venueRecord is the crawler's JSON output shape for one venue.
type venueRecord struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	BusinessType   string   `json:"business_type"`
	District       string   `json:"district"`
	PriceRange     string   `json:"price_range"`
	AvgPrice       int64    `json:"avg_price"`
	Phone          string   `json:"phone"`
	Address        string   `json:"address"`
	URL            string   `json:"url"`
	CuisineType    []string `json:"cuisine_type"`
	Features       []string `json:"features"`
	Description    string   `json:"description"`
	SearchableText string   `json:"searchable_text"`
}

// Indexer embeds venue documents and writes them to the vector index.
type Indexer struct {
	embedder embedder.Embedder
	store    store.Store
	logger   *slog.Logger
}

// New creates an indexer over the given embedder and store.
func New(emb embedder.Embedder, st store.Store, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{embedder: emb, store: st, logger: logger}
}

// Result summarizes one indexing run.
type Result struct {
	Loaded  int
	Indexed int
	Skipped int
}

// IndexFile loads crawled venues from a JSON file and indexes them.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading venues file: %w", err)
	}

	var records []venueRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing venues file: %w", err)
	}

	return ix.Index(ctx, records)
}

// Index embeds and upserts the given venue records. Records with no name
// are skipped; everything else is normalized and written.
func (ix *Indexer) Index(ctx context.Context, records []venueRecord) (*Result, error) {
	if err := ix.store.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("ensuring collection: %w", err)
	}

	res := &Result{Loaded: len(records)}

	type doc struct {
		venue models.Venue
		text  string
	}
	docs := make([]doc, 0, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			res.Skipped++
			continue
		}
		docs = append(docs, doc{
			venue: recordToVenue(rec, i),
			text:  embeddingText(rec),
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)

	indexed := make([]int, (len(docs)+embedBatchSize-1)/embedBatchSize)
	for b := 0; b*embedBatchSize < len(docs); b++ {
		b := b
		start := b * embedBatchSize
		end := start + embedBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, d := range batch {
				texts[i] = d.text
			}

			vectors, err := ix.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embedding batch %d: %w", b, err)
			}
			if len(vectors) != len(batch) {
				return fmt.Errorf("embedding batch %d: got %d vectors for %d texts", b, len(vectors), len(batch))
			}

			for i, d := range batch {
				if err := ix.store.Upsert(gctx, d.venue, vectors[i]); err != nil {
					return fmt.Errorf("upserting venue %s: %w", d.venue.ID, err)
				}
				indexed[b]++
				metrics.Inc(metrics.VenuesIndexed)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, n := range indexed {
		res.Indexed += n
	}
	ix.logger.Info("indexing complete", "loaded", res.Loaded, "indexed", res.Indexed, "skipped", res.Skipped)
	return res, nil
}

// recordToVenue normalizes one crawler record into the canonical model.
func recordToVenue(rec venueRecord, ordinal int) models.Venue {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = fmt.Sprintf("venue_%d", ordinal)
	}

	category := models.CategoryOther
	if c, ok := models.ParseCategory(rec.BusinessType); ok {
		category = c
	}

	tier := models.PriceModerate
	if p, ok := models.ParsePriceTier(rec.PriceRange); ok {
		tier = p
	} else if rec.AvgPrice > 0 {
		tier = models.PriceTierFromAmount(rec.AvgPrice)
	}

	district := strings.TrimSpace(rec.District)
	if canonical, ok := gazetteer.Canonical(district); ok {
		district = canonical
	}

	return models.Venue{
		ID:        id,
		Name:      strings.TrimSpace(rec.Name),
		Category:  category,
		District:  district,
		PriceTier: tier,
		Phone:     strings.TrimSpace(rec.Phone),
		Address:   strings.TrimSpace(rec.Address),
		URL:       strings.TrimSpace(rec.URL),
		Cuisines:  rec.CuisineType,
		Features:  rec.Features,
	}
}

// embeddingText is the document embedded for a venue: the crawler's
// searchable text when present, otherwise a composite of the key fields.
func embeddingText(rec venueRecord) string {
	if t := strings.TrimSpace(rec.SearchableText); t != "" {
		return t
	}
	parts := []string{rec.Name, rec.Description, rec.Address, rec.District}
	parts = append(parts, rec.CuisineType...)
	joined := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			joined = append(joined, p)
		}
	}
	return strings.Join(joined, " ")
}

package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
)

const (
	qdrantDialTimeout  = 10 * time.Second
	qdrantReadTimeout  = 10 * time.Second
	qdrantWriteTimeout = 30 * time.Second
)

// pointNamespace is the UUID namespace for deriving Qdrant point IDs from
// stable venue IDs. Qdrant only accepts UUID or integer point IDs, and the
// crawler emits string IDs like "rest_42"; SHA1 UUIDs keep reindexing
// idempotent.
var pointNamespace = uuid.MustParse("3f1c7a52-9d4e-4b6a-8c0f-2e5d1b7a9c33")

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}

// QdrantStore implements Store using Qdrant's gRPC API. The collection uses
// the Euclid metric, so search scores come back as distances (smaller is
// closer) and the retriever's 1/(1+d) conversion applies directly.
type QdrantStore struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection pb.CollectionsClient
	collName   string
	dimension  uint64
	logger     *slog.Logger
}

// NewQdrantStore creates a new Qdrant store connection.
func NewQdrantStore(host string, port int, collection string, dimension uint64, useTLS bool, logger *slog.Logger) (*QdrantStore, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	opts := []grpc.DialOption{}
	if !useTLS {
		logger.Warn("Qdrant connection using insecure credentials (no TLS)")
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to Qdrant at %s: %w", addr, err)
	}

	// Verify the connection with a timeout by issuing a lightweight RPC.
	dialCtx, dialCancel := context.WithTimeout(context.Background(), qdrantDialTimeout)
	defer dialCancel()
	if _, err := pb.NewCollectionsClient(conn).List(dialCtx, &pb.ListCollectionsRequest{}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("verifying Qdrant connection at %s: %w", addr, err)
	}

	logger.Info("connected to Qdrant", "addr", addr, "collection", collection)

	return &QdrantStore{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: pb.NewCollectionsClient(conn),
		collName:   collection,
		dimension:  dimension,
		logger:     logger,
	}, nil
}

func (q *QdrantStore) EnsureCollection(ctx context.Context) error {
	rctx, rcancel := withTimeout(ctx, qdrantReadTimeout)
	defer rcancel()
	resp, err := q.collection.List(rctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}

	for _, c := range resp.GetCollections() {
		if c.GetName() == q.collName {
			q.logger.Info("collection already exists", "name", q.collName)
			return nil
		}
	}

	wctx, wcancel := withTimeout(ctx, qdrantWriteTimeout)
	defer wcancel()
	_, err = q.collection.Create(wctx, &pb.CreateCollection{
		CollectionName: q.collName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     q.dimension,
					Distance: pb.Distance_Euclid,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", q.collName, err)
	}

	q.logger.Info("created collection", "name", q.collName, "dimension", q.dimension)

	// Payload indexes for the three filterable dimensions.
	indexFields := []string{"category", "district", "price_tier"}
	for _, field := range indexFields {
		ictx, icancel := withTimeout(ctx, qdrantWriteTimeout)
		defer icancel()
		_, err := q.points.CreateFieldIndex(ictx, &pb.CreateFieldIndexCollection{
			CollectionName: q.collName,
			FieldName:      field,
			FieldType:      pb.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			q.logger.Warn("creating field index", "field", field, "error", err)
		}
	}

	return nil
}

func (q *QdrantStore) Upsert(ctx context.Context, venue models.Venue, vector []float32) error {
	ctx, cancel := withTimeout(ctx, qdrantWriteTimeout)
	defer cancel()

	pointID := uuid.NewSHA1(pointNamespace, []byte(venue.ID)).String()
	_, err := q.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: q.collName,
		Points: []*pb.PointStruct{
			{
				Id: &pb.PointId{
					PointIdOptions: &pb.PointId_Uuid{Uuid: pointID},
				},
				Vectors: &pb.Vectors{
					VectorsOptions: &pb.Vectors_Vector{
						Vector: &pb.Vector{Data: vector},
					},
				},
				Payload: venueToPayload(venue),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("upserting venue %s: %w", venue.ID, err)
	}

	q.logger.Debug("upserted venue", "id", venue.ID, "name", venue.Name)
	return nil
}

func (q *QdrantStore) Query(ctx context.Context, vector []float32, k int, filters models.Filters) ([]Hit, error) {
	ctx, cancel := withTimeout(ctx, qdrantReadTimeout)
	defer cancel()

	req := &pb.SearchPoints{
		CollectionName: q.collName,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
	if f := buildFilter(filters); f != nil {
		req.Filter = f
	}

	resp, err := q.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching venues: %w", err)
	}

	hits := make([]Hit, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		venue := payloadToVenue(point.GetPayload())
		hits = append(hits, Hit{
			Venue:    venue,
			Distance: float64(point.GetScore()),
		})
	}

	return hits, nil
}

func (q *QdrantStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, qdrantReadTimeout)
	defer cancel()
	info, err := q.collection.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: q.collName,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}
	return int64(info.GetResult().GetPointsCount()), nil
}

// Stats returns collection statistics. Category and tier counts are fetched
// concurrently.
func (q *QdrantStore) Stats(ctx context.Context) (*models.IndexStats, error) {
	total, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.IndexStats{
		TotalVenues: total,
		ByCategory:  make(map[string]int64),
		ByPriceTier: make(map[string]int64),
	}

	type task struct {
		field string
		key   string
	}
	var tasks []task
	for _, c := range models.ValidCategories {
		tasks = append(tasks, task{field: "category", key: string(c)})
	}
	for _, p := range models.ValidPriceTiers {
		tasks = append(tasks, task{field: "price_tier", key: string(p)})
	}

	counts := make([]int64, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tasks {
		g.Go(func() error {
			cctx, ccancel := withTimeout(gctx, qdrantReadTimeout)
			defer ccancel()
			resp, err := q.points.Count(cctx, &pb.CountPoints{
				CollectionName: q.collName,
				Filter: &pb.Filter{
					Must: []*pb.Condition{keywordCondition(t.field, t.key)},
				},
				Exact: boolPtr(true),
			})
			if err != nil {
				// Non-fatal: log and report 0 for this bucket.
				q.logger.Warn("counting by field", "field", t.field, "key", t.key, "error", err)
				return nil
			}
			counts[i] = int64(resp.GetResult().GetCount())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("counting stats: %w", err)
	}

	for i, t := range tasks {
		switch t.field {
		case "category":
			stats.ByCategory[t.key] = counts[i]
		case "price_tier":
			stats.ByPriceTier[t.key] = counts[i]
		}
	}

	return stats, nil
}

func (q *QdrantStore) Close() error {
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// --- Helper functions ---

func venueToPayload(v models.Venue) map[string]*pb.Value {
	payload := map[string]*pb.Value{
		"venue_id":   {Kind: &pb.Value_StringValue{StringValue: v.ID}},
		"name":       {Kind: &pb.Value_StringValue{StringValue: v.Name}},
		"category":   {Kind: &pb.Value_StringValue{StringValue: string(v.Category)}},
		"district":   {Kind: &pb.Value_StringValue{StringValue: v.District}},
		"price_tier": {Kind: &pb.Value_StringValue{StringValue: string(v.PriceTier)}},
		"phone":      {Kind: &pb.Value_StringValue{StringValue: v.Phone}},
		"address":    {Kind: &pb.Value_StringValue{StringValue: v.Address}},
		"url":        {Kind: &pb.Value_StringValue{StringValue: v.URL}},
	}

	// Tag sets travel as comma-joined strings, matching the crawler output.
	if len(v.Cuisines) > 0 {
		payload["cuisines"] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: strings.Join(v.Cuisines, ",")}}
	}
	if len(v.Features) > 0 {
		payload["features"] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: strings.Join(v.Features, ",")}}
	}

	return payload
}

func payloadToVenue(payload map[string]*pb.Value) models.Venue {
	return models.Venue{
		ID:        getStringValue(payload, "venue_id"),
		Name:      getStringValue(payload, "name"),
		Category:  models.Category(getStringValue(payload, "category")),
		District:  getStringValue(payload, "district"),
		PriceTier: models.PriceTier(getStringValue(payload, "price_tier")),
		Phone:     getStringValue(payload, "phone"),
		Address:   getStringValue(payload, "address"),
		URL:       getStringValue(payload, "url"),
		Cuisines:  splitList(getStringValue(payload, "cuisines")),
		Features:  splitList(getStringValue(payload, "features")),
	}
}

func buildFilter(f models.Filters) *pb.Filter {
	var conditions []*pb.Condition

	if f.District != "" {
		conditions = append(conditions, keywordCondition("district", f.District))
	}
	if f.Category != "" {
		conditions = append(conditions, keywordCondition("category", string(f.Category)))
	}
	if f.PriceTier != "" {
		conditions = append(conditions, keywordCondition("price_tier", string(f.PriceTier)))
	}

	if len(conditions) == 0 {
		return nil
	}
	return &pb.Filter{Must: conditions}
}

func keywordCondition(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   key,
				Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
			},
		},
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func boolPtr(v bool) *bool { return &v }

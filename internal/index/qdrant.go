package index

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var qdrantTracer = otel.Tracer("docscope.index.qdrant")

// QdrantConfig holds configuration for the Qdrant gRPC backend.
type QdrantConfig struct {
	// Host is the Qdrant server hostname. Default: "localhost".
	Host string

	// Port is the Qdrant gRPC port (not the HTTP REST port).
	// Default: 6334.
	Port int

	// VectorSize is the embedding dimensionality, required to create
	// collections. Must match the embedder's output dimension.
	VectorSize uint64

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// Lambda is the MMR diversity penalty in [0, 1]. Nil means
	// DefaultLambda; an explicit zero disables the penalty (pure
	// similarity ranking).
	Lambda *float32
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Lambda == nil {
		lambda := DefaultLambda
		c.Lambda = &lambda
	}
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.VectorSize == 0 {
		return fmt.Errorf("vector size required")
	}
	if c.Lambda != nil {
		if err := validateLambda(*c.Lambda); err != nil {
			return err
		}
	}
	return nil
}

// QdrantStore implements Store against an external Qdrant server using the
// native gRPC client. Each namespace maps to its own Qdrant collection.
//
// Downstream failures surface as retryable errors; retry and backoff policy
// belongs to the caller, not this adapter.
type QdrantStore struct {
	client   *qdrant.Client
	embedder Embedder
	config   QdrantConfig
	lambda   float32
	logger   *zap.Logger
}

// NewQdrantStore connects to Qdrant and verifies the connection with a
// health check.
func NewQdrantStore(config QdrantConfig, embedder Embedder, logger *zap.Logger) (*QdrantStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		UseTLS: config.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: health check: %v", ErrConnectionFailed, err)
	}

	logger.Info("qdrant index connected",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
	)

	return &QdrantStore{
		client:   client,
		embedder: embedder,
		config:   config,
		lambda:   *config.Lambda,
		logger:   logger,
	}, nil
}

// AddChunks embeds all chunk texts and upserts them into the named
// collection, creating it on first write.
func (s *QdrantStore) AddChunks(ctx context.Context, collection string, chunks []Chunk) ([]string, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.AddChunks")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("chunk_count", len(chunks)),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyChunks
	}

	texts := make([]string, len(chunks))
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		if chunk.ID == "" {
			return nil, fmt.Errorf("chunk at index %d has no ID", i)
		}
		texts[i] = chunk.Text
		ids[i] = chunk.ID
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	if err := s.ensureCollection(ctx, collection); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		payload := map[string]*qdrant.Value{
			"content": {Kind: &qdrant.Value_StringValue{StringValue: chunk.Text}},
			"id":      {Kind: &qdrant.Value_StringValue{StringValue: chunk.ID}},
		}
		for k, v := range chunk.Metadata {
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
		}

		// Qdrant point ids must be UUIDs; the chunk id is preserved in the
		// payload for retrieval.
		pointID := chunk.ID
		if _, err := uuid.Parse(pointID); err != nil {
			pointID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(collection+"/"+chunk.ID)).String()
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: payload,
		}
	}

	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStoreWriteFailed, err)
	}

	span.SetStatus(codes.Ok, "success")
	s.logger.Debug("chunks upserted",
		zap.String("collection", collection),
		zap.Int("count", len(chunks)),
	)
	return ids, nil
}

// Query fetches the fetchK nearest candidates with their stored vectors and
// MMR-selects k of them. An absent collection yields an empty result set.
func (s *QdrantStore) Query(ctx context.Context, collection, query string, k, fetchK int) ([]ScoredChunk, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.Query")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("k", k),
		attribute.Int("fetch_k", fetchK),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if err := validateQueryParams(k, fetchK); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidParameters)
	}

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !exists {
		span.SetStatus(codes.Ok, "collection not found")
		return []ScoredChunk{}, nil
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(fetchK)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	candidates := make([]mmrCandidate, 0, len(results))
	for _, point := range results {
		chunk := Chunk{Metadata: make(map[string]string)}
		for key, value := range point.GetPayload() {
			str, ok := value.Kind.(*qdrant.Value_StringValue)
			if !ok {
				continue
			}
			switch key {
			case "content":
				chunk.Text = str.StringValue
			case "id":
				chunk.ID = str.StringValue
			default:
				chunk.Metadata[key] = str.StringValue
			}
		}
		candidates = append(candidates, mmrCandidate{
			chunk:  ScoredChunk{Chunk: chunk, Score: point.GetScore()},
			vector: point.GetVectors().GetVector().GetData(),
		})
	}
	selected := selectMMR(candidates, k, s.lambda)

	span.SetAttributes(attribute.Int("results_count", len(selected)))
	span.SetStatus(codes.Ok, "success")
	return selected, nil
}

// ensureCollection creates the collection if it does not exist yet.
func (s *QdrantStore) ensureCollection(ctx context.Context, collection string) error {
	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.config.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return fmt.Errorf("%w: creating collection %s: %v", ErrStoreWriteFailed, collection, err)
	}
	return nil
}

// CollectionExists reports whether the named collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return false, err
	}
	_, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == grpccodes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("checking collection %s: %w", collection, err)
	}
	return true, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Ensure QdrantStore implements Store.
var _ Store = (*QdrantStore)(nil)

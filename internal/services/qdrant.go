package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const (
	payloadProjectID = "projectId"
	payloadText      = "text"
	payloadAddedAt   = "addedAt"
)

// projectNamespace seeds deterministic point ids so re-storing a project id overwrites its point.
var projectNamespace = uuid.MustParse("5d0f3b7e-8a53-4c7d-9a53-2f1f0c8e6a41")

type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertProject(ctx context.Context, projectID string, text string, payload map[string]any, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error)
	DeleteProject(ctx context.Context, projectID string) error
}

type SearchResult struct {
	ProjectID string
	Score     float32
	Text      string
	Metadata  map[string]any
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize uint64, log *zap.Logger) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		logger:         log.Named("qdrant"),
	}, nil
}

// PointID returns the Qdrant point id for a project id.
func PointID(projectID string) string {
	return uuid.NewSHA1(projectNamespace, []byte(projectID)).String()
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %v: %w", err, ErrUpstreamCall)
	}

	if exists {
		q.logger.Info("collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %v: %w", err, ErrUpstreamCall)
	}

	// Keyword index so deletes by projectId filter stay cheap.
	_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collectionName,
		FieldName:      payloadProjectID,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		q.logger.Warn("failed to create projectId index", zap.Error(err))
	}

	q.logger.Info("collection created",
		zap.String("collection", q.collectionName),
		zap.Uint64("vector_size", q.vectorSize),
	)
	return nil
}

// UpsertProject implements QdrantService.
func (q *qdrantService) UpsertProject(ctx context.Context, projectID string, text string, payload map[string]any, embedding []float32) error {
	values := make(map[string]any, len(payload)+2)
	for key, value := range payload {
		values[key] = toPayloadValue(value)
	}
	values[payloadProjectID] = projectID
	values[payloadText] = text

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(PointID(projectID)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(values),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %v: %w", err, ErrUpstreamCall)
	}

	return nil
}

// SearchSimilar implements QdrantService.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %v: %w", err, ErrUpstreamCall)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		result := SearchResult{
			Score:    point.Score,
			Metadata: make(map[string]any, len(point.Payload)),
		}

		for key, value := range point.Payload {
			switch key {
			case payloadProjectID:
				result.ProjectID = value.GetStringValue()
			case payloadText:
				result.Text = value.GetStringValue()
			default:
				result.Metadata[key] = fromPayloadValue(value)
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// DeleteProject implements QdrantService.
func (q *qdrantService) DeleteProject(ctx context.Context, projectID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(payloadProjectID, projectID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete project: %v: %w", err, ErrUpstreamCall)
	}

	return nil
}

// toPayloadValue narrows arbitrary metadata to the types qdrant.NewValueMap accepts.
func toPayloadValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, int, int32, int64, uint, uint32, uint64, float32, float64:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toPayloadValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toPayloadValue(item)
		}
		return out
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func fromPayloadValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_StructValue:
		fields := kind.StructValue.GetFields()
		out := make(map[string]any, len(fields))
		for k, item := range fields {
			out[k] = fromPayloadValue(item)
		}
		return out
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = fromPayloadValue(item)
		}
		return out
	default:
		return nil
	}
}

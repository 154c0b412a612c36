package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const upsertBatchSize = 500

// VectorDocument is one posting prepared for indexing: the text that gets
// embedded plus the identifying metadata the matcher later injects into the
// LLM context.
type VectorDocument struct {
	JobID    int
	Content  string
	Metadata map[string]string
}

type VectorHit struct {
	JobID    int
	Score    float32
	Content  string
	Metadata map[string]string
}

type VectorStore interface {
	InitCollection(ctx context.Context) error
	AddDocuments(ctx context.Context, docs []VectorDocument) error
	QueryByText(ctx context.Context, text string, limit int) ([]VectorHit, error)
	FetchByJobIDs(ctx context.Context, jobIDs []int) ([]VectorHit, error)
	GetByJobID(ctx context.Context, jobID int) (*VectorHit, error)
	DeleteByJobID(ctx context.Context, jobID int) error
	Count(ctx context.Context) (uint64, error)
}

type qdrantStore struct {
	client         *qdrant.Client
	gemini         GeminiService
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewQdrantStore(urlStr, apiKey, collectionName string, gemini GeminiService, logger *zap.Logger) (VectorStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one.
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

	return &qdrantStore{
		client:         client,
		gemini:         gemini,
		collectionName: collectionName,
		vectorSize:     768,
		logger:         logger,
	}, nil
}

func (q *qdrantStore) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
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
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// AddDocuments embeds and upserts postings in batches. Point ids reuse the
// relational job id, so re-indexing the same feed overwrites instead of
// duplicating.
func (q *qdrantStore) AddDocuments(ctx context.Context, docs []VectorDocument) error {
	points := make([]*qdrant.PointStruct, 0, upsertBatchSize)

	flush := func() error {
		if len(points) == 0 {
			return nil
		}
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.collectionName,
			Points:         points,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert points: %w", err)
		}
		points = points[:0]
		return nil
	}

	for _, doc := range docs {
		embedding, err := q.gemini.GenerateEmbedding(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("failed to embed job %d: %w", doc.JobID, err)
		}

		payload := map[string]interface{}{
			"job_id":  strconv.Itoa(doc.JobID),
			"content": doc.Content,
		}
		for key, value := range doc.Metadata {
			payload[key] = value
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(doc.JobID)),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(payload),
		})

		if len(points) >= upsertBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

func (q *qdrantStore) QueryByText(ctx context.Context, text string, limit int) ([]VectorHit, error) {
	embedding, err := q.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	hits := make([]VectorHit, 0, len(scored))
	for _, point := range scored {
		hit := hitFromPayload(point.Payload)
		hit.Score = point.Score
		hits = append(hits, hit)
	}
	return hits, nil
}

// FetchByJobIDs pulls documents for an explicit id set without a vector
// search. Used when the relational filter has already decided the candidates.
func (q *qdrantStore) FetchByJobIDs(ctx context.Context, jobIDs []int) ([]VectorHit, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}

	keywords := make([]string, 0, len(jobIDs))
	for _, id := range jobIDs {
		keywords = append(keywords, strconv.Itoa(id))
	}

	points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: q.collectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchKeywords("job_id", keywords...),
			},
		},
		Limit:       qdrant.PtrOf(uint32(len(jobIDs))),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch by job ids: %w", err)
	}

	hits := make([]VectorHit, 0, len(points))
	for _, point := range points {
		hits = append(hits, hitFromPayload(point.Payload))
	}
	return hits, nil
}

func (q *qdrantStore) GetByJobID(ctx context.Context, jobID int) (*VectorHit, error) {
	hits, err := q.FetchByJobIDs(ctx, []int{jobID})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	return &hits[0], nil
}

func (q *qdrantStore) DeleteByJobID(ctx context.Context, jobID int) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("job_id", strconv.Itoa(jobID)),
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
		return fmt.Errorf("failed to delete job %d: %w", jobID, err)
	}
	return nil
}

func (q *qdrantStore) Count(ctx context.Context) (uint64, error) {
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collectionName,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return count, nil
}

func hitFromPayload(payload map[string]*qdrant.Value) VectorHit {
	hit := VectorHit{Metadata: make(map[string]string, len(payload))}

	for key, value := range payload {
		str, ok := value.GetKind().(*qdrant.Value_StringValue)
		if !ok {
			continue
		}
		switch key {
		case "content":
			hit.Content = str.StringValue
		case "job_id":
			if id, err := strconv.Atoi(str.StringValue); err == nil {
				hit.JobID = id
			}
			hit.Metadata[key] = str.StringValue
		default:
			hit.Metadata[key] = str.StringValue
		}
	}
	return hit
}

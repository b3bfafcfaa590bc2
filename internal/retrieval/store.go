package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	apperrors "agent-orchestrator/internal/common/errors"
	"agent-orchestrator/internal/common/logger"
)

// Chunk is one retrieval hit. Score is cosine similarity mapped by the store;
// higher is more relevant.
type Chunk struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Source    string  `json:"source"`
	Namespace string  `json:"namespace"`
	Score     float64 `json:"score"`
}

// Point is one indexed document chunk.
type Point struct {
	ID        string
	Vector    []float32
	Text      string
	Source    string
	Namespace string
}

/// VectorStore is the wire contract against the similarity index: collection
// management, point upsert, and filtered top-k search.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float32, namespaces []string, k int) ([]Chunk, error)
}

// ESStore implements VectorStore over an Elasticsearch dense_vector index
// with cosine similarity.
type ESStore struct {
	client *elasticsearch.Client
	index  string
	dim    int
	logger logger.Logger
}

func NewESStore(client *elasticsearch.Client, index string, dim int, log logger.Logger) *ESStore {
	return &ESStore{
		client: client,
		index:  index,
		dim:    dim,
		logger: log.WithFields(map[string]interface{}{"component": "vector-store", "index": index}),
	}
}

// EnsureCollection creates the index with the configured dimensionality and
// cosine similarity if it does not exist yet.
func (s *ESStore) EnsureCollection(ctx context.Context) error {
	existsRes, err := s.client.Indices.Exists(
		[]string{s.index},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewVectorStoreUnavailableError(err)
	}
	defer existsRes.Body.Close()

	if existsRes.StatusCode == 200 {
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"vector": map[string]interface{}{
					"type":       "dense_vector",
					"dims":       s.dim,
					"index":      true,
					"similarity": "cosine",
				},
				"text":      map[string]interface{}{"type": "text"},
				"source":    map[string]interface{}{"type": "keyword"},
				"namespace": map[string]interface{}{"type": "keyword"},
			},
		},
	}
	body, _ := json.Marshal(mapping)

	createRes, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return apperrors.NewVectorStoreUnavailableError(err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		// A concurrent creator winning the race is fine.
		if createRes.StatusCode == 400 {
			return nil
		}
		return apperrors.NewVectorStoreUnavailableError(
			fmt.Errorf("create index %s: %s", s.index, createRes.Status()))
	}

	s.logger.Info("collection created", map[string]interface{}{"dim": s.dim})
	return nil
}

// Upsert bulk-indexes points, assigning ids to any point without one.
func (s *ESStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, p := range points {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": s.index, "_id": id},
		}
		doc := map[string]interface{}{
			"vector":    p.Vector,
			"text":      p.Text,
			"source":    p.Source,
			"namespace": p.Namespace,
		}
		metaLine, _ := json.Marshal(meta)
		docLine, _ := json.Marshal(doc)
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return apperrors.NewVectorStoreUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewVectorStoreUnavailableError(
			fmt.Errorf("bulk upsert: %s", res.Status()))
	}
	return nil
}

// Search runs a cosine kNN query. A non-empty namespace list becomes a
// should-match-one-of terms filter; an empty list searches unscoped.
func (s *ESStore) Search(ctx context.Context, vector []float32, namespaces []string, k int) ([]Chunk, error) {
	knn := map[string]interface{}{
		"field":          "vector",
		"query_vector":   vector,
		"k":              k,
		"num_candidates": numCandidates(k),
	}
	if len(namespaces) > 0 {
		knn["filter"] = map[string]interface{}{
			"terms": map[string]interface{}{"namespace": namespaces},
		}
	}

	query := map[string]interface{}{
		"knn":     knn,
		"_source": []string{"text", "source", "namespace"},
	}
	body, _ := json.Marshal(query)

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.NewVectorSearchFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewVectorSearchFailedError(
			fmt.Errorf("search %s: %s", s.index, res.Status()))
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperrors.NewVectorSearchFailedError(err)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Score  float64 `json:"_score"`
				Source struct {
					Text      string `json:"text"`
					Source    string `json:"source"`
					Namespace string `json:"namespace"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, apperrors.NewVectorSearchFailedError(err)
	}

	chunks := make([]Chunk, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		chunks = append(chunks, Chunk{
			ID:        hit.ID,
			Text:      hit.Source.Text,
			Source:    hit.Source.Source,
			Namespace: hit.Source.Namespace,
			Score:     hit.Score,
		})
	}
	return chunks, nil
}

func numCandidates(k int) int {
	n := k * 10
	if n < 50 {
		n = 50
	}
	return n
}

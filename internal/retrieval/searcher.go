package retrieval

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"agent-orchestrator/internal/common/logger"
	"agent-orchestrator/internal/common/metrics"
)

// stubChunks is the fixed degradation set served when the embedding provider
// or the vector store is unreachable. Retrieval never fails the pipeline.
var stubChunks = []Chunk{
	{ID: "stub1", Text: "KYC policy: verify ID and address for all new accounts.", Source: "bank/policies/kyc.md", Score: 0.89},
	{ID: "stub2", Text: "Queue triage: escalate if wait > 10 minutes for premium clients.", Source: "bank/ops/queue.md", Score: 0.77},
	{ID: "stub3", Text: "FAQ: appointment scheduling available via kiosk or web.", Source: "bank/faqs/appointments.md", Score: 0.72},
}

// Result is the outcome of one search. Degraded marks stub responses so the
// caller can observe fallbacks without treating them as errors.
type Result struct {
	Chunks   []Chunk
	Degraded bool
}

// Searcher composes an embedding provider and a vector store into the
// retrieval operation, with a bounded timeout, an optional Redis result
// cache, and stub degradation on any failure.
type Searcher struct {
	embedder Embedder
	store    VectorStore
	cache    *redis.Client // optional
	cacheTTL time.Duration
	timeout  time.Duration
	logger   logger.Logger
}

type SearcherOption func(*Searcher)

func WithCache(client *redis.Client, ttl time.Duration) SearcherOption {
	return func(s *Searcher) {
		s.cache = client
		s.cacheTTL = ttl
	}
}

func WithTimeout(timeout time.Duration) SearcherOption {
	return func(s *Searcher) {
		s.timeout = timeout
	}
}

func NewSearcher(embedder Embedder, store VectorStore, log logger.Logger, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		embedder: embedder,
		store:    store,
		timeout:  3 * time.Second,
		cacheTTL: 5 * time.Minute,
		logger:   log.WithFields(map[string]interface{}{"component": "retrieval"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns up to k chunks scoped to the namespace set. Every failure
// path degrades to the stub set; the only observable difference is the
// Degraded flag and telemetry.
func (s *Searcher) Search(ctx context.Context, query string, namespaces []string, userID string, k int) Result {
	if k <= 0 {
		return Result{Chunks: []Chunk{}}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cacheKey := s.cacheKey(query, namespaces, k)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return Result{Chunks: cached}
	}

	chunks, err := s.live(ctx, query, namespaces, k)
	if err != nil {
		s.logger.Warn("retrieval degraded to stub results", map[string]interface{}{
			"error":      err.Error(),
			"query":      query,
			"namespaces": namespaces,
			"userId":     userID,
		})
		metrics.RetrievalDegraded.Inc()
		return Result{Chunks: stubResults(k), Degraded: true}
	}

	s.cacheSet(ctx, cacheKey, chunks)
	return Result{Chunks: chunks}
}

func (s *Searcher) live(ctx context.Context, query string, namespaces []string, k int) ([]Chunk, error) {
	if err := s.store.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.store.Search(ctx, vector, namespaces, k)
}

// Document is raw ingestion input before chunking.
type Document struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

const chunkMaxLen = 650

// Ingest chunks, embeds, and upserts documents under a namespace. Returns
// the number of chunks written.
func (s *Searcher) Ingest(ctx context.Context, namespace string, docs []Document) (int, error) {
	if err := s.store.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	var points []Point
	for _, doc := range docs {
		for _, chunk := range chunkText(doc.Text, chunkMaxLen) {
			vector, err := s.embedder.Embed(ctx, chunk)
			if err != nil {
				return 0, err
			}
			points = append(points, Point{
				Vector:    vector,
				Text:      chunk,
				Source:    doc.Source,
				Namespace: namespace,
			})
		}
	}

	if err := s.store.Upsert(ctx, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

// chunkText splits on words, emitting a chunk once the accumulated length
// reaches maxLen.
func chunkText(text string, maxLen int) []string {
	words := strings.Fields(text)
	var chunks []string
	var buf []string
	size := 0
	for _, w := range words {
		buf = append(buf, w)
		size += len(w) + 1
		if size >= maxLen {
			chunks = append(chunks, strings.Join(buf, " "))
			buf = nil
			size = 0
		}
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}
	return chunks
}

func stubResults(k int) []Chunk {
	if k > len(stubChunks) {
		k = len(stubChunks)
	}
	out := make([]Chunk, k)
	copy(out, stubChunks[:k])
	return out
}

func (s *Searcher) cacheKey(query string, namespaces []string, k int) string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(query)))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(namespaces, ",")))
	h.Write([]byte{byte(k)})
	return "rag:search:" + hex.EncodeToString(h.Sum(nil))
}

func (s *Searcher) cacheGet(ctx context.Context, key string) ([]Chunk, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var chunks []Chunk
	if err := json.Unmarshal([]byte(val), &chunks); err != nil {
		return nil, false
	}
	return chunks, true
}

func (s *Searcher) cacheSet(ctx context.Context, key string, chunks []Chunk) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(chunks)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, data, s.cacheTTL)
}

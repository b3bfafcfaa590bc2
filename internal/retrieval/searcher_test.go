package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-orchestrator/internal/common/logger"
)

// fakeStore scripts VectorStore behavior per test.
type fakeStore struct {
	ensureErr error
	searchErr error
	chunks    []Chunk
	upserted  []Point
	searches  int
}

func (f *fakeStore) EnsureCollection(ctx context.Context) error { return f.ensureErr }

func (f *fakeStore) Upsert(ctx context.Context, points []Point) error {
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, vector []float32, namespaces []string, k int) ([]Chunk, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.chunks) > k {
		return f.chunks[:k], nil
	}
	return f.chunks, nil
}

func TestSearchLive(t *testing.T) {
	store := &fakeStore{chunks: []Chunk{
		{ID: "a", Text: "doc a", Namespace: "bank-policies", Score: 0.91},
		{ID: "b", Text: "doc b", Namespace: "bank-policies", Score: 0.84},
	}}
	s := NewSearcher(NewHashEmbedder(32), store, logger.NewTestLogger(t))

	res := s.Search(context.Background(), "kyc policy", []string{"bank-policies"}, "C001", 3)

	assert.False(t, res.Degraded)
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, "a", res.Chunks[0].ID)
}

func TestSearchDegradesOnStoreFailure(t *testing.T) {
	store := &fakeStore{searchErr: errors.New("connection refused")}
	s := NewSearcher(NewHashEmbedder(32), store, logger.NewTestLogger(t))

	res := s.Search(context.Background(), "anything", nil, "u1", 3)

	assert.True(t, res.Degraded)
	require.Len(t, res.Chunks, 3)
	assert.Equal(t, "stub1", res.Chunks[0].ID)
	assert.Equal(t, "bank/policies/kyc.md", res.Chunks[0].Source)
}

func TestSearchDegradesOnEnsureFailure(t *testing.T) {
	store := &fakeStore{ensureErr: errors.New("cluster down")}
	s := NewSearcher(NewHashEmbedder(32), store, logger.NewTestLogger(t))

	res := s.Search(context.Background(), "q", nil, "u1", 2)

	assert.True(t, res.Degraded)
	assert.Len(t, res.Chunks, 2, "stub set truncated to k")
	assert.Zero(t, store.searches, "search must not run when the collection check fails")
}

func TestSearchStubBound(t *testing.T) {
	store := &fakeStore{searchErr: errors.New("boom")}
	s := NewSearcher(NewHashEmbedder(32), store, logger.NewTestLogger(t))

	for _, k := range []int{1, 2, 3, 5, 10} {
		res := s.Search(context.Background(), "q", nil, "u1", k)
		want := k
		if want > len(stubChunks) {
			want = len(stubChunks)
		}
		assert.Len(t, res.Chunks, want, "k=%d", k)
	}
}

func TestSearchZeroK(t *testing.T) {
	s := NewSearcher(NewHashEmbedder(32), &fakeStore{}, logger.NewTestLogger(t))
	res := s.Search(context.Background(), "q", nil, "u1", 0)
	assert.Empty(t, res.Chunks)
	assert.False(t, res.Degraded)
}

func TestSearchCacheHit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := &fakeStore{chunks: []Chunk{{ID: "a", Text: "doc a", Score: 0.9}}}
	s := NewSearcher(NewHashEmbedder(32), store, logger.NewTestLogger(t),
		WithCache(rdb, time.Minute))

	first := s.Search(context.Background(), "repeat query", nil, "u1", 3)
	second := s.Search(context.Background(), "repeat query", nil, "u1", 3)

	assert.Equal(t, first.Chunks, second.Chunks)
	assert.Equal(t, 1, store.searches, "second call must be served from cache")
}

func TestIngestChunksAndUpserts(t *testing.T) {
	store := &fakeStore{}
	s := NewSearcher(NewHashEmbedder(32), store, logger.NewTestLogger(t))

	long := ""
	for i := 0; i < 300; i++ {
		long += "word "
	}
	count, err := s.Ingest(context.Background(), "bank-policies", []Document{
		{Text: long, Source: "bank/policies/kyc.md"},
		{Text: "short doc", Source: "bank/faqs/appointments.md"},
	})
	require.NoError(t, err)
	assert.Equal(t, count, len(store.upserted))
	assert.Greater(t, count, 2, "long document must be split into multiple chunks")

	for _, p := range store.upserted {
		assert.Equal(t, "bank-policies", p.Namespace)
		assert.Len(t, p.Vector, 32)
	}
}

func TestChunkText(t *testing.T) {
	chunks := chunkText("one two three four five", 10)
	require.NotEmpty(t, chunks)
	joined := ""
	for _, c := range chunks {
		joined += c + " "
	}
	assert.Contains(t, joined, "one two")
	assert.Contains(t, joined, "five")

	assert.Empty(t, chunkText("", 10))
}

package retrieval

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-orchestrator/internal/common/logger"
)

// newFakeES spins up an httptest server that the v8 client accepts.
func newFakeES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestESStoreSearchMapsHits(t *testing.T) {
	var gotBody map[string]interface{}
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{
				"hits": []map[string]interface{}{
					{
						"_id":    "p1",
						"_score": 0.93,
						"_source": map[string]interface{}{
							"text":      "KYC policy text",
							"source":    "bank/policies/kyc.md",
							"namespace": "bank-policies",
						},
					},
					{
						"_id":    "p2",
						"_score": 0.71,
						"_source": map[string]interface{}{
							"text":      "Appointment FAQ",
							"source":    "bank/faqs/appointments.md",
							"namespace": "bank-faqs",
						},
					},
				},
			},
		})
	})

	store := NewESStore(client, "docs", 32, logger.NewTestLogger(t))
	chunks, err := store.Search(context.Background(), make([]float32, 32), []string{"bank-policies", "bank-faqs"}, 3)
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "p1", chunks[0].ID)
	assert.Equal(t, 0.93, chunks[0].Score)
	assert.Equal(t, "bank-policies", chunks[0].Namespace)

	knn, ok := gotBody["knn"].(map[string]interface{})
	require.True(t, ok)
	assert.NotNil(t, knn["filter"], "namespace filter must be present")
}

func TestESStoreSearchUnscoped(t *testing.T) {
	var gotBody map[string]interface{}
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{"hits": []interface{}{}},
		})
	})

	store := NewESStore(client, "docs", 32, logger.NewTestLogger(t))
	chunks, err := store.Search(context.Background(), make([]float32, 32), nil, 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	knn := gotBody["knn"].(map[string]interface{})
	assert.Nil(t, knn["filter"], "empty namespace list means no filter")
}

func TestESStoreEnsureCollectionCreatesMissingIndex(t *testing.T) {
	created := false
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/docs"):
			var mapping map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&mapping))
			props := mapping["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
			vec := props["vector"].(map[string]interface{})
			assert.Equal(t, "dense_vector", vec["type"])
			assert.Equal(t, "cosine", vec["similarity"])
			assert.EqualValues(t, 32, vec["dims"])
			created = true
			json.NewEncoder(w).Encode(map[string]interface{}{"acknowledged": true})
		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	store := NewESStore(client, "docs", 32, logger.NewTestLogger(t))
	require.NoError(t, store.EnsureCollection(context.Background()))
	assert.True(t, created)
}

func TestESStoreEnsureCollectionIdempotent(t *testing.T) {
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	store := NewESStore(client, "docs", 32, logger.NewTestLogger(t))
	assert.NoError(t, store.EnsureCollection(context.Background()))
}

func TestESStoreUpsertBuildsBulkBody(t *testing.T) {
	var body string
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body = string(raw)
		w.Write([]byte(`{"errors": false}`))
	})

	store := NewESStore(client, "docs", 4, logger.NewTestLogger(t))
	err := store.Upsert(context.Background(), []Point{
		{Vector: []float32{1, 0, 0, 0}, Text: "a", Source: "s", Namespace: "ns"},
	})
	require.NoError(t, err)

	docLines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, docLines, 2, "one action line plus one doc line per point")
	assert.Contains(t, docLines[0], `"index"`)
	assert.Contains(t, docLines[1], `"namespace":"ns"`)
}

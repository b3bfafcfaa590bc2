package retrieval

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-orchestrator/internal/common/httpclient"
)

func TestHashEmbedDeterministic(t *testing.T) {
	e := NewHashEmbedder(512)

	a, err := e.Embed(context.Background(), "What are the KYC requirements?")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "What are the KYC requirements?")
	require.NoError(t, err)

	assert.Equal(t, a, b, "same text must yield bit-identical vectors")
}

func TestHashEmbedCaseFolding(t *testing.T) {
	e := NewHashEmbedder(512)

	a, err := e.Embed(context.Background(), "Account Balance")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "account balance")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashEmbedEmptyTextIsZeroVector(t *testing.T) {
	e := NewHashEmbedder(64)

	for _, text := range []string{"", "   ", "\t\n"} {
		vec, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		require.Len(t, vec, 64)
		for i, v := range vec {
			assert.Zerof(t, v, "component %d", i)
		}
	}
}

func TestHashEmbedUnitNorm(t *testing.T) {
	e := NewHashEmbedder(512)

	texts := []string{
		"What's my account balance?",
		"kyc policy verification documents passport",
		"a",
		"the quick brown fox jumps over the lazy dog and keeps running for a while",
	}
	for _, text := range texts {
		vec, err := e.Embed(context.Background(), text)
		require.NoError(t, err)

		var sumSquares float64
		for _, v := range vec {
			sumSquares += float64(v) * float64(v)
		}
		norm := math.Sqrt(sumSquares)
		// Short inputs can fall under the 1.0 normalization floor.
		assert.LessOrEqual(t, norm, 1.0+1e-5, "text %q", text)
		assert.Greater(t, norm, 0.0, "text %q", text)
	}
}

func TestHashEmbedDimensionality(t *testing.T) {
	for _, dim := range []int{16, 128, 512} {
		e := NewHashEmbedder(dim)
		vec, err := e.Embed(context.Background(), "hello world")
		require.NoError(t, err)
		assert.Len(t, vec, dim)
		assert.Equal(t, dim, e.Dim())
	}
}

func TestRemoteEmbed(t *testing.T) {
	const dim = 8
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		vec := make([]float32, dim)
		for i := range vec {
			vec[i] = 0.25
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": vec}},
		})
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(srv.URL, "test-model", "test-key", dim, httpclient.NewClient(2*time.Second))
	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, dim)
}

func TestRemoteEmbedErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(srv.URL, "m", "", 8, httpclient.NewClient(2*time.Second))
	_, err := e.Embed(context.Background(), "hello")
	assert.Error(t, err)
}

func TestRemoteEmbedDimMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float32{1, 2, 3}}},
		})
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(srv.URL, "m", "", 8, httpclient.NewClient(2*time.Second))
	_, err := e.Embed(context.Background(), "hello")
	assert.Error(t, err)
}

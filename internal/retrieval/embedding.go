package retrieval

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"strings"

	apperrors "agent-orchestrator/internal/common/errors"
	"agent-orchestrator/internal/common/httpclient"
)

// Embedder turns text into a fixed-length vector. Implementations must be
// interchangeable: same dimensionality, safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dim() int
}

// HashEmbedder is the local deterministic provider. Tokens are lower-cased
// whitespace splits; each token contributes ((sha256>>8) mod 1000)/1000 at
// index sha256 mod dim. The result is L2-normalized with the norm floored at
// 1.0, so empty text maps to the zero vector.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	return &HashEmbedder{dim: dim}
}

func (e *HashEmbedder) Dim() int { return e.dim }

func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, e.dim)
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return toFloat32(vec), nil
	}

	bigDim := big.NewInt(int64(e.dim))
	bigThousand := big.NewInt(1000)
	for _, tok := range tokens {
		sum := sha256.Sum256([]byte(tok))
		h := new(big.Int).SetBytes(sum[:])

		idx := new(big.Int).Mod(h, bigDim).Int64()
		val := new(big.Int).Mod(new(big.Int).Rsh(h, 8), bigThousand).Int64()
		vec[idx] += float64(val) / 1000.0
	}

	var sumSquares float64
	for _, v := range vec {
		sumSquares += v * v
	}
	norm := math.Sqrt(sumSquares)
	if norm < 1.0 {
		norm = 1.0
	}
	for i := range vec {
		vec[i] /= norm
	}

	return toFloat32(vec), nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

// RemoteEmbedder calls an OpenAI-compatible embeddings endpoint.
type RemoteEmbedder struct {
	url    string
	model  string
	apiKey string
	dim    int
	client *httpclient.Client
}

func NewRemoteEmbedder(url, model, apiKey string, dim int, client *httpclient.Client) *RemoteEmbedder {
	return &RemoteEmbedder{
		url:    url,
		model:  model,
		apiKey: apiKey,
		dim:    dim,
		client: client,
	}
}

func (e *RemoteEmbedder) Dim() int { return e.dim }

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (e *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embeddingRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, apperrors.NewEmbeddingFailedError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewEmbeddingFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, apperrors.NewEmbeddingFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, apperrors.NewEmbeddingFailedError(
			fmt.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, string(body)))
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.NewEmbeddingFailedError(err)
	}
	if len(out.Data) == 0 {
		return nil, apperrors.NewEmbeddingFailedError(fmt.Errorf("no embedding in response"))
	}
	if len(out.Data[0].Embedding) != e.dim {
		return nil, apperrors.NewEmbeddingFailedError(
			fmt.Errorf("embedding dimensionality mismatch: want %d, got %d", e.dim, len(out.Data[0].Embedding)))
	}

	return out.Data[0].Embedding, nil
}

// voyage.go adapts the teacher's internal/processor/embedding.go VoyageAI
// client into the generic Embedder capability: configurable dimension
// (spec.md §3 default 384, not the teacher's hardcoded 1024) and
// query/passage prefix awareness (spec.md §4.9), instead of a
// fileprocess-worker-specific DNA-layer client.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/cache"
	"github.com/nexus-talent/resume-match/internal/logging"
	"github.com/nexus-talent/resume-match/internal/model"
	"github.com/nexus-talent/resume-match/internal/retry"
)

// VoyageEmbedder calls VoyageAI's embeddings endpoint for a configured
// model/dimension pair, checking/populating the shared MD5-keyed LRU cache
// (spec.md §5) on every call so repeated text never hits the network twice.
type VoyageEmbedder struct {
	apiKey     string
	model      string
	dimension  int
	baseURL    string
	httpClient *http.Client
	cache      *cache.LRU
	log        *logging.Logger
}

type voyageRequest struct {
	Input           string `json:"input"`
	Model           string `json:"model"`
	OutputDimension int    `json:"output_dimension,omitempty"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewVoyageEmbedder builds a client for the given model/dimension, e.g.
// ("voyage-3-lite", 384), backed by an LRU cache of cacheSize entries.
func NewVoyageEmbedder(apiKey, model string, dimension, cacheSize int, log *logging.Logger) (*VoyageEmbedder, error) {
	if apiKey == "" {
		return nil, apperr.Unavailable("embedding model API key is required", nil)
	}
	if dimension <= 0 {
		dimension = 384
	}
	return &VoyageEmbedder{
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		baseURL:   "https://api.voyageai.com/v1/embeddings",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache.New(cacheSize),
		log:   log,
	}, nil
}

func (e *VoyageEmbedder) Dimension() int { return e.dimension }

// Encode implements Embedder. isQuery is not used here since the caller has
// already applied the "passage: "/"query: " text prefix before calling
// Encode.
func (e *VoyageEmbedder) Encode(ctx context.Context, text string, isQuery bool) (model.EmbeddingVector, error) {
	if text == "" {
		return nil, apperr.BadInput("text is required for embedding", nil)
	}

	key := cache.Key("", text)
	if cached, ok := e.cache.Get(key); ok {
		return model.EmbeddingVector(cached), nil
	}

	var result model.EmbeddingVector
	err := retry.Do(ctx, retry.Default, retry.AlwaysRetryable, func(ctx context.Context) error {
		vec, err := e.encodeOnce(ctx, text)
		if err != nil {
			return err
		}
		result = vec
		return nil
	})
	if err != nil {
		return nil, apperr.Upstream("embedding model request failed", err)
	}
	e.cache.Put(key, result)
	return result, nil
}

func (e *VoyageEmbedder) encodeOnce(ctx context.Context, text string) (model.EmbeddingVector, error) {
	reqBody := voyageRequest{Input: text, Model: e.model, OutputDimension: e.dimension}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding model returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed voyageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embedding response carried no data")
	}

	vec := parsed.Data[0].Embedding
	if e.log != nil {
		e.log.Debug("embedding generated", "model", e.model, "dimension", len(vec), "duration_ms", time.Since(start).Milliseconds())
	}
	if len(vec) != e.dimension {
		return nil, fmt.Errorf("unexpected embedding dimension: got %d, expected %d", len(vec), e.dimension)
	}
	return vec, nil
}

package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = string(openai.SmallEmbedding3)

// Config configures the embedding scorer.
type Config struct {
	// BaseURL points at an OpenAI-compatible embeddings endpoint. Empty
	// means the upstream OpenAI API.
	BaseURL string

	// APIKey authenticates against the endpoint.
	APIKey string

	// Model is the embedding model name. Default: text-embedding-3-small.
	Model string

	// Timeout bounds a single scoring call. Default: 10s.
	Timeout time.Duration
}

// Scorer scores requests against policy statements via embeddings. It is
// safe for concurrent use.
type Scorer struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a scorer from config.
func New(cfg Config) *Scorer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Scorer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   openai.EmbeddingModel(model),
		timeout: timeout,
		logger:  slog.Default().With("component", "gate.semantic"),
	}
}

// Score embeds the request together with every statement in one call and
// returns the cosine similarity of the request against each statement, in
// input order.
func (s *Scorer) Score(ctx context.Context, request string, statements []string) ([]float64, error) {
	if len(statements) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := make([]string, 0, len(statements)+1)
	input = append(input, request)
	input = append(input, statements...)

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: input,
		Model: s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("embeddings response has %d vectors, want %d", len(resp.Data), len(input))
	}

	// The API documents that Data preserves input order, but Index is
	// authoritative.
	vectors := make([][]float32, len(input))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings response has out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	reqVec := vectors[0]
	scores := make([]float64, len(statements))
	for i := range statements {
		scores[i] = cosine(reqVec, vectors[i+1])
	}
	s.logger.Debug("scored statements", "count", len(statements), "model", string(s.model))
	return scores, nil
}

// cosine computes cosine similarity between two vectors. Mismatched lengths
// or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

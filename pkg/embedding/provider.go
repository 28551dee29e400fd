package embedding

import (
	"context"
	"math"
)

// Dimensions is the vector size stored in the documents table.
const Dimensions = 768

// Task types understood by providers that distinguish query and document embeddings.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

// normalizeVector scales vec to unit length so cosine distance in pgvector stays accurate.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/pkg/embedding"
	"travel-chatbot-be/pkg/rag/state"
)

// Config encapsulates retrieval parameters
type Config struct {
	TopK          int
	CandidatePool int
	MinScore      float64
}

// DefaultConfig returns default retrieval configuration
func DefaultConfig() Config {
	return Config{
		TopK:          5,
		CandidatePool: 20,
		MinScore:      0.3,
	}
}

// Retriever runs vector search over the corpus and ranks the hits.
type Retriever struct {
	store    contract.VectorStore
	embedder embedding.EmbeddingProvider
	config   Config
	logger   logger.ILogger
}

func NewRetriever(store contract.VectorStore, embedder embedding.EmbeddingProvider, config Config, log logger.ILogger) *Retriever {
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	if config.CandidatePool < config.TopK {
		config.CandidatePool = config.TopK
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		config:   config,
		logger:   log,
	}
}

// Search embeds query and retrieves the k best documents for it.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]state.RetrievedDocument, error) {
	if strings.TrimSpace(query) == "" {
		return []state.RetrievedDocument{}, nil
	}

	res, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	return r.Retrieve(ctx, res.Embedding.Values, k)
}

// Retrieve returns up to k documents by descending similarity, one per source.
// An empty corpus yields an empty slice and no error.
func (r *Retriever) Retrieve(ctx context.Context, queryVector []float32, k int) ([]state.RetrievedDocument, error) {
	if k <= 0 {
		k = r.config.TopK
	}
	pool := r.config.CandidatePool
	if pool < k {
		pool = k
	}

	scored, err := r.store.SearchSimilarWithScore(ctx, queryVector, pool, r.config.MinScore)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	docs := rank(scored, r.config.MinScore, k)

	r.logger.Debug("RETRIEVER", "Vector search completed", map[string]interface{}{
		"candidates": len(scored),
		"kept":       len(docs),
		"k":          k,
	})
	return docs, nil
}

// rank drops hits under minScore, keeps the best chunk per source and truncates to k.
func rank(scored []*contract.ScoredDocument, minScore float64, k int) []state.RetrievedDocument {
	sorted := make([]*contract.ScoredDocument, 0, len(scored))
	for _, s := range scored {
		if s == nil || s.Document == nil || s.Similarity < minScore {
			continue
		}
		sorted = append(sorted, s)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Similarity > sorted[j].Similarity
	})

	docs := make([]state.RetrievedDocument, 0, k)
	seen := make(map[string]bool)
	for _, s := range sorted {
		id := sourceKey(s)
		if seen[id] {
			continue
		}
		seen[id] = true

		docs = append(docs, state.RetrievedDocument{
			ID:       id,
			Title:    s.Document.Title,
			Content:  s.Document.Content,
			Score:    s.Similarity,
			Metadata: s.Document.Metadata,
		})
		if len(docs) == k {
			break
		}
	}
	return docs
}

func sourceKey(s *contract.ScoredDocument) string {
	if s.Document.SourceId != "" {
		return s.Document.SourceId
	}
	return s.Document.Id.String()
}

package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/repository/contract"

	"github.com/google/uuid"
)

// DocumentStore is a brute-force cosine index for development and tests.
type DocumentStore struct {
	mu     sync.RWMutex
	chunks map[string][]*entity.Document // by SourceId
}

var _ contract.VectorStore = (*DocumentStore)(nil)

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{chunks: make(map[string][]*entity.Document)}
}

func (s *DocumentStore) ReplaceSource(ctx context.Context, sourceId string, chunks []*entity.Document) error {
	stored := make([]*entity.Document, 0, len(chunks))
	for _, c := range chunks {
		cp := *c
		if cp.Id == uuid.Nil {
			cp.Id = uuid.New()
		}
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now()
		}
		cp.SourceId = sourceId
		cp.Embedding = append([]float32(nil), c.Embedding...)
		stored = append(stored, &cp)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(stored) == 0 {
		delete(s.chunks, sourceId)
		return nil
	}
	s.chunks[sourceId] = stored
	return nil
}

func (s *DocumentStore) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	var scored []*contract.ScoredDocument
	for _, chunks := range s.chunks {
		for _, c := range chunks {
			sim := cosine(embedding, c.Embedding)
			if sim < threshold {
				continue
			}
			cp := *c
			scored = append(scored, &contract.ScoredDocument{Document: &cp, Similarity: sim})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Document.SourceId < scored[j].Document.SourceId
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *DocumentStore) ListSource(ctx context.Context, sourceId string) ([]*entity.Document, error) {
	s.mu.RLock()
	out := make([]*entity.Document, 0, len(s.chunks[sourceId]))
	for _, c := range s.chunks[sourceId] {
		cp := *c
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (s *DocumentStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, chunks := range s.chunks {
		n += int64(len(chunks))
	}
	return n, nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

package service

import (
	"context"
	"testing"

	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Source(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocumentStore()
	require.NoError(t, store.ReplaceSource(ctx, "pho-co-hoi-an", []*entity.Document{
		{Title: "Phố cổ Hội An", Content: "Đèn lồng về đêm.", ChunkIndex: 1, Embedding: []float32{1}},
		{Title: "Phố cổ Hội An", Content: "Di sản thế giới.", ChunkIndex: 0, Embedding: []float32{1},
			Metadata: map[string]interface{}{"province": "Quảng Nam"}},
	}))
	svc := NewDocumentService(nil, store)

	res, err := svc.Source(ctx, "pho-co-hoi-an")

	require.NoError(t, err)
	assert.Equal(t, "pho-co-hoi-an", res.SourceId)
	assert.Equal(t, "Phố cổ Hội An", res.Title)
	assert.Equal(t, "Quảng Nam", res.Metadata["province"])
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, 0, res.Chunks[0].ChunkIndex)
	assert.Equal(t, "Di sản thế giới.", res.Chunks[0].Content)
	assert.NotEmpty(t, res.Chunks[0].Id)
}

func TestDocumentService_SourceNotFound(t *testing.T) {
	svc := NewDocumentService(nil, memory.NewDocumentStore())

	res, err := svc.Source(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.Nil(t, res)
}

package mapper

import (
	"testing"
	"time"

	"travel-chatbot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMapper_PreservesFields(t *testing.T) {
	m := NewDocumentMapper()
	now := time.Now()
	in := &entity.Document{
		Id:         uuid.New(),
		SourceId:   "place-hoan-kiem",
		Title:      "Hồ Hoàn Kiếm",
		Content:    "Hồ nằm ở trung tâm Hà Nội.",
		Embedding:  []float32{0.1, 0.2, 0.3},
		Metadata:   map[string]interface{}{"city": "Hà Nội"},
		ChunkIndex: 2,
		UpdatedAt:  &now,
	}

	model := m.ToModel(in)
	assert.JSONEq(t, `{"city":"Hà Nội"}`, string(model.Metadata))

	out := m.ToEntity(model)
	require.NotNil(t, out)
	assert.Equal(t, in.SourceId, out.SourceId)
	assert.Equal(t, in.Embedding, out.Embedding)
	assert.Equal(t, "Hà Nội", out.Metadata["city"])
	assert.Equal(t, 2, out.ChunkIndex)
	assert.False(t, out.IsDeleted)
}

func TestDocumentMapper_Nil(t *testing.T) {
	m := NewDocumentMapper()
	assert.Nil(t, m.ToEntity(nil))
	assert.Nil(t, m.ToModel(nil))
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one embedded chunk of a corpus item (place, article, guide).
// Chunks of the same item share SourceId.
type Document struct {
	Id         uuid.UUID
	SourceId   string
	Title      string
	Content    string
	Embedding  []float32
	Metadata   map[string]interface{}
	ChunkIndex int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SourceId       string          `gorm:"type:varchar(255);not null;index"`
	Title          string          `gorm:"type:varchar(500);not null"`
	Content        string          `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	ChunkIndex     int             `gorm:"default:0"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunk struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection string            `gorm:"type:varchar(128);not null;uniqueIndex:idx_chunk_collection_key"`
	ChunkKey   string            `gorm:"type:varchar(64);not null;uniqueIndex:idx_chunk_collection_key"` // doc_<index>
	ChunkIndex int               `gorm:"not null;default:0"`
	Content    string            `gorm:"type:text"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding  pgvector.Vector   `gorm:"type:vector"` // dimension follows the embedding model
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

type VectorCollection struct {
	Name      string            `gorm:"type:varchar(128);primaryKey"`
	Distance  string            `gorm:"type:varchar(16);not null;default:cosine"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
}

func (VectorCollection) TableName() string {
	return "vector_collections"
}

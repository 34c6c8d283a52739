package mapper

import (
	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	return &entity.DocumentChunk{
		Id:               c.ChunkKey,
		Collection:       c.Collection,
		ChunkIndex:       c.ChunkIndex,
		Content:          c.Content,
		Source:           metadataString(c.Metadata, "source"),
		ExtractionMethod: metadataString(c.Metadata, "extraction_method"),
		Embedding:        c.Embedding.Slice(),
		CreatedAt:        c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	return &model.DocumentChunk{
		Collection: c.Collection,
		ChunkKey:   c.Id,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Metadata: datatypes.JSONMap{
			"chunk_index":       c.ChunkIndex,
			"source":            c.Source,
			"extraction_method": c.ExtractionMethod,
		},
		Embedding: pgvector.NewVector(c.Embedding),
		CreatedAt: c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModels(chunks []*entity.DocumentChunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}

func metadataString(meta datatypes.JSONMap, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return "Unknown"
}

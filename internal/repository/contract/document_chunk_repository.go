package contract

import (
	"context"

	"discharge-assistant-be/internal/entity"
)

// DocumentChunkRepository is the vector index. Chunks live in named collections;
// similarity is cosine distance.
type DocumentChunkRepository interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
	CreateCollection(ctx context.Context, collection string) error
	Count(ctx context.Context, collection string) (int64, error)
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	// DeleteByCollection drops every chunk of collection but keeps the collection.
	DeleteByCollection(ctx context.Context, collection string) error
	// SearchNearest returns at most limit chunks ordered by ascending distance.
	SearchNearest(ctx context.Context, collection string, embedding []float32, limit int) ([]*entity.ScoredChunk, error)
}

package implementation

import (
	"context"
	"errors"
	"fmt"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/mapper"
	"discharge-assistant-be/internal/model"
	"discharge-assistant-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// DocumentChunkRepositoryImpl is the Postgres/pgvector vector index.
type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) CollectionExists(ctx context.Context, collection string) (bool, error) {
	var c model.VectorCollection
	err := r.db.WithContext(ctx).Where("name = ?", collection).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *DocumentChunkRepositoryImpl) CreateCollection(ctx context.Context, collection string) error {
	c := &model.VectorCollection{Name: collection, Distance: "cosine"}
	return r.db.WithContext(ctx).Where(model.VectorCollection{Name: collection}).FirstOrCreate(c).Error
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentChunk{}).Where("collection = ?", collection).Count(&count).Error
	return count, err
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return fmt.Errorf("insert %d chunks: %w", len(models), err)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) DeleteByCollection(ctx context.Context, collection string) error {
	return r.db.WithContext(ctx).Where("collection = ?", collection).Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) SearchNearest(ctx context.Context, collection string, embedding []float32, limit int) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	// pgvector cosine distance: embedding <=> query
	type result struct {
		model.DocumentChunk
		Distance float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, (embedding <=> ?) AS distance", queryVector).
		Where("collection = ?", collection).
		Order("distance ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredChunk{
			Chunk:    r.mapper.ToEntity(&res.DocumentChunk),
			Distance: res.Distance,
		}
	}
	return scored, nil
}

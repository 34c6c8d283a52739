package implementation

import (
	"container/heap"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/repository/contract"
	"discharge-assistant-be/pkg/utils"
)

// SQLiteDocumentChunkRepositoryImpl keeps vectors as little-endian float32
// blobs and answers nearest-neighbour queries with a brute-force cosine scan.
type SQLiteDocumentChunkRepositoryImpl struct {
	db *sql.DB
}

var _ contract.DocumentChunkRepository = (*SQLiteDocumentChunkRepositoryImpl)(nil)

// NewSQLiteDocumentChunkRepository expects a database opened with database.OpenSQLite.
func NewSQLiteDocumentChunkRepository(db *sql.DB) *SQLiteDocumentChunkRepositoryImpl {
	return &SQLiteDocumentChunkRepositoryImpl{db: db}
}

func (r *SQLiteDocumentChunkRepositoryImpl) CollectionExists(ctx context.Context, collection string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vector_collections WHERE name = ?`, collection).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking collection %s: %w", collection, err)
	}
	return n > 0, nil
}

func (r *SQLiteDocumentChunkRepositoryImpl) CreateCollection(ctx context.Context, collection string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO vector_collections (name, distance, created_at) VALUES (?, 'cosine', ?)`,
		collection, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", collection, err)
	}
	return nil
}

func (r *SQLiteDocumentChunkRepositoryImpl) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks WHERE collection = ?`, collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

func (r *SQLiteDocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_chunks (id, collection, chunk_index, content, source, extraction_method, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, c.Id, c.Collection, c.ChunkIndex, c.Content, c.Source,
			c.ExtractionMethod, encodeFloat32s(c.Embedding), createdAt.Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting chunk %s: %w", c.Id, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteDocumentChunkRepositoryImpl) DeleteByCollection(ctx context.Context, collection string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("deleting chunks of %s: %w", collection, err)
	}
	return nil
}

// idDistance holds only the id and distance during the scan phase.
type idDistance struct {
	Id       string
	Distance float64
}

// farthestFirst is a max-heap on distance: the root is the worst of the current top-K.
type farthestFirst []idDistance

func (h farthestFirst) Len() int            { return len(h) }
func (h farthestFirst) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h farthestFirst) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *farthestFirst) Push(x interface{}) { *h = append(*h, x.(idDistance)) }
func (h *farthestFirst) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (r *SQLiteDocumentChunkRepositoryImpl) SearchNearest(ctx context.Context, collection string, embedding []float32, limit int) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	// Phase 1: scan only id + embedding.
	rows, err := r.db.QueryContext(ctx, `SELECT id, embedding FROM document_chunks WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}

	h := &farthestFirst{}
	var buf []float32
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		buf, err = decodeFloat32sInto(buf, blob)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding embedding for %s: %w", id, err)
		}

		d := utils.CosineDistance(embedding, buf)
		if h.Len() < limit {
			heap.Push(h, idDistance{Id: id, Distance: d})
		} else if d < (*h)[0].Distance {
			(*h)[0] = idDistance{Id: id, Distance: d}
			heap.Fix(h, 0)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	rows.Close()

	if h.Len() == 0 {
		return []*entity.ScoredChunk{}, nil
	}

	// Phase 2: fetch full records for the winners only.
	distances := make(map[string]float64, h.Len())
	args := []interface{}{collection}
	for _, item := range *h {
		distances[item.Id] = item.Distance
		args = append(args, item.Id)
	}

	query := `SELECT id, collection, chunk_index, content, source, extraction_method, created_at
		FROM document_chunks WHERE collection = ? AND id IN (?` + strings.Repeat(",?", len(distances)-1) + `)`
	fullRows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching top-K chunks: %w", err)
	}
	defer fullRows.Close()

	results := make([]*entity.ScoredChunk, 0, len(distances))
	for fullRows.Next() {
		var c entity.DocumentChunk
		var createdAt string
		if err := fullRows.Scan(&c.Id, &c.Collection, &c.ChunkIndex, &c.Content, &c.Source, &c.ExtractionMethod, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			c.CreatedAt = t
		}
		results = append(results, &entity.ScoredChunk{Chunk: &c, Distance: distances[c.Id]})
	}
	if err := fullRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	// IN (...) does not preserve order.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance == results[j].Distance {
			return results[i].Chunk.ChunkIndex < results[j].Chunk.ChunkIndex
		}
		return results[i].Distance < results[j].Distance
	})

	return results, nil
}

func encodeFloat32s(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeFloat32sInto reuses buf to avoid per-row allocations during scans.
func decodeFloat32sInto(buf []float32, b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("byte slice length %d is not a multiple of 4", len(b))
	}
	n := len(b) / 4
	if cap(buf) < n {
		buf = make([]float32, n)
	} else {
		buf = buf[:n]
	}
	for i := range buf {
		buf[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return buf, nil
}

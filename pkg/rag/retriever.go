// Package rag owns the document index: ingestion of the reference book into
// a vector collection and nearest-neighbour retrieval over it.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/internal/repository/contract"
	"discharge-assistant-be/pkg/document"
	"discharge-assistant-be/pkg/embedding"
	"discharge-assistant-be/pkg/outcome"
	"discharge-assistant-be/pkg/utils"
)

const (
	minExtractedRunes = 100
	progressEvery     = 500
)

var ErrInsufficientText = errors.New("extracted text too short to index")

type IndexState int

const (
	IndexUninitialized IndexState = iota
	IndexEmpty
	IndexPopulated
)

func (s IndexState) String() string {
	switch s {
	case IndexEmpty:
		return "empty"
	case IndexPopulated:
		return "populated"
	default:
		return "uninitialized"
	}
}

type Config struct {
	Collection   string
	SourceName   string
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	BatchSize    int
}

type IngestReport struct {
	Collection       string        `json:"collection"`
	SourcePath       string        `json:"source_path"`
	ExtractionMethod string        `json:"extraction_method,omitempty"`
	Chunks           int           `json:"chunks"`
	Skipped          bool          `json:"skipped"`
	Duration         time.Duration `json:"duration"`
}

type Stats struct {
	Collection string `json:"collection"`
	State      string `json:"state"`
	Exists     bool   `json:"exists"`
	Chunks     int64  `json:"chunks"`
}

type Retriever struct {
	repo     contract.DocumentChunkRepository
	embedder embedding.EmbeddingProvider
	splitter *utils.RecursiveSplitter
	cfg      Config
	log      logger.ILogger

	mu       sync.Mutex
	state    IndexState
	ingestMu sync.Mutex
}

func NewRetriever(repo contract.DocumentChunkRepository, embedder embedding.EmbeddingProvider, cfg Config, log logger.ILogger) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.SourceName == "" {
		cfg.SourceName = "nephrology_book"
	}
	return &Retriever{
		repo:     repo,
		embedder: embedder,
		splitter: utils.NewRecursiveSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg:      cfg,
		log:      log,
	}
}

// EnsureCollection resolves the index state once per process. An existing
// collection counts as populated; a missing one is created and reported empty.
func (r *Retriever) EnsureCollection(ctx context.Context) (IndexState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != IndexUninitialized {
		return r.state, nil
	}

	exists, err := r.repo.CollectionExists(ctx, r.cfg.Collection)
	if err != nil {
		return IndexUninitialized, err
	}
	if exists {
		r.state = IndexPopulated
		r.log.Info("RAG", "Loaded existing collection", map[string]interface{}{"collection": r.cfg.Collection})
		return r.state, nil
	}

	if err := r.repo.CreateCollection(ctx, r.cfg.Collection); err != nil {
		return IndexUninitialized, err
	}
	r.state = IndexEmpty
	r.log.Info("RAG", "Created new collection", map[string]interface{}{"collection": r.cfg.Collection})
	return r.state, nil
}

func (r *Retriever) setState(s IndexState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Ingest indexes the document at sourcePath unless the collection was already
// populated. Failures leave the collection empty for this process so a later
// call may retry.
func (r *Retriever) Ingest(ctx context.Context, sourcePath string) (IngestReport, error) {
	r.ingestMu.Lock()
	defer r.ingestMu.Unlock()

	began := time.Now()
	report := IngestReport{Collection: r.cfg.Collection, SourcePath: sourcePath}

	state, err := r.EnsureCollection(ctx)
	if err != nil {
		r.log.Error("RAG", "Failed to prepare collection", map[string]interface{}{"error": err.Error()})
		return report, fmt.Errorf("ensure collection: %w", err)
	}
	if state == IndexPopulated {
		report.Skipped = true
		return report, nil
	}

	doc, err := document.Convert(sourcePath)
	if err != nil {
		r.log.Error("RAG", "Source document unavailable", map[string]interface{}{"path": sourcePath, "error": err.Error()})
		return report, err
	}
	report.ExtractionMethod = doc.ExtractionMethod

	if utf8.RuneCountInString(strings.TrimSpace(doc.Text)) < minExtractedRunes {
		r.log.Error("RAG", "Failed to extract meaningful text from document", map[string]interface{}{"path": sourcePath})
		return report, ErrInsufficientText
	}
	r.log.Info("RAG", "Extracted document text", map[string]interface{}{
		"characters": utf8.RuneCountInString(doc.Text),
		"pages":      doc.Pages,
		"method":     doc.ExtractionMethod,
	})

	// A previous run may have stopped part way through.
	if err := r.repo.DeleteByCollection(ctx, r.cfg.Collection); err != nil {
		r.log.Error("RAG", "Clearing partial index failed", map[string]interface{}{"error": err.Error()})
		return report, fmt.Errorf("clear collection: %w", err)
	}

	chunks := r.splitter.Split(doc.Text)
	r.log.Info("RAG", "Created chunks from document", map[string]interface{}{"chunks": len(chunks)})

	total := 0
	batches := (len(chunks) + r.cfg.BatchSize - 1) / r.cfg.BatchSize
	for start := 0; start < len(chunks); start += r.cfg.BatchSize {
		end := start + r.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		r.log.Debug("RAG", "Generating embeddings for batch", map[string]interface{}{
			"batch": start/r.cfg.BatchSize + 1,
			"of":    batches,
		})
		vectors, err := r.embedder.GenerateBatch(ctx, batch, embedding.TaskRetrievalDocument)
		if err != nil {
			report.Chunks = total
			r.log.Error("RAG", "Embedding batch failed", map[string]interface{}{"offset": start, "error": err.Error()})
			return report, fmt.Errorf("embed batch at %d: %w", start, err)
		}

		records := make([]*entity.DocumentChunk, len(batch))
		for j, text := range batch {
			records[j] = &entity.DocumentChunk{
				Id:               fmt.Sprintf("doc_%d", start+j),
				Collection:       r.cfg.Collection,
				ChunkIndex:       start + j,
				Content:          text,
				Source:           r.cfg.SourceName,
				ExtractionMethod: doc.ExtractionMethod,
				Embedding:        vectors[j],
			}
		}
		if err := r.repo.CreateBulk(ctx, records); err != nil {
			report.Chunks = total
			r.log.Error("RAG", "Writing batch to index failed", map[string]interface{}{"offset": start, "error": err.Error()})
			return report, fmt.Errorf("store batch at %d: %w", start, err)
		}

		prev := total
		total += len(batch)
		if total/progressEvery > prev/progressEvery {
			r.log.Info("RAG", "Ingestion progress", map[string]interface{}{"processed": total, "total": len(chunks)})
		}
	}

	r.setState(IndexPopulated)
	report.Chunks = total
	report.Duration = time.Since(began)
	r.log.Info("RAG", "Successfully processed chunks into vector database", map[string]interface{}{
		"chunks":   total,
		"duration": report.Duration.String(),
	})
	return report, nil
}

// Search never fails hard: any error yields a degraded, empty result.
func (r *Retriever) Search(ctx context.Context, query string, topK int) outcome.Result[[]entity.RetrievalResult] {
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	vec, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		r.log.Error("RAG", "Error in RAG search", map[string]interface{}{"stage": "embed", "error": err.Error()})
		return outcome.Degraded([]entity.RetrievalResult{}, err)
	}

	scored, err := r.repo.SearchNearest(ctx, r.cfg.Collection, vec, topK)
	if err != nil {
		r.log.Error("RAG", "Error in RAG search", map[string]interface{}{"stage": "query", "error": err.Error()})
		return outcome.Degraded([]entity.RetrievalResult{}, err)
	}

	results := make([]entity.RetrievalResult, 0, len(scored))
	for _, s := range scored {
		results = append(results, entity.RetrievalResult{
			Content:    s.Chunk.Content,
			ChunkIndex: s.Chunk.ChunkIndex,
			Source:     s.Chunk.Source,
			Distance:   s.Distance,
		})
	}

	r.log.Info("RAG", "RAG search returned results", map[string]interface{}{"count": len(results)})
	return outcome.OK(results)
}

func (r *Retriever) Stats(ctx context.Context) (Stats, error) {
	exists, err := r.repo.CollectionExists(ctx, r.cfg.Collection)
	if err != nil {
		return Stats{}, err
	}
	var count int64
	if exists {
		if count, err = r.repo.Count(ctx, r.cfg.Collection); err != nil {
			return Stats{}, err
		}
	}

	r.mu.Lock()
	state := r.state
	r.mu.Unlock()

	return Stats{Collection: r.cfg.Collection, State: state.String(), Exists: exists, Chunks: count}, nil
}

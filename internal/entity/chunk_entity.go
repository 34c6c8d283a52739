package entity

import "time"

type DocumentChunk struct {
	Id               string
	Collection       string
	ChunkIndex       int
	Content          string
	Source           string
	ExtractionMethod string
	Embedding        []float32
	CreatedAt        time.Time
}

// ScoredChunk pairs a chunk with its cosine distance to a query (0 = identical).
type ScoredChunk struct {
	Chunk    *DocumentChunk
	Distance float64
}

type RetrievalResult struct {
	Content    string  `json:"content"`
	ChunkIndex int     `json:"chunk_index"`
	Source     string  `json:"source"`
	Distance   float64 `json:"distance"`
}

type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Url     string `json:"url"`
	Source  string `json:"source"`
}

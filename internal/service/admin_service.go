package service

import (
	"context"
	"fmt"

	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/pkg/rag"
)

type IndexInspector interface {
	Stats(ctx context.Context) (rag.Stats, error)
}

// IAdminService backs the operator endpoints.
type IAdminService interface {
	RequestIngestion(ctx context.Context, req *dto.IngestDocumentRequest, operator string) (*dto.IngestAcceptedResponse, error)
	IndexStats(ctx context.Context) (*rag.Stats, error)
}

type adminService struct {
	ingestion   IIngestionService
	index       IndexInspector
	defaultPath string
}

func NewAdminService(ingestion IIngestionService, index IndexInspector, defaultPath string) IAdminService {
	return &adminService{ingestion: ingestion, index: index, defaultPath: defaultPath}
}

func (s *adminService) RequestIngestion(ctx context.Context, req *dto.IngestDocumentRequest, operator string) (*dto.IngestAcceptedResponse, error) {
	path := req.SourcePath
	if path == "" {
		path = s.defaultPath
	}
	if err := s.ingestion.RequestIngestion(ctx, path, operator); err != nil {
		return nil, fmt.Errorf("enqueue ingestion: %w", err)
	}
	return &dto.IngestAcceptedResponse{Status: "accepted", SourcePath: path}, nil
}

func (s *adminService) IndexStats(ctx context.Context) (*rag.Stats, error) {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}
	return &stats, nil
}

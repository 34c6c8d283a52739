package service

import (
	"context"
	"encoding/json"

	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/pkg/events"
	"discharge-assistant-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const TopicIngestDocument = "INGEST_DOCUMENT"

type DocumentIndexer interface {
	Ingest(ctx context.Context, sourcePath string) (rag.IngestReport, error)
}

// IIngestionService moves document ingestion off the request path: callers
// enqueue a request, a single consumer runs them one at a time.
type IIngestionService interface {
	RequestIngestion(ctx context.Context, sourcePath string, requestedBy string) error
	// Consume blocks until ctx is cancelled.
	Consume(ctx context.Context) error
}

type ingestionService struct {
	publisher   message.Publisher
	subscriber  message.Subscriber
	indexer     DocumentIndexer
	defaultPath string
	audit       IAuditService
	log         logger.ILogger
}

func NewIngestionService(
	publisher message.Publisher,
	subscriber message.Subscriber,
	indexer DocumentIndexer,
	defaultPath string,
	audit IAuditService,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		publisher:   publisher,
		subscriber:  subscriber,
		indexer:     indexer,
		defaultPath: defaultPath,
		audit:       audit,
		log:         log,
	}
}

func (s *ingestionService) RequestIngestion(ctx context.Context, sourcePath string, requestedBy string) error {
	if sourcePath == "" {
		sourcePath = s.defaultPath
	}
	payload, err := json.Marshal(dto.IngestDocumentMessage{SourcePath: sourcePath, RequestedBy: requestedBy})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := s.publisher.Publish(TopicIngestDocument, msg); err != nil {
		return err
	}

	s.log.Info("INGEST", "Ingestion requested", map[string]interface{}{"path": sourcePath, "requested_by": requestedBy})
	return nil
}

func (s *ingestionService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, TopicIngestDocument)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.processMessage(ctx, msg)
		}
	}
}

func (s *ingestionService) processMessage(ctx context.Context, msg *message.Message) {
	// Ingestion is not retried; every message is acked.
	defer msg.Ack()

	var payload dto.IngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error("INGEST", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.SourcePath == "" {
		payload.SourcePath = s.defaultPath
	}

	report, err := s.indexer.Ingest(ctx, payload.SourcePath)
	if err != nil {
		s.log.Error("INGEST", "Document ingestion failed", map[string]interface{}{
			"path":   payload.SourcePath,
			"chunks": report.Chunks,
			"error":  err.Error(),
		})
		return
	}
	if report.Skipped {
		s.log.Info("INGEST", "Collection already populated, ingestion skipped", map[string]interface{}{"collection": report.Collection})
		return
	}

	s.audit.Record(ctx, events.TypeDocumentIngested, map[string]interface{}{
		"collection":        report.Collection,
		"source_path":       report.SourcePath,
		"chunks":            report.Chunks,
		"extraction_method": report.ExtractionMethod,
		"duration_ms":       report.Duration.Milliseconds(),
		"requested_by":      payload.RequestedBy,
	})
}

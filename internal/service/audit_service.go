package service

import (
	"context"
	"time"

	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/pkg/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IAuditService records domain events. Publishing is fire-and-forget and
// never blocks or fails the request that triggered it.
type IAuditService interface {
	Record(ctx context.Context, eventType string, data map[string]interface{})
}

type auditService struct {
	publisher EventPublisher
	timeout   time.Duration
	log       logger.ILogger
}

// NewAuditService returns a no-op recorder when publisher is nil.
func NewAuditService(publisher EventPublisher, log logger.ILogger) IAuditService {
	return &auditService{publisher: publisher, timeout: 3 * time.Second, log: log}
}

func (s *auditService) Record(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	event := events.New(eventType, data)

	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		if err := s.publisher.Publish(pubCtx, event); err != nil {
			s.log.Warn("AUDIT", "Failed to publish event", map[string]interface{}{
				"event": eventType,
				"error": err.Error(),
			})
		}
	}()
}

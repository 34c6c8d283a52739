package service

import (
	"context"

	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/pkg/events"
)

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler func(ctx context.Context, event events.Event) error) error
}

// IInteractionLogService mirrors clinical interaction events into a dedicated log file.
type IInteractionLogService interface {
	Start(ctx context.Context) error
	Handle(ctx context.Context, event events.Event) error
}

type interactionLogService struct {
	subscriber EventSubscriber
	sink       logger.ILogger
}

func NewInteractionLogService(subscriber EventSubscriber, sink logger.ILogger) IInteractionLogService {
	return &interactionLogService{subscriber: subscriber, sink: sink}
}

func (s *interactionLogService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, events.Subject(events.TypeClinicalInteraction), "interaction-log", s.Handle)
}

func (s *interactionLogService) Handle(ctx context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()
	s.sink.Info("INTERACTION", event.EventType(), details)
	return nil
}

package contract

import (
	"context"

	"discharge-assistant-be/internal/entity"
)

// ChatSessionRepository stores routing state keyed by the client-supplied session id.
// Implementations must be safe for concurrent use.
type ChatSessionRepository interface {
	// Get returns (nil, false, nil) when the session does not exist or has expired.
	Get(ctx context.Context, id string) (*entity.ChatSession, bool, error)
	Save(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id string) error
}

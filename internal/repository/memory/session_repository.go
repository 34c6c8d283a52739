package memory

import (
	"context"
	"time"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

var _ contract.ChatSessionRepository = (*SessionRepository)(nil)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions for ttl after their last save and
// purges expired entries every ttl/6 (at least once a minute).
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	cleanup := ttl / 6
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &SessionRepository{
		cache: cache.New(ttl, cleanup),
	}
}

func (r *SessionRepository) Save(_ context.Context, session *entity.ChatSession) error {
	clone := *session
	r.cache.Set(session.Id, &clone, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (*entity.ChatSession, bool, error) {
	if x, found := r.cache.Get(sessionID); found {
		clone := *x.(*entity.ChatSession)
		return &clone, true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

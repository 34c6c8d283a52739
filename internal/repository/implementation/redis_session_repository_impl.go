package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "chat_session:"

type RedisSessionRepositoryImpl struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) contract.ChatSessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisSessionRepositoryImpl{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepositoryImpl) Get(ctx context.Context, id string) (*entity.ChatSession, bool, error) {
	raw, err := r.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get session %s: %w", id, err)
	}

	var session entity.ChatSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", id, err)
	}
	session.Id = id
	return &session, true, nil
}

func (r *RedisSessionRepositoryImpl) Save(ctx context.Context, session *entity.ChatSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.Id, err)
	}
	if err := r.rdb.Set(ctx, sessionKeyPrefix+session.Id, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.Id, err)
	}
	return nil
}

func (r *RedisSessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

package implementation

import (
	"context"
	"os"
	"testing"
	"time"

	"discharge-assistant-be/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_TEST_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	repo := NewRedisSessionRepository(rdb, time.Minute)
	id := "test-" + uuid.NewString()

	_, ok, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	session := entity.NewChatSession(id, time.Now())
	session.AwaitName(time.Now())
	require.NoError(t, repo.Save(ctx, session))

	got, ok, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entity.StageAwaitingName, got.Stage)

	ttl, err := rdb.TTL(ctx, sessionKeyPrefix+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.Delete(ctx, id))
	_, ok, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

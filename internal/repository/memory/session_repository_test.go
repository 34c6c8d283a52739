package memory

import (
	"context"
	"testing"
	"time"

	"discharge-assistant-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour)

	_, found, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, found)

	s := entity.NewChatSession("s-1", time.Now())
	require.NoError(t, repo.Save(ctx, s))

	got, found, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entity.StageGreeting, got.Stage)
	assert.Equal(t, 1, repo.Count())

	require.NoError(t, repo.Delete(ctx, "s-1"))
	_, found, _ = repo.Get(ctx, "s-1")
	assert.False(t, found)
}

func TestSessionRepositoryIsolatesCallerMutations(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour)

	s := entity.NewChatSession("s-2", time.Now())
	require.NoError(t, repo.Save(ctx, s))

	// Mutating the saved pointer must not leak into the store without a Save.
	s.Stage = entity.StageConversation

	got, _, _ := repo.Get(ctx, "s-2")
	assert.Equal(t, entity.StageGreeting, got.Stage)
}

func TestSessionRepositoryExpires(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(20 * time.Millisecond)

	require.NoError(t, repo.Save(ctx, entity.NewChatSession("s-3", time.Now())))
	time.Sleep(40 * time.Millisecond)

	_, found, err := repo.Get(ctx, "s-3")
	require.NoError(t, err)
	assert.False(t, found)
}

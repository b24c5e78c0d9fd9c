package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/core"
)

func testStore(t *testing.T, s core.Store) {
	ctx := context.Background()
	_, err := s.Get(ctx, "movierec:test:missing")
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, s.Set(ctx, "movierec:test:k", []byte("v")))
	v, err := s.Get(ctx, "movierec:test:k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, s.Delete(ctx, "movierec:test:k"))
	_, err = s.Get(ctx, "movierec:test:k")
	assert.ErrorIs(t, err, core.ErrStoreNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	assert.Equal(t, "memory", s.Name())
	testStore(t, s)
}

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("v"), 3600))
	_, err := s.Get(ctx, "k")
	assert.NoError(t, err)

	s.mu.Lock()
	s.data["k"].expire = s.data["k"].expire.Add(-2 * time.Hour)
	s.mu.Unlock()
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Name())
	assert.NoError(t, s.Close())

	_, err = Open(context.Background(), "mysql://localhost")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("MOVIEREC_REDIS_URL")
	if url == "" {
		t.Skip("MOVIEREC_REDIS_URL not set")
	}
	s, err := NewRedisStore(context.Background(), url)
	require.NoError(t, err)
	defer s.Close()
	testStore(t, s)
}

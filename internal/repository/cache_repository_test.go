package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	_, err := repo.Get(ctx, "sessions:v1:learners:t1:abc")
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Put(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, repo.Forget(ctx, "k"))
	found, err := repo.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, repo.Ping(ctx))
}

func TestCacheRepositoryWrapsConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	repo := NewCacheRepository(client, nil)
	ctx := context.Background()

	_, err := repo.Get(ctx, "stats:v1:student:t1:abc")
	require.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Contains(t, err.Error(), "redis get stats:v1:student:t1:abc")

	err = repo.Put(ctx, "k", []byte("v"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set k")

	_, err = repo.Has(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, repo.Ping(ctx))
}

package cache

import (
	"context"
	"testing"

	"job-board/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_UnconfiguredIsNoop(t *testing.T) {
	ctx := context.Background()
	r := NewRedis(ctx, config.RedisConfig{}, nil)

	assert.False(t, r.Available())
	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)

	require.NoError(t, r.SetJSON(ctx, "k", map[string]int{"a": 1}))
	var out map[string]int
	hit, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, r.Delete(ctx, "k"))
	assert.NoError(t, r.DeleteByPattern(ctx, "jobs:*"))
	assert.NoError(t, r.Close())
}

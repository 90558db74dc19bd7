package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase_backend/internal/config"
)

func TestNewRedisClient_Disabled(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{Port: "6379"})
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestOptions(t *testing.T) {
	opts := options(config.RedisConfig{Host: "cache", Port: "6380", Password: "pw"})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Zero(t, opts.DB)
}

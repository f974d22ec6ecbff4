package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/config"
)

func TestNewRedis_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	r := NewRedis(config.RedisConfig{Addr: mr.Addr(), IdentityChannel: "propcrm:identity"}, zap.NewNop())
	defer r.Close()
	assert.Equal(t, "propcrm:identity", r.IdentityChannel)

	require.NoError(t, r.Ping(context.Background()))
	assert.True(t, mr.Exists(revocationCheckKey))
	assert.Equal(t, revocationCheckTTL, mr.TTL(revocationCheckKey))

	mr.Close()
	assert.Error(t, r.Ping(context.Background()))
}

func TestRedis_NilSafe(t *testing.T) {
	var r *Redis
	assert.ErrorIs(t, r.Ping(context.Background()), ErrRedisNotConfigured)
	r.Close()
}

func TestPostgres_NilSafe(t *testing.T) {
	var p *Postgres
	assert.Nil(t, p.PoolHandle())
	assert.Error(t, p.Ping(context.Background()))
	p.Close()
}

func TestNewPostgres_NoDSN(t *testing.T) {
	p, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, p.PoolHandle())
}

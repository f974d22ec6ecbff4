package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/config"
)

const (
	revocationCheckKey = "propcrm:health:revocation"
	revocationCheckTTL = 30 * time.Second
)

// ErrRedisNotConfigured is returned by a Redis handle without a client.
var ErrRedisNotConfigured = errors.New("redis client not configured")

// Redis holds the connection behind session revocation and the identity
// event channel.
type Redis struct {
	Client          *redis.Client
	IdentityChannel string
}

// NewRedis connects to Redis. An unreachable server is logged, not fatal:
// sessions still work locally, but sign-outs are neither revoked nor shared.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	logger = logger.With(zap.String("redis_addr", cfg.Addr), zap.String("identity_channel", cfg.IdentityChannel))

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unreachable; sign-outs will not be revoked or shared", zap.Error(err))
	} else {
		logger.Info("redis ready for session revocation")
	}

	return &Redis{Client: client, IdentityChannel: cfg.IdentityChannel}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping reports whether revocations can be recorded. A server that answers
// but refuses writes, such as a read-only replica, fails the check.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrRedisNotConfigured
	}
	if err := r.Client.Set(ctx, revocationCheckKey, "ok", revocationCheckTTL).Err(); err != nil {
		return fmt.Errorf("revocation store not writable: %w", err)
	}
	return nil
}

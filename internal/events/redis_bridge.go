package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBridge fans identity events out to other service instances over a
// Redis pub/sub channel and relays their events into the local dispatcher.
type RedisBridge struct {
	local   Dispatcher
	client  *redis.Client
	channel string
	origin  string
	logger  *zap.Logger

	subscribed atomic.Bool
}

// ErrRelayDown is reported while this instance is not receiving peer events.
var ErrRelayDown = errors.New("identity relay not subscribed")

// NewRedisBridge wraps local. A nil client degrades to local-only delivery.
func NewRedisBridge(local Dispatcher, client *redis.Client, channel string, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{
		local:   local,
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Origin identifies this instance on the channel.
func (b *RedisBridge) Origin() string {
	return b.origin
}

// Publish delivers locally, then broadcasts to peers.
func (b *RedisBridge) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.Origin = b.origin
	_ = b.local.Publish(ctx, event)

	if b.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.logger.Warn("identity event broadcast failed", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}

// Ping fails while the relay is not subscribed, since peer sign-outs would not
// reach this instance's sessions. Local-only bridges are always healthy.
func (b *RedisBridge) Ping(context.Context) error {
	if b.client == nil || b.subscribed.Load() {
		return nil
	}
	return ErrRelayDown
}

// Subscribe registers a local handler.
func (b *RedisBridge) Subscribe(handler EventHandler) Subscription {
	return b.local.Subscribe(handler)
}

// Relay consumes the channel until ctx is done, re-dispatching peer events locally.
func (b *RedisBridge) Relay(ctx context.Context) error {
	if b.client == nil {
		<-ctx.Done()
		return nil
	}
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.subscribed.Store(true)
	defer b.subscribed.Store(false)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("dropping malformed identity event", zap.Error(err))
				continue
			}
			if event.Origin == b.origin {
				continue
			}
			_ = b.local.Publish(ctx, event)
		}
	}
}

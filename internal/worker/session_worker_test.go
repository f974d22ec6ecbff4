package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/events"
)

type countingSweeper struct{ calls atomic.Int32 }

func (s *countingSweeper) Sweep() int {
	s.calls.Add(1)
	return 1
}

type flakyRelay struct{ calls atomic.Int32 }

func (r *flakyRelay) Relay(ctx context.Context) error {
	if r.calls.Add(1) == 1 {
		return errors.New("subscribe failed")
	}
	<-ctx.Done()
	return nil
}

func TestSessionWorker_SweepsAndStops(t *testing.T) {
	sweeper := &countingSweeper{}
	w := NewSessionWorker(nil, sweeper, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestSessionWorker_RetriesRelay(t *testing.T) {
	relay := &flakyRelay{}
	w := NewSessionWorker(relay, nil, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool { return relay.calls.Load() == 2 }, 3*time.Second, 10*time.Millisecond)
}

func TestSessionWorker_RelaysPeerEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	local := events.NewInMemoryDispatcher()
	received := make(chan events.Event, 1)
	local.Subscribe(func(_ context.Context, e events.Event) error {
		received <- e
		return nil
	})
	bridge := events.NewRedisBridge(local, client, "propcrm:identity", zap.NewNop())
	peer := events.NewRedisBridge(events.NewInMemoryDispatcher(), client, "propcrm:identity", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = NewSessionWorker(bridge, nil, 0, zap.NewNop()).Run(ctx) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("propcrm:identity")["propcrm:identity"] == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, peer.Publish(ctx, events.Event{Type: events.EventIdentitySignedOut, SessionID: "sess-1"}))

	select {
	case e := <-received:
		assert.Equal(t, events.EventIdentitySignedOut, e.Type)
		assert.Equal(t, peer.Origin(), e.Origin)
	case <-time.After(time.Second):
		t.Fatal("peer event not relayed")
	}
}

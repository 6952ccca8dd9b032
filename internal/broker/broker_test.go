package broker_test

import (
	"context"
	"testing"
	"time"

	"github.com/jgonzalez0406/Messaging-Program/internal/broker"
	"github.com/jgonzalez0406/Messaging-Program/internal/broker/memory"
	"github.com/jgonzalez0406/Messaging-Program/internal/common/logs/mocks"
	"github.com/jgonzalez0406/Messaging-Program/internal/common/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroker(t *testing.T) *broker.Broker {
	t.Helper()

	pool, err := workerpool.New(4)
	require.NoError(t, err)
	t.Cleanup(pool.Stop)

	return broker.New(memory.New(), pool, mocks.LoggerMock{})
}

func TestBroker_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out to every subscriber", func(t *testing.T) {
		b := newTestBroker(t)
		b.Subscribe("alice", "news")
		b.Subscribe("bob", "news")

		require.NoError(t, b.Publish(ctx, "news", "extra extra"))

		for _, name := range []string{"alice", "bob"} {
			msg, err := b.Poll(ctx, name, 100*time.Millisecond)
			require.NoError(t, err)
			assert.Equal(t, "extra extra", msg)
		}
	})

	t.Run("drops messages without subscribers", func(t *testing.T) {
		b := newTestBroker(t)

		require.NoError(t, b.Publish(ctx, "void", "lost"))

		_, err := b.Poll(ctx, "nobody", 50*time.Millisecond)
		assert.ErrorIs(t, err, broker.ErrNoMessage)
	})

	t.Run("preserves order per mailbox", func(t *testing.T) {
		b := newTestBroker(t)
		b.Subscribe("alice", "news")

		require.NoError(t, b.Publish(ctx, "news", "first"))
		require.NoError(t, b.Publish(ctx, "news", "second"))

		msg, err := b.Poll(ctx, "alice", 100*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, "first", msg)

		msg, err = b.Poll(ctx, "alice", 100*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, "second", msg)
	})
}

func TestBroker_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	b := newTestBroker(t)

	b.Subscribe("alice", "news")
	b.Unsubscribe("alice", "news")
	assert.Empty(t, b.Subscribers("news"))

	require.NoError(t, b.Publish(ctx, "news", "unseen"))

	_, err := b.Poll(ctx, "alice", 50*time.Millisecond)
	assert.ErrorIs(t, err, broker.ErrNoMessage)
}

func TestBroker_Poll(t *testing.T) {
	ctx := context.Background()

	t.Run("parks until a delivery lands", func(t *testing.T) {
		b := newTestBroker(t)
		b.Subscribe("alice", "news")

		go func() {
			time.Sleep(50 * time.Millisecond)
			b.Publish(context.Background(), "news", "late edition")
		}()

		start := time.Now()
		msg, err := b.Poll(ctx, "alice", 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "late edition", msg)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("times out on an idle mailbox", func(t *testing.T) {
		b := newTestBroker(t)

		start := time.Now()
		_, err := b.Poll(ctx, "alice", 100*time.Millisecond)
		assert.ErrorIs(t, err, broker.ErrNoMessage)
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		b := newTestBroker(t)

		cancelCtx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		_, err := b.Poll(cancelCtx, "alice", 5*time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

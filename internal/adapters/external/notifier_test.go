package external

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"cardbinder.app/internal/mocks"
	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryNotifierAdapter_PublishSubscribe(t *testing.T) {
	notifier := NewMemoryNotifierAdapter()
	ctx := context.Background()
	channel := ports.OwnershipChannel("col-1")

	var events atomic.Int32
	cancel, err := notifier.Subscribe(ctx, channel, func() { events.Add(1) }, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.SubscriberCount(channel))

	require.NoError(t, notifier.Publish(ctx, channel))
	assert.Eventually(t, func() bool { return events.Load() >= 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, notifier.Publish(ctx, ports.OwnershipChannel("col-2")))

	cancel()
	cancel()
	assert.Zero(t, notifier.SubscriberCount(channel))

	before := events.Load()
	require.NoError(t, notifier.Publish(ctx, channel))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, events.Load(), "no events after cancel")
}

func TestMemoryNotifierAdapter_ContextCancelUnsubscribes(t *testing.T) {
	notifier := NewMemoryNotifierAdapter()
	ctx, cancel := context.WithCancel(context.Background())
	channel := ports.OwnershipChannel("col-1")

	_, err := notifier.Subscribe(ctx, channel, func() {}, nil)
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		return notifier.SubscriberCount(channel) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryNotifierAdapter_Validation(t *testing.T) {
	notifier := NewMemoryNotifierAdapter()
	ctx := context.Background()

	assert.True(t, errors.IsValidationError(notifier.Publish(ctx, "")))

	_, err := notifier.Subscribe(ctx, "", func() {}, nil)
	assert.True(t, errors.IsValidationError(err))

	_, err = notifier.Subscribe(ctx, "ownership:x", nil, nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestRedisNotifierAdapter_PublishSubscribe(t *testing.T) {
	_, client := setupRedisClient(t)

	notifier, err := NewRedisNotifierAdapter(client, mocks.NewLogger())
	require.NoError(t, err)

	ctx := context.Background()
	channel := ports.OwnershipChannel("col-1")

	var events atomic.Int32
	cancel, err := notifier.Subscribe(ctx, channel, func() { events.Add(1) }, func(error) {})
	require.NoError(t, err)

	require.NoError(t, notifier.Publish(ctx, channel))
	assert.Eventually(t, func() bool { return events.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	cancel()

	require.NoError(t, notifier.Publish(ctx, channel))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), events.Load())
}

func TestRedisNotifierAdapter_ServerLossReportsError(t *testing.T) {
	mockRedis, client := setupRedisClient(t)

	notifier, err := NewRedisNotifierAdapter(client, mocks.NewLogger())
	require.NoError(t, err)

	var failures atomic.Int32
	_, err = notifier.Subscribe(context.Background(), "ownership:col-1", func() {}, func(error) {
		failures.Add(1)
	})
	require.NoError(t, err)

	mockRedis.Close()

	// go-redis reconnects in the background; the error path only fires if the channel closes.
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, failures.Load(), int32(1))
}

func TestNewRedisNotifierAdapter_Validation(t *testing.T) {
	_, err := NewRedisNotifierAdapter(nil, mocks.NewLogger())
	assert.True(t, errors.IsConfigurationError(err))

	_, client := setupRedisClient(t)
	_, err = NewRedisNotifierAdapter(client, nil)
	assert.True(t, errors.IsValidationError(err))
}

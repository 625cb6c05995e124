package external

import (
	"context"
	"sync"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"github.com/go-redis/redis/v8"
)

const changeMessage = "changed"

// RedisNotifierAdapter implements ChangeNotifier port over Redis pub/sub so that
// watchers in every instance see writes made by any instance
type RedisNotifierAdapter struct {
	client *redis.Client
	logger ports.Logger
}

func NewRedisNotifierAdapter(client *redis.Client, logger ports.Logger) (*RedisNotifierAdapter, error) {
	if client == nil {
		return nil, errors.NewConfigurationError("redis client cannot be nil", nil)
	}
	if logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	return &RedisNotifierAdapter{client: client, logger: logger}, nil
}

func (n *RedisNotifierAdapter) Publish(ctx context.Context, channel string) error {
	if channel == "" {
		return errors.NewValidationError("channel cannot be empty")
	}

	if err := n.client.Publish(ctx, channel, changeMessage).Err(); err != nil {
		return errors.NewExternalAPIError("redis publish failed", err)
	}
	return nil
}

// Subscribe confirms the subscription before returning, so a publish made after
// Subscribe returns is always observed. onError is called once if the
// message stream closes before cancellation.
func (n *RedisNotifierAdapter) Subscribe(ctx context.Context, channel string, onEvent func(), onError func(error)) (ports.CancelFunc, error) {
	if channel == "" {
		return nil, errors.NewValidationError("channel cannot be empty")
	}
	if onEvent == nil {
		return nil, errors.NewValidationError("event callback is required")
	}

	pubsub := n.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.NewExternalAPIError("redis subscribe failed", err)
	}

	var (
		once     sync.Once
		done     = make(chan struct{})
		messages = pubsub.Channel()
	)

	cancel := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				n.logger.Debug("Failed to close redis subscription",
					ports.F("channel", channel),
					ports.F("error", err))
			}
		})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case _, ok := <-messages:
				if !ok {
					select {
					case <-done:
					default:
						if onError != nil {
							onError(errors.NewExternalAPIError("redis subscription closed", nil))
						}
						cancel()
					}
					return
				}
				onEvent()
			}
		}
	}()

	return cancel, nil
}

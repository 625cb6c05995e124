package external

import (
	"context"
	"sync"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
)

// MemoryNotifierAdapter implements ChangeNotifier port for a single process.
// Signals to a slow subscriber are coalesced: subscribers only learn that something changed.
type MemoryNotifierAdapter struct {
	mutex       sync.Mutex
	subscribers map[string]map[*memorySubscriber]struct{}
}

type memorySubscriber struct {
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func NewMemoryNotifierAdapter() *MemoryNotifierAdapter {
	return &MemoryNotifierAdapter{
		subscribers: make(map[string]map[*memorySubscriber]struct{}),
	}
}

// Publish signals every subscriber of channel without blocking
func (n *MemoryNotifierAdapter) Publish(ctx context.Context, channel string) error {
	if channel == "" {
		return errors.NewValidationError("channel cannot be empty")
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()

	for sub := range n.subscribers[channel] {
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe calls onEvent after every publish on channel until cancelled or ctx ends.
// onError is never called by this adapter.
func (n *MemoryNotifierAdapter) Subscribe(ctx context.Context, channel string, onEvent func(), onError func(error)) (ports.CancelFunc, error) {
	if channel == "" {
		return nil, errors.NewValidationError("channel cannot be empty")
	}
	if onEvent == nil {
		return nil, errors.NewValidationError("event callback is required")
	}

	sub := &memorySubscriber{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	n.mutex.Lock()
	if n.subscribers[channel] == nil {
		n.subscribers[channel] = make(map[*memorySubscriber]struct{})
	}
	n.subscribers[channel][sub] = struct{}{}
	n.mutex.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			n.mutex.Lock()
			delete(n.subscribers[channel], sub)
			if len(n.subscribers[channel]) == 0 {
				delete(n.subscribers, channel)
			}
			n.mutex.Unlock()
			close(sub.done)
		})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-sub.done:
				return
			case <-sub.signal:
				onEvent()
			}
		}
	}()

	return cancel, nil
}

// SubscriberCount reports live subscribers on channel
func (n *MemoryNotifierAdapter) SubscriberCount(channel string) int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return len(n.subscribers[channel])
}

package mocks

import (
	"context"
	"sync"

	"cardbinder.app/internal/ports"
)

type notifierSubscription struct {
	onEvent func()
	onError func(error)
}

// ChangeNotifier delivers events synchronously and records every publish
type ChangeNotifier struct {
	mu        sync.Mutex
	published []string
	subs      map[string]map[int]notifierSubscription
	nextID    int

	PublishErr   error
	SubscribeErr error
}

func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{subs: make(map[string]map[int]notifierSubscription)}
}

func (n *ChangeNotifier) Publish(ctx context.Context, channel string) error {
	n.mu.Lock()
	if n.PublishErr != nil {
		n.mu.Unlock()
		return n.PublishErr
	}
	n.published = append(n.published, channel)
	callbacks := make([]func(), 0, len(n.subs[channel]))
	for _, sub := range n.subs[channel] {
		callbacks = append(callbacks, sub.onEvent)
	}
	n.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	return nil
}

func (n *ChangeNotifier) Subscribe(ctx context.Context, channel string, onEvent func(), onError func(error)) (ports.CancelFunc, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.SubscribeErr != nil {
		return nil, n.SubscribeErr
	}
	if n.subs[channel] == nil {
		n.subs[channel] = make(map[int]notifierSubscription)
	}
	id := n.nextID
	n.nextID++
	n.subs[channel][id] = notifierSubscription{onEvent: onEvent, onError: onError}

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[channel], id)
	}, nil
}

// Fail reports err to every subscriber of channel
func (n *ChangeNotifier) Fail(channel string, err error) {
	n.mu.Lock()
	callbacks := make([]func(error), 0, len(n.subs[channel]))
	for _, sub := range n.subs[channel] {
		if sub.onError != nil {
			callbacks = append(callbacks, sub.onError)
		}
	}
	n.mu.Unlock()

	for _, cb := range callbacks {
		cb(err)
	}
}

// Published returns every channel published so far, in order
func (n *ChangeNotifier) Published() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.published))
	copy(out, n.published)
	return out
}

// Subscribers reports live subscriptions on channel
func (n *ChangeNotifier) Subscribers(channel string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[channel])
}

package database

import (
	"context"
	"sync"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
)

// OwnershipFeedAdapter implements the OwnershipFeed port. It listens on the collection's
// change channel and re-reads the full owned set after every event.
type OwnershipFeedAdapter struct {
	repo     ports.OwnershipRepository
	notifier ports.ChangeNotifier
	logger   ports.Logger
}

func NewOwnershipFeedAdapter(repo ports.OwnershipRepository, notifier ports.ChangeNotifier, logger ports.Logger) (*OwnershipFeedAdapter, error) {
	if repo == nil {
		return nil, errors.NewValidationError("ownership repository is required")
	}
	if notifier == nil {
		return nil, errors.NewValidationError("change notifier is required")
	}
	if logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	return &OwnershipFeedAdapter{repo: repo, notifier: notifier, logger: logger}, nil
}

type ownershipWatch struct {
	mu      sync.Mutex
	stopped bool

	ctx          context.Context
	repo         ports.OwnershipRepository
	userID       string
	collectionID string
	onNext       func([]string)
	onError      func(error)
	unsubscribe  ports.CancelFunc
}

// Watch returns immediately; the first set is delivered asynchronously.
// Deliveries are serialized and every one carries the complete owned set.
func (f *OwnershipFeedAdapter) Watch(ctx context.Context, userID, collectionID string, onNext func([]string), onError func(error)) (ports.CancelFunc, error) {
	if userID == "" || collectionID == "" {
		return nil, errors.NewValidationError("user ID and collection ID are required")
	}
	if onNext == nil || onError == nil {
		return nil, errors.NewValidationError("watch callbacks are required")
	}

	w := &ownershipWatch{
		ctx:          ctx,
		repo:         f.repo,
		userID:       userID,
		collectionID: collectionID,
		onNext:       onNext,
		onError:      onError,
	}

	// Subscribe before the first read so that no committed change can fall between them.
	unsubscribe, err := f.notifier.Subscribe(ctx, ports.OwnershipChannel(collectionID), w.refresh, w.fail)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.unsubscribe = unsubscribe
	w.mu.Unlock()

	f.logger.Debug("Ownership watch started",
		ports.F("user_id", userID),
		ports.F("collection_id", collectionID))

	go w.refresh()

	return w.stop, nil
}

func (w *ownershipWatch) refresh() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	cardIDs, err := w.repo.ListOwned(w.ctx, w.userID, w.collectionID)
	if err != nil {
		if w.ctx.Err() != nil {
			return
		}
		w.failLocked(err)
		return
	}

	w.onNext(cardIDs)
}

func (w *ownershipWatch) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.stopped {
		w.failLocked(err)
	}
}

// failLocked reports err once and tears the watch down. Caller holds w.mu.
func (w *ownershipWatch) failLocked(err error) {
	w.stopped = true
	w.onError(err)
	if w.unsubscribe != nil {
		go w.unsubscribe()
	}
}

func (w *ownershipWatch) stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	unsubscribe := w.unsubscribe
	w.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

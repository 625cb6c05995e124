package ownership

import (
	"sync"

	"cardbinder.app/internal/ports"
)

// Subscription is a live view of one user's owned set in one collection.
//
// Updates carries the latest full set; a slow reader only ever sees the newest
// one. Errors carries at most one terminal error, after which both channels are
// closed. Cancel is idempotent and no update is readable after it returns.
type Subscription struct {
	mu       sync.Mutex
	snapshot Snapshot
	closed   bool

	updates chan OwnedSet
	errs    chan error
	done    chan struct{}

	unsubscribe ports.CancelFunc
	teardown    sync.Once
	onClose     func()
}

func newSubscription(onClose func()) *Subscription {
	return &Subscription{
		snapshot: Snapshot{Status: StatusLoading},
		updates:  make(chan OwnedSet, 1),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
		onClose:  onClose,
	}
}

// Updates delivers every recomputed owned set
func (s *Subscription) Updates() <-chan OwnedSet {
	return s.updates
}

// Errors delivers the terminal error, if any
func (s *Subscription) Errors() <-chan error {
	return s.errs
}

// Done is closed once the subscription has ended for any reason
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns the current state without blocking
func (s *Subscription) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Cancel ends the subscription and releases the underlying watch
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.drainLocked()
		close(s.updates)
		close(s.errs)
	}
	s.mu.Unlock()

	s.release()
}

func (s *Subscription) deliver(set OwnedSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.snapshot = Snapshot{Status: StatusReady, Owned: set}

	select {
	case <-s.updates:
	default:
	}
	s.updates <- set
}

// fail records err as terminal. The watch is released asynchronously because
// fail may run on the watch's own delivery path.
func (s *Subscription) fail(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.snapshot = Snapshot{Status: StatusFailed, Owned: s.snapshot.Owned, Err: err}
	s.errs <- err
	s.drainLocked()
	close(s.updates)
	close(s.errs)
	s.mu.Unlock()

	go s.release()
}

func (s *Subscription) drainLocked() {
	select {
	case <-s.updates:
	default:
	}
}

func (s *Subscription) release() {
	s.teardown.Do(func() {
		s.mu.Lock()
		unsubscribe := s.unsubscribe
		s.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		close(s.done)
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// attach hands the watch's cancel func to the subscription. A subscription that
// already ended before the watch returned releases it straight away.
func (s *Subscription) attach(unsubscribe ports.CancelFunc) {
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	closed := s.closed
	s.mu.Unlock()

	if closed && unsubscribe != nil {
		unsubscribe()
	}
}

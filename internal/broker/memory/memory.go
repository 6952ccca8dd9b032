package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jgonzalez0406/Messaging-Program/internal/broker"
)

// Store keeps mailboxes in process memory. Each mailbox is a FIFO with a
// single-token wakeup channel so a long poll parks until a delivery
// lands instead of spinning.
type Store struct {
	mu        sync.Mutex
	mailboxes map[string]*mailbox
}

type mailbox struct {
	mu     sync.Mutex
	bodies []string
	ready  chan struct{}
}

func New() *Store {
	return &Store{
		mailboxes: make(map[string]*mailbox),
	}
}

func (s *Store) get(name string) *mailbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	mb := s.mailboxes[name]
	if mb == nil {
		mb = &mailbox{ready: make(chan struct{}, 1)}
		s.mailboxes[name] = mb
	}
	return mb
}

func (s *Store) Append(ctx context.Context, name, body string) error {
	mb := s.get(name)

	mb.mu.Lock()
	mb.bodies = append(mb.bodies, body)
	mb.mu.Unlock()

	wake(mb.ready)
	return nil
}

func (s *Store) Take(ctx context.Context, name string, wait time.Duration) (string, error) {
	mb := s.get(name)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		mb.mu.Lock()
		if len(mb.bodies) > 0 {
			body := mb.bodies[0]
			mb.bodies = mb.bodies[1:]
			remaining := len(mb.bodies)
			mb.mu.Unlock()

			if remaining > 0 {
				wake(mb.ready)
			}
			return body, nil
		}
		mb.mu.Unlock()

		select {
		case <-mb.ready:
		case <-timer.C:
			return "", broker.ErrNoMessage
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func wake(c chan struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

var _ broker.Mailboxes = (*Store)(nil)

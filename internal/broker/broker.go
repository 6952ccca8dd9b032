// Package broker implements the server side of the SMQ wire contract:
// topic fan-out into per-client mailboxes and long polls against them.
// It exists for development and end-to-end testing of the client.
package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jgonzalez0406/Messaging-Program/internal/common/logs"
)

// ErrNoMessage signals an empty mailbox after the poll wait expired.
var ErrNoMessage = errors.New("no message")

// Mailboxes stores per-mailbox message FIFOs.
type Mailboxes interface {
	Append(ctx context.Context, name, body string) error
	Take(ctx context.Context, name string, wait time.Duration) (string, error)
}

// Pool runs fan-out deliveries concurrently.
type Pool interface {
	Submit(ctx context.Context, job func(ctx context.Context)) error
}

// Broker tracks which mailboxes are attached to which topics and copies
// each published message into every subscribed mailbox.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[string]struct{}

	store  Mailboxes
	pool   Pool
	logger logs.Logger
}

func New(store Mailboxes, pool Pool, logger logs.Logger) *Broker {
	return &Broker{
		subs:   make(map[string]map[string]struct{}),
		store:  store,
		pool:   pool,
		logger: logger,
	}
}

func (b *Broker) Subscribe(name, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]struct{})
	}
	b.subs[topic][name] = struct{}{}
}

func (b *Broker) Unsubscribe(name, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set := b.subs[topic]; set != nil {
		delete(set, name)
		if len(set) == 0 {
			delete(b.subs, topic)
		}
	}
}

// Subscribers returns the mailboxes currently attached to topic.
func (b *Broker) Subscribers(topic string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.subs[topic]))
	for name := range b.subs[topic] {
		names = append(names, name)
	}
	return names
}

// Publish copies body into the mailbox of every subscriber. Deliveries
// run on the pool so one slow append does not hold back the rest;
// Publish returns once all of them have finished. A message published to
// a topic with no subscribers is dropped.
func (b *Broker) Publish(ctx context.Context, topic, body string) error {
	names := b.Subscribers(topic)

	var wg sync.WaitGroup
	for _, name := range names {
		mailbox := name
		wg.Add(1)
		// Deliveries outlive the publisher's request context.
		err := b.pool.Submit(context.Background(), func(ctx context.Context) {
			defer wg.Done()
			if err := b.store.Append(ctx, mailbox, body); err != nil {
				b.logger.Warn("delivery failed", "mailbox", mailbox, "topic", topic, "error", err)
			}
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("submit delivery: %w", err)
		}
	}
	wg.Wait()

	b.logger.Debug("published", "topic", topic, "subscribers", len(names))
	return nil
}

// Poll takes the next message from the mailbox, waiting up to wait for
// one to arrive. ErrNoMessage means the mailbox stayed empty.
func (b *Broker) Poll(ctx context.Context, name string, wait time.Duration) (string, error) {
	return b.store.Take(ctx, name, wait)
}

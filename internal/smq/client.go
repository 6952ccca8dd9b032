// Package smq implements the client side of the Simple Message Queue
// protocol: local outgoing/incoming queues bridged to a broker over HTTP
// by a pair of background workers.
package smq

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jgonzalez0406/Messaging-Program/internal/common/logs"
)

// DefaultTimeout bounds both queue waits and broker exchanges unless
// overridden with WithTimeout.
const DefaultTimeout = 2000 * time.Millisecond

// Client coordinates two local queues and two workers for one mailbox
// identity. Publish, Subscribe and Unsubscribe enqueue outgoing broker
// calls; the pusher drains them, requeueing failures at the tail, so
// delivery is at least once and may reorder behind newer messages after
// a failure. The puller long-polls the mailbox and feeds Retrieve.
type Client struct {
	name      string
	serverURL string

	mu      sync.Mutex
	running bool
	timeout time.Duration

	outgoing  *Queue
	incoming  *Queue
	transport *Transport
	logger    logs.Logger
	wg        sync.WaitGroup
}

// New creates a client for the given mailbox name and broker address and
// starts both workers.
func New(name, host, port string, logger logs.Logger) (*Client, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}
	if host == "" || port == "" {
		return nil, fmt.Errorf("%w: empty host or port", ErrInvalidConfig)
	}

	serverURL := fmt.Sprintf("%s:%s", host, port)
	if !strings.Contains(serverURL, "://") {
		serverURL = "http://" + serverURL
	}

	c := &Client{
		name:      name,
		serverURL: serverURL,
		running:   true,
		timeout:   DefaultTimeout,
		outgoing:  NewQueue(),
		incoming:  NewQueue(),
		transport: NewTransport(),
		logger:    logger.With("client", name),
	}

	c.wg.Add(2)
	go c.pusher()
	go c.puller()

	return c, nil
}

// WithTimeout replaces the default queue-wait and exchange budget.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.mu.Lock()
		c.timeout = d
		c.mu.Unlock()
	}
	return c
}

// Publish enqueues one message for the topic. A no-op once the client is
// shut down.
func (c *Client) Publish(topic, body string) {
	if !c.Running() {
		return
	}
	url := fmt.Sprintf("%s/topic/%s", c.serverURL, topic)
	c.outgoing.Push(NewRequest(http.MethodPut, url, body))
}

// Subscribe attaches the client's mailbox to the topic.
func (c *Client) Subscribe(topic string) {
	url := fmt.Sprintf("%s/subscription/%s/%s", c.serverURL, c.name, topic)
	c.outgoing.Push(NewRequest(http.MethodPut, url, ""))
}

// Unsubscribe detaches the client's mailbox from the topic.
func (c *Client) Unsubscribe(topic string) {
	url := fmt.Sprintf("%s/subscription/%s/%s", c.serverURL, c.name, topic)
	c.outgoing.Push(NewRequest(http.MethodDelete, url, ""))
}

// Retrieve waits up to the client timeout for the next received message
// body. The second return is false on timeout or after shutdown.
func (c *Client) Retrieve() (string, bool) {
	if !c.Running() {
		return "", false
	}
	r := c.incoming.Pop(c.Timeout())
	if r == nil {
		return "", false
	}
	return r.Body, true
}

func (c *Client) Name() string { return c.name }

func (c *Client) Timeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

func (c *Client) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Shutdown stops both queues and waits for the workers to exit. It is
// idempotent; only the first call joins. The workers observe the flag at
// iteration boundaries, so the wait is bounded by one queue timeout plus
// one HTTP deadline per worker.
func (c *Client) Shutdown() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	c.outgoing.Shutdown()
	c.incoming.Shutdown()
	c.wg.Wait()

	c.logger.Info("client stopped")
}

// Close shuts the client down and discards anything still queued.
func (c *Client) Close() error {
	c.Shutdown()
	c.outgoing.Close()
	c.incoming.Close()
	return nil
}

// pusher drains the outgoing queue into broker exchanges. A failed
// exchange goes back on the tail and is retried behind newer work, with
// no cap and no backoff.
func (c *Client) pusher() {
	defer c.wg.Done()

	for c.Running() {
		r := c.outgoing.Pop(c.Timeout())
		if r == nil {
			continue
		}

		if _, err := c.transport.Perform(context.Background(), r, c.Timeout()); err != nil {
			c.logger.Debug("send failed, requeueing", "method", r.Method, "url", r.URL, "error", err)
			c.outgoing.Push(r)
		}
	}
}

// puller long-polls the client's mailbox and wraps each returned body in
// a body-only request on the incoming queue. An error just means no
// message yet.
func (c *Client) puller() {
	defer c.wg.Done()

	poll := NewRequest(http.MethodGet, fmt.Sprintf("%s/queue/%s", c.serverURL, c.name), "")

	for c.Running() {
		body, err := c.transport.Perform(context.Background(), poll, c.Timeout())
		if err != nil {
			continue
		}
		c.incoming.Push(&Request{Body: body})
	}
}

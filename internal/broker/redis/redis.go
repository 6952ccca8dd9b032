package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jgonzalez0406/Messaging-Program/internal/broker"
	"github.com/redis/go-redis/v9"
)

// Store backs mailboxes with redis lists: RPush to deliver, BLPop to
// long-poll. Mailboxes survive broker restarts for as long as redis
// keeps the keys.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

func NewStore(client *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = "smq"
	}
	return &Store{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *Store) mailboxKey(name string) string {
	return fmt.Sprintf("%s:mailbox:%s", s.keyPrefix, name)
}

func (s *Store) Append(ctx context.Context, name, body string) error {
	if err := s.client.RPush(ctx, s.mailboxKey(name), body).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", name, err)
	}
	return nil
}

func (s *Store) Take(ctx context.Context, name string, wait time.Duration) (string, error) {
	values, err := s.client.BLPop(ctx, wait, s.mailboxKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", broker.ErrNoMessage
		}
		return "", fmt.Errorf("blpop %s: %w", name, err)
	}

	// BLPop answers [key, value].
	if len(values) < 2 {
		return "", broker.ErrNoMessage
	}
	return values[1], nil
}

var _ broker.Mailboxes = (*Store)(nil)

package workerpool

import (
	"context"

	"github.com/panjf2000/ants/v2"
)

// Pool wraps an ants goroutine pool behind a context-aware Submit.
type Pool struct {
	pool *ants.Pool
}

func New(size int) (*Pool, error) {
	p, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p}, nil
}

// Submit schedules job on the pool. A job whose context is already
// cancelled when a worker picks it up is skipped.
func (p *Pool) Submit(ctx context.Context, job func(ctx context.Context)) error {
	return p.pool.Submit(func() {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	})
}

func (p *Pool) Stop() {
	p.pool.Release()
}

func (p *Pool) Workers() int {
	return p.pool.Cap()
}

package worker

import (
	"context"
	"sync"
)

// Pool runs n copies of a consume loop and waits for them on shutdown.
// Each worker is single-threaded within itself; coordination across
// workers happens only through the queue and the registry's status field.
type Pool struct {
	wg sync.WaitGroup
	n  int
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{n: workers}
}

// Start launches the loops. run is expected to return when ctx is done.
func (p *Pool) Start(ctx context.Context, run func(ctx context.Context, id int)) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			run(ctx, id)
		}(i)
	}
}

// Wait blocks until every loop has returned.
func (p *Pool) Wait() { p.wg.Wait() }

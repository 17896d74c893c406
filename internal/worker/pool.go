package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// slot ties a queued job to its position in the result list
type slot struct {
	index int
	job   Job
}

// Pool runs jobs on a fixed number of workers. Wait returns results in
// submission order, whatever order the jobs finish in.
type Pool struct {
	size    int
	queue   chan slot
	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup
	closed  sync.Once

	mu      sync.Mutex
	results []Result
}

// NewPool creates a pool of workers bound to ctx. Canceling ctx stops
// workers from picking up further jobs.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		size:   workers,
		queue:  make(chan slot, workers*2),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	p.running.Add(p.size)
	for range p.size {
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.running.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case s, ok := <-p.queue:
			if !ok {
				return
			}
			p.store(s.index, s.job.Execute(p.ctx))
		}
	}
}

// reserve claims the next result position
func (p *Pool) reserve() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, nil)
	return len(p.results) - 1
}

func (p *Pool) store(index int, result Result) {
	p.mu.Lock()
	p.results[index] = result
	p.mu.Unlock()
}

// Submit queues a job. It reports false when the pool is shut down or its
// context is done, in which case the job's result stays nil. Submit must
// not be called after Wait.
func (p *Pool) Submit(job Job) bool {
	index := p.reserve()
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- slot{index: index, job: job}:
		return true
	}
}

// Wait blocks until every queued job has run (or the pool was canceled) and
// returns one result per Submit call. Jobs that never ran have a nil result.
func (p *Pool) Wait() []Result {
	p.closed.Do(func() { close(p.queue) })
	p.running.Wait()
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Result(nil), p.results...)
}

// Shutdown cancels running jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancel()
	p.running.Wait()
}

package pipeline

import "sync"

// progress counts completed calls and forwards them to a callback
type progress struct {
	mu    sync.Mutex
	done  int
	total int
	fn    func(done, total int)
}

func newProgress(total int, fn func(done, total int)) *progress {
	return &progress{total: total, fn: fn}
}

func (p *progress) step() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	p.done++
	done := p.done
	p.mu.Unlock()
	p.fn(done, p.total)
}

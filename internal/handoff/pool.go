package handoff

import (
	"log/slog"
	"sync"
)

// pool runs event processing on a fixed set of workers so the webhook
// handler never blocks on session loads or downstream calls. Overflow is
// logged and dropped: the platform redelivers, and a missing session
// defaults to bot ownership anyway.
type pool struct {
	jobs   chan func()
	wg     sync.WaitGroup
	logger *slog.Logger
}

func newPool(workers, queueSize int, logger *slog.Logger) *pool {
	p := &pool{
		jobs:   make(chan func(), queueSize),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

func (p *pool) submit(job func()) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Error("worker queue full, dropping event")
		return false
	}
}

// stop drains queued jobs and waits for workers to finish.
func (p *pool) stop() {
	close(p.jobs)
	p.wg.Wait()
}

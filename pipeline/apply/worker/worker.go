package worker

import (
	"context"
	"sync"
	"time"

	"github.com/applyflow/applyflow/pipeline/apply"
	"github.com/applyflow/applyflow/pipeline/apply/applysrv"
	"github.com/applyflow/applyflow/pkg/logx"
)

const (
	popTimeout    = 5 * time.Second
	moveInterval  = time.Second
	sweepInterval = 15 * time.Second
)

// Pool runs the application queue workers plus the two housekeeping loops:
// promoting delayed jobs and reclaiming stale processing rows.
type Pool struct {
	service    *applysrv.Service
	queue      apply.JobQueue
	workers    int
	staleAfter time.Duration

	wg sync.WaitGroup
}

// NewPool creates a worker pool. staleAfter is the grace period before a
// processing job is considered abandoned by a crashed worker.
func NewPool(service *applysrv.Service, queue apply.JobQueue, workers int, staleAfter time.Duration) *Pool {
	if workers <= 0 {
		workers = 5
	}
	return &Pool{
		service:    service,
		queue:      queue,
		workers:    workers,
		staleAfter: staleAfter,
	}
}

// Start launches the pool. It returns immediately; cancel ctx to stop.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.workerLoop(ctx, i)
	}

	p.wg.Add(2)
	go p.moveLoop(ctx)
	go p.sweepLoop(ctx)

	logx.Infof("Application queue started with %d workers", p.workers)
}

// Wait blocks until every loop has exited after cancellation.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) workerLoop(ctx context.Context, n int) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}

		jobID, err := p.queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.Errorf("Worker %d failed to pop job: %v", n, err)
			time.Sleep(time.Second)
			continue
		}
		if jobID.IsEmpty() {
			continue
		}

		if err := p.service.ProcessJob(ctx, jobID); err != nil {
			logx.Errorf("Worker %d failed processing job %s: %v", n, jobID.String(), err)
		}
	}
}

func (p *Pool) moveLoop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(moveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.queue.MoveDue(ctx); err != nil {
				logx.Errorf("Failed to promote delayed jobs: %v", err)
			}
		}
	}
}

func (p *Pool) sweepLoop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.service.ReclaimStale(ctx, p.staleAfter); err != nil {
				logx.Errorf("Stale job sweep failed: %v", err)
			}
		}
	}
}

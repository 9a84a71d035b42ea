// Package asyncx runs fire-and-forget side effects (notifications, scoring
// kicks) on a bounded worker pool. Failures are logged and counted instead of
// being silently dropped or crashing the process.
package asyncx

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/applyflow/applyflow/pkg/logx"
)

// Task is a named unit of background work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool executes tasks with bounded concurrency and a bounded queue.
type Pool struct {
	tasks    chan Task
	timeout  time.Duration
	failures atomic.Int64
	dropped  atomic.Int64

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewPool starts a pool with the given number of workers and queue capacity.
// Each task gets its own context bounded by timeout.
func NewPool(workers, queueSize int, timeout time.Duration) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:   make(chan Task, queueSize),
		timeout: timeout,
		cancel:  cancel,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
	return p
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.execute(ctx, task)
		}
	}
}

func (p *Pool) execute(ctx context.Context, task Task) {
	taskCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.failures.Add(1)
			logx.Errorf("Background task %s panicked: %v", task.Name, r)
		}
	}()

	if err := task.Run(taskCtx); err != nil {
		p.failures.Add(1)
		logx.Errorf("Background task %s failed: %v", task.Name, err)
	}
}

// Submit queues a task. When the queue is full the task is dropped and
// counted, never blocking the caller.
func (p *Pool) Submit(name string, run func(ctx context.Context) error) {
	select {
	case p.tasks <- Task{Name: name, Run: run}:
	default:
		p.dropped.Add(1)
		logx.Warnf("Background task %s dropped: queue full", name)
	}
}

// Failures returns the number of tasks that returned an error or panicked.
func (p *Pool) Failures() int64 {
	return p.failures.Load()
}

// Dropped returns the number of tasks rejected because the queue was full.
func (p *Pool) Dropped() int64 {
	return p.dropped.Load()
}

// Shutdown stops the workers. Queued tasks that have not started are
// discarded.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

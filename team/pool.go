package team

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/viant/floor/service/messaging"
	"github.com/viant/floor/service/messaging/memory"
)

// PoolConfig represents worker pool configuration
type PoolConfig struct {
	// Workers is the number of worker goroutines
	Workers int
	// QueueSize is the number of jobs that can wait for a worker
	QueueSize int
}

// DefaultPoolConfig returns the default worker pool configuration
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:   5,
		QueueSize: 1000,
	}
}

type envelope struct {
	job Job
}

// Pool executes jobs on a fixed set of workers in FIFO order of assignment.
type Pool struct {
	name     string
	config   PoolConfig
	logger   *slog.Logger
	mu       sync.RWMutex
	queue    *memory.Queue[envelope]
	workers  []*worker
	workerWg sync.WaitGroup
}

type worker struct {
	id       int
	pool     *Pool
	queue    *memory.Queue[envelope]
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewPool creates a worker pool team
func NewPool(name string, config PoolConfig, logger *slog.Logger) *Pool {
	defaults := DefaultPoolConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{name: name, config: config, logger: logger}
}

// NewDedicated creates a team with a single worker; jobs run one at a time in
// the order they were assigned.
func NewDedicated(name string, queueSize int, logger *slog.Logger) *Pool {
	return NewPool(name, PoolConfig{Workers: 1, QueueSize: queueSize}, logger)
}

// Name returns team name
func (p *Pool) Name() string { return p.name }

// StartWorking starts the workers
func (p *Pool) StartWorking(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.queue != nil {
		return nil
	}
	p.queue = memory.NewQueue[envelope](memory.Config{QueueBuffer: p.config.QueueSize, DeadLetter: true})
	p.workers = p.workers[:0]
	for i := 0; i < p.config.Workers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{id: i, pool: p, queue: p.queue, ctx: workerCtx, cancelFn: cancel}
		p.workers = append(p.workers, w)
		p.workerWg.Add(1)
		go w.run()
	}
	return nil
}

// AssignJob queues the job; it fails with ErrOverload when the queue is full.
func (p *Pool) AssignJob(job Job) error {
	p.mu.RLock()
	queue := p.queue
	p.mu.RUnlock()
	if queue == nil {
		return ErrNotWorking
	}
	err := queue.TryPublish(&envelope{job: job})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, messaging.ErrQueueFull):
		return overload(p.name, "queue at capacity")
	case errors.Is(err, messaging.ErrQueueClosed):
		return ErrNotWorking
	}
	return err
}

// Pending returns number of jobs waiting for a worker
func (p *Pool) Pending() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.queue == nil {
		return 0
	}
	return p.queue.Size()
}

// Failed returns number of jobs that panicked
func (p *Pool) Failed() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.queue == nil {
		return 0
	}
	return p.queue.DLQSize()
}

// StopWorking closes the queue and waits until workers drain accepted jobs.
func (p *Pool) StopWorking() {
	p.mu.Lock()
	queue := p.queue
	workers := p.workers
	p.queue = nil
	p.mu.Unlock()
	if queue == nil {
		return
	}
	queue.Close()
	p.workerWg.Wait()
	for _, w := range workers {
		w.cancelFn()
	}
}

func (w *worker) run() {
	defer w.pool.workerWg.Done()
	for {
		msg, err := w.queue.Consume(w.ctx)
		if err != nil {
			if errors.Is(err, messaging.ErrQueueClosed) || w.ctx.Err() != nil {
				return
			}
			continue
		}
		if runErr := run(msg.T().job); runErr != nil {
			w.pool.logger.Error("team job failed", "team", w.pool.name, "worker", w.id, "error", runErr)
			_ = msg.Nack(runErr)
			continue
		}
		_ = msg.Ack()
	}
}

// Package workerpool runs background tasks, such as stock adjustments after an
// order, on a fixed set of goroutines fed by a bounded queue.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrStopped is returned by Submit once Stop has been called.
	ErrStopped = errors.New("worker pool is stopped")
	// ErrQueueFull is returned by Submit when no queue slot is free.
	ErrQueueFull = errors.New("worker pool queue is full")
)

// Task is one queued unit of background work.
type Task struct {
	ID string
	// Kind groups tasks for reporting, e.g. "stock-decrement".
	Kind string
	Fn   func(context.Context) error
	// Context is passed to Fn. A nil Context means context.Background.
	Context context.Context
	// Timeout bounds Fn when positive.
	Timeout time.Duration
}

// Config holds worker pool configuration.
type Config struct {
	Name       string
	MaxWorkers int
	QueueSize  int
	// OnTaskDone, when set, is called after every task with its result.
	OnTaskDone func(Task, error)
	Logger     *zap.Logger
}

// WorkerPool executes submitted tasks. Every task accepted before Stop runs:
// Stop closes the queue and the workers drain it before exiting.
type WorkerPool struct {
	name   string
	queue  chan Task
	onDone func(Task, error)
	logger *zap.Logger
	size   int

	workers errgroup.Group
	done    chan struct{}

	// closing guards the queue channel against sends after close.
	closing sync.RWMutex
	closed  bool

	busy     atomic.Int32
	accepted atomic.Uint64
	rejected atomic.Uint64

	kindsMu sync.Mutex
	kinds   map[string]*KindStats
}

// KindStats counts finished tasks of one kind.
type KindStats struct {
	Succeeded uint64
	Failed    uint64
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Name           string
	MaxWorkers     int
	ActiveWorkers  int
	QueueSize      int
	QueuedTasks    int
	TotalTasks     uint64
	CompletedTasks uint64
	FailedTasks    uint64
	RejectedTasks  uint64
	ByKind         map[string]KindStats
}

// NewWorkerPool starts cfg.MaxWorkers workers. Zero values fall back to 10
// workers and a queue of 100.
func NewWorkerPool(cfg *Config) *WorkerPool {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 10
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 100
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &WorkerPool{
		name:   cfg.Name,
		queue:  make(chan Task, size),
		onDone: cfg.OnTaskDone,
		logger: logger.With(zap.String("pool", cfg.Name)),
		size:   workers,
		done:   make(chan struct{}),
		kinds:  make(map[string]*KindStats),
	}

	for i := 0; i < workers; i++ {
		id := i
		p.workers.Go(func() error {
			for task := range p.queue {
				p.run(id, task)
			}
			return nil
		})
	}
	go func() {
		_ = p.workers.Wait()
		close(p.done)
	}()

	p.logger.Info("Worker pool started",
		zap.Int("max_workers", workers),
		zap.Int("queue_size", size))
	return p
}

// Submit queues task without blocking.
func (p *WorkerPool) Submit(task Task) error {
	if task.Fn == nil {
		return fmt.Errorf("worker pool %q: task %q has no function", p.name, task.ID)
	}

	p.closing.RLock()
	defer p.closing.RUnlock()

	if p.closed {
		p.rejected.Add(1)
		return fmt.Errorf("%w: %s", ErrStopped, p.name)
	}

	select {
	case p.queue <- task:
		p.accepted.Add(1)
		return nil
	default:
		p.rejected.Add(1)
		return fmt.Errorf("%w: %s", ErrQueueFull, p.name)
	}
}

func (p *WorkerPool) run(workerID int, task Task) {
	p.busy.Add(1)
	defer p.busy.Add(-1)

	start := time.Now()
	err := p.call(task)

	fields := []zap.Field{
		zap.Int("worker_id", workerID),
		zap.String("task_id", task.ID),
		zap.String("kind", task.Kind),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		p.logger.Error("Task failed", append(fields, zap.Error(err))...)
	} else {
		p.logger.Debug("Task completed", fields...)
	}
	p.record(task.Kind, err)

	if p.onDone != nil {
		p.onDone(task, err)
	}
}

// call runs the task function, converting a panic into an error.
func (p *WorkerPool) call(task Task) (err error) {
	ctx := task.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Task panic recovered",
				zap.String("task_id", task.ID),
				zap.Any("panic", r),
				zap.Stack("stack"))
			err = fmt.Errorf("task %s panicked: %v", task.ID, r)
		}
	}()

	return task.Fn(ctx)
}

func (p *WorkerPool) record(kind string, err error) {
	p.kindsMu.Lock()
	defer p.kindsMu.Unlock()

	ks, ok := p.kinds[kind]
	if !ok {
		ks = &KindStats{}
		p.kinds[kind] = ks
	}
	if err != nil {
		ks.Failed++
	} else {
		ks.Succeeded++
	}
}

// Stop refuses new tasks and waits up to timeout for the queue to drain.
// Calling Stop again after the first call returns nil.
func (p *WorkerPool) Stop(timeout time.Duration) error {
	p.closing.Lock()
	if p.closed {
		p.closing.Unlock()
		return nil
	}
	p.closed = true
	pending := len(p.queue)
	close(p.queue)
	p.closing.Unlock()

	p.logger.Info("Draining worker pool", zap.Int("queued_tasks", pending))

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		p.logger.Info("Worker pool stopped")
		return nil
	case <-timer.C:
		p.logger.Warn("Worker pool drain timed out",
			zap.Duration("timeout", timeout),
			zap.Int("queued_tasks", len(p.queue)))
		return fmt.Errorf("worker pool %q: drain did not finish within %v", p.name, timeout)
	}
}

// Stats returns a snapshot of the pool counters.
func (p *WorkerPool) Stats() Stats {
	s := Stats{
		Name:          p.name,
		MaxWorkers:    p.size,
		ActiveWorkers: int(p.busy.Load()),
		QueueSize:     cap(p.queue),
		QueuedTasks:   len(p.queue),
		TotalTasks:    p.accepted.Load(),
		RejectedTasks: p.rejected.Load(),
		ByKind:        make(map[string]KindStats),
	}

	p.kindsMu.Lock()
	defer p.kindsMu.Unlock()
	for kind, ks := range p.kinds {
		s.ByKind[kind] = *ks
		s.CompletedTasks += ks.Succeeded
		s.FailedTasks += ks.Failed
	}
	return s
}

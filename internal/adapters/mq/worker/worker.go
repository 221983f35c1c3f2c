// Package worker defines the contracts for reducing games concurrently.
//
// One worker owns one game at a time: processing within a game is strictly
// sequential, parallelism happens only across games, and every job carries
// private, unshared state. The sink write at the end of a reduction is the
// only shared-resource touchpoint.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/courtlytics/pbp/internal/adapters/mq/queue"
	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/pkg/logger"
	"github.com/courtlytics/pbp/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	defaultSinkWriteTimeout = 10 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Processor reduces one game's raw event log to a complete result.
type Processor interface {
	Process(ctx context.Context, job queue.Job) (*model.GameResult, error)
}

// Sink persists one completed game idempotently.
type Sink interface {
	WriteGame(ctx context.Context, result *model.GameResult) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes games from the queue until stopped.
type Worker struct {
	queue     Queue
	processor Processor
	sink      Sink
	name      string

	sinkTimeout time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, processor Processor, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		queue:       q,
		processor:   processor,
		sink:        sink,
		name:        "worker",
		sinkTimeout: defaultSinkWriteTimeout,
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "game processing failed",
					logger.String("gameID", job.GameID),
					logger.Error(err),
				)
			}
		}
	}
}

// processJob reduces one game and persists the result. A failed reduction
// discards everything computed in memory: nothing is partially persisted, and
// other games in the batch are unaffected.
func (w *Worker) processJob(ctx context.Context, job queue.Job) error {
	start := time.Now()

	result, err := w.processor.Process(ctx, job)
	metrics.RecordGameSeconds(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordGameFailed()
		return fmt.Errorf("failed to reduce game %s: %w", job.GameID, err)
	}

	// The sink write is the only I/O in the path; it gets the only timeout.
	writeCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := w.sink.WriteGame(writeCtx, result); err != nil {
		metrics.RecordGameFailed()
		return fmt.Errorf("failed to persist game %s: %w", job.GameID, err)
	}

	metrics.RecordGameProcessed()
	w.logger.Debug(ctx, "game persisted",
		logger.String("gameID", job.GameID),
		logger.Int("snapshots", len(result.Snapshots)),
		logger.Int("shots", len(result.Shots)),
		logger.Bool("clean", result.Quality.Clean()),
	)
	return nil
}

// Shutdown gracefully stops the worker, waiting at most
// workerShutdownTimeout for the current job to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
	defer cancel()
	select {
	case <-w.done:
		return nil
	case <-shutdownCtx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
	}
}

// Pool manages multiple workers draining one queue.
type Pool struct {
	workers []*Worker
	queue   Queue

	wg     sync.WaitGroup
	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive count defaults to a multiple
// of the CPU count. opts are applied to every worker in the pool.
func NewPool(workerCount int, q Queue, processor Processor, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{}, opts...)
		workerOpts = append(workerOpts, WithName("worker-"+strconv.Itoa(i)))
		p.workers[i] = NewWorker(q, processor, sink, workerOpts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has exited (queue closed and drained, or
// context canceled).
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Shutdown gracefully shuts down the entire pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-master-ats/internal/logger"
)

var (
	ErrWorkerStopped = errors.New("worker is stopped")
	ErrQueueFull     = errors.New("inference queue is full")
)

type Worker interface {
	Dispatcher
	Start(ctx context.Context, sweeper Sweeper)
	Stop()
}

// Sweeper is polled periodically to drop expired state.
type Sweeper interface {
	Sweep(now time.Time) int
}

type WorkerOptions struct {
	Concurrency   int
	QueueSize     int
	SweepInterval time.Duration
}

type worker struct {
	jobQueue      chan *Call
	concurrency   int
	sweepInterval time.Duration
	logger        *zap.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc

	// mu orders Dispatch against Stop so nothing is enqueued after the
	// queue has been drained.
	mu      sync.RWMutex
	stopped bool
}

func NewWorker(opts WorkerOptions, logger *zap.Logger) Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &worker{
		jobQueue:      make(chan *Call, opts.QueueSize),
		concurrency:   opts.Concurrency,
		sweepInterval: opts.SweepInterval,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context, sweeper Sweeper) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.logger.Info("starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	if sweeper != nil && w.sweepInterval > 0 {
		w.wg.Add(1)
		go w.sweepSessions(sweeper)
	}
}

// Stop implements Worker. Calls still running are cancelled through their
// context and calls still queued are failed, so every session leaves its
// loading step.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping worker")

		w.mu.Lock()
		w.stopped = true
		close(w.stopChan)
		w.mu.Unlock()

		if w.cancel != nil {
			w.cancel()
		}
		w.wg.Wait()

		drained := w.drain()
		w.logger.Info("worker stopped", zap.Int("failed_pending", drained))
	})
}

// Dispatch implements Dispatcher. It never blocks.
func (w *worker) Dispatch(call *Call) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return ErrWorkerStopped
	}

	select {
	case w.jobQueue <- call:
		w.logger.Debug("call enqueued",
			zap.String(logger.FieldSessionID, call.SessionID.String()),
			zap.String("call", string(call.Kind)),
		)
		return nil
	default:
		return ErrQueueFull
	}
}

// drain fails the calls left in the queue after the routines exited.
func (w *worker) drain() int {
	drained := 0
	for {
		select {
		case call := <-w.jobQueue:
			call.Fail(fmt.Errorf("%s: %w: %w", call.Kind, ErrTransport, ErrWorkerStopped))
			drained++
		default:
			return drained
		}
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("worker routine stopped", zap.Int("worker", workerID))
			return
		case call := <-w.jobQueue:
			start := time.Now()
			applied := call.Run(ctx)
			w.logger.Info("call processed",
				zap.Int("worker", workerID),
				zap.String(logger.FieldSessionID, call.SessionID.String()),
				zap.String("call", string(call.Kind)),
				zap.Bool("applied", applied),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}
}

func (w *worker) sweepSessions(sweeper Sweeper) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case now := <-ticker.C:
			sweeper.Sweep(now)
		}
	}
}

package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Tick is the caller-supplied callback invoked on every poll interval,
// draining up to batchSize entries from the underlying queue.
//
// outbox.Relay.Tick is the typical implementation.
type Tick func(ctx context.Context, batchSize int) error

// Worker is a generic polling scheduler, running a Tick callback at a fixed
// interval on a background goroutine.
//
// A Worker never overlaps two Tick invocations: when a tick is still running
// as its interval elapses, the new invocation is skipped, so a slow batch
// can never double-claim the same queue entries within one process.
//
// Errors returned by the Tick callback are caught and logged, never
// propagated: a single bad batch must not kill the scheduler.
type Worker struct {
	config Config
	tick   Tick
	logger *zap.Logger

	mx      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	ticking atomic.Bool
}

// NewWorker creates a new Worker with the provided configuration,
// draining through the provided Tick callback.
func NewWorker(config Config, tick Tick, logger *zap.Logger) *Worker {
	return &Worker{
		config: config,
		tick:   tick,
		logger: logger,
	}
}

// Start schedules the polling loop on a background goroutine.
//
// When the Worker is disabled by configuration, Start logs and returns
// without scheduling anything. Calling Start on a running Worker is a no-op,
// logged as a warning, making Start idempotent.
func (w *Worker) Start() {
	if !w.config.Enabled {
		w.logger.Info("worker disabled, not scheduling")
		return
	}

	w.mx.Lock()
	defer w.mx.Unlock()

	if w.running {
		w.logger.Warn("worker already running, ignoring start")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	w.running = true
	w.cancel = cancel
	w.done = make(chan struct{})

	w.logger.Info("worker started",
		zap.Duration("interval", w.config.Interval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	go w.run(ctx)
}

// Stop cancels future ticks and transitions the Worker back to stopped.
//
// An in-flight tick is not interrupted: it runs to completion, success or
// caught error. Stopping a Worker that is not running is a no-op.
func (w *Worker) Stop() {
	w.mx.Lock()
	defer w.mx.Unlock()

	if !w.running {
		return
	}

	w.cancel()
	<-w.done

	w.running = false

	w.logger.Info("worker stopped")
}

// Running reports whether the polling loop is currently scheduled.
func (w *Worker) Running() bool {
	w.mx.Lock()
	defer w.mx.Unlock()

	return w.running
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go w.safeTick(ctx)
		}
	}
}

func (w *Worker) safeTick(ctx context.Context) {
	if !w.ticking.CompareAndSwap(false, true) {
		w.logger.Warn("previous tick still running, skipping")
		return
	}
	defer w.ticking.Store(false)

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("tick panicked", zap.Any("panic", r))
		}
	}()

	// The in-flight tick must run to completion even when Stop is called,
	// hence the detached context.
	if err := w.tick(context.WithoutCancel(ctx), w.config.BatchSize); err != nil {
		w.logger.Error("tick failed", zap.Error(err))
	}
}

package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"job-board/internal/config"
	"job-board/internal/infrastructure/mailer"
)

// Notifier schedules an email without waiting for its delivery.
type Notifier interface {
	Send(m mailer.Message)
}

// Dispatcher is a bounded queue of outbound emails consumed by a fixed set
// of workers. Send never blocks: when the queue is full the message is
// dropped and logged. Delivery failures are logged and not retried.
type Dispatcher struct {
	transport   mailer.Transport
	logger      *slog.Logger
	workers     int
	sendTimeout time.Duration

	queue  chan mailer.Message
	stopCh chan struct{}
	wg     sync.WaitGroup

	// ctx bounds in-flight deliveries; cancelled when Stop runs out of time.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	stopped bool

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

func NewDispatcher(transport mailer.Transport, cfg config.NotificationConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		transport:   transport,
		logger:      logger.With("component", "notification"),
		workers:     workers,
		sendTimeout: 30 * time.Second,
		queue:       make(chan mailer.Message, size),
		stopCh:      make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Send enqueues m. The lock is held across the enqueue so nothing lands in
// the queue once Stop has begun draining it.
func (d *Dispatcher) Send(m mailer.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		d.dropped.Add(1)
		d.logger.Warn("notification dropped, dispatcher stopped", "to", m.To, "subject", m.Subject)
		return
	}

	select {
	case d.queue <- m:
	default:
		d.dropped.Add(1)
		d.logger.Warn("notification dropped, queue full", "to", m.To, "subject", m.Subject)
	}
}

// Start launches the workers. It returns immediately.
func (d *Dispatcher) Start(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running || d.stopped {
		return nil
	}
	d.running = true

	d.logger.Info("notification dispatcher starting", "workers", d.workers, "queue_size", cap(d.queue))
	for range d.workers {
		d.wg.Add(1)
		go d.loop()
	}
	return nil
}

// Stop stops accepting messages and waits for the queue to drain. When ctx
// expires first, in-flight deliveries are cancelled and anything still
// queued is discarded.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	running := d.running
	d.mu.Unlock()

	close(d.stopCh)
	if !running {
		d.cancel()
		d.discardPending()
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("notification dispatcher stopped", "sent", d.sent.Load(), "failed", d.failed.Load(), "dropped", d.dropped.Load())
	case <-ctx.Done():
		d.logger.Warn("notification dispatcher shutdown timed out, cancelling deliveries", "pending", len(d.queue))
		d.cancel()
		d.wg.Wait()
	}
	d.cancel()
	d.discardPending()
	return nil
}

// discardPending counts whatever the workers left in the queue as dropped.
func (d *Dispatcher) discardPending() {
	for {
		select {
		case m := <-d.queue:
			d.dropped.Add(1)
			d.logger.Warn("notification dropped, dispatcher stopped", "to", m.To, "subject", m.Subject)
		default:
			return
		}
	}
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()

	for {
		select {
		case m := <-d.queue:
			d.deliver(m)
		case <-d.stopCh:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		if d.ctx.Err() != nil {
			return
		}
		select {
		case m := <-d.queue:
			d.deliver(m)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(m mailer.Message) {
	if d.ctx.Err() != nil {
		d.dropped.Add(1)
		return
	}
	ctx, cancel := context.WithTimeout(d.ctx, d.sendTimeout)
	defer cancel()

	if err := d.transport.Send(ctx, m); err != nil {
		d.failed.Add(1)
		d.logger.Error("notification delivery failed", "to", m.To, "subject", m.Subject, "error", err)
		return
	}
	d.sent.Add(1)
	d.logger.Info("notification delivered", "to", m.To, "subject", m.Subject)
}

type Stats struct {
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
	Pending int   `json:"pending"`
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
		Pending: len(d.queue),
	}
}

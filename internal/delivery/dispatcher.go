package delivery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Job is one OTP mail to deliver.
type Job struct {
	Name     string
	Email    string
	Code     string
	Template string
}

// Sender performs the actual delivery of a job.
type Sender interface {
	Deliver(ctx context.Context, job Job) error
}

// SenderFunc adapts a function to [Sender].
type SenderFunc func(ctx context.Context, job Job) error

func (f SenderFunc) Deliver(ctx context.Context, job Job) error { return f(ctx, job) }

// Config controls dispatcher buffering and pacing.
type Config struct {
	Workers     int
	BufferSize  int
	DropIfFull  bool
	SendTimeout time.Duration
	// RatePerSecond limits outbound sends across all workers. Zero disables pacing.
	RatePerSecond float64
	Burst         int
}

// Dispatcher forwards jobs to a Sender on background workers.
type Dispatcher struct {
	cfg     Config
	sender  Sender
	logger  *zap.Logger
	limiter *rate.Limiter

	ch        chan Job
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    atomic.Bool

	delivered atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

func NewDispatcher(cfg Config, sender Sender, logger *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = SenderFunc(func(context.Context, Job) error { return nil })
	}

	d := &Dispatcher{
		cfg:    cfg,
		sender: sender,
		logger: logger.Named("delivery"),
		ch:     make(chan Job, cfg.BufferSize),
		done:   make(chan struct{}),
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	d.wg.Add(cfg.Workers)
	for range cfg.Workers {
		go d.run()
	}

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.ch:
			d.send(job)
		case <-d.done:
			for {
				select {
				case job := <-d.ch:
					d.send(job)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) send(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			d.failed.Add(1)
			d.logger.Warn("otp delivery throttled past deadline",
				zap.String("email", job.Email),
				zap.String("template", job.Template),
				zap.Error(err),
			)
			return
		}
	}

	if err := d.sender.Deliver(ctx, job); err != nil {
		d.failed.Add(1)
		d.logger.Error("otp delivery failed",
			zap.String("email", job.Email),
			zap.String("template", job.Template),
			zap.Error(err),
		)
		return
	}

	d.delivered.Add(1)
	d.logger.Debug("otp delivered",
		zap.String("email", job.Email),
		zap.String("template", job.Template),
	)
}

// Enqueue hands job to the workers. It reports whether the job was accepted.
// With DropIfFull set, a full buffer drops the job instead of blocking.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) bool {
	if d == nil || d.closed.Load() {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- job:
			return true
		case <-d.done:
			return false
		default:
			d.drop(job)
			return false
		}
	}

	select {
	case d.ch <- job:
		return true
	case <-ctx.Done():
		d.drop(job)
		return false
	case <-d.done:
		return false
	}
}

func (d *Dispatcher) drop(job Job) {
	d.dropped.Add(1)
	d.logger.Warn("otp delivery dropped",
		zap.String("email", job.Email),
		zap.String("template", job.Template),
	)
}

// Close stops accepting jobs and waits for queued jobs to be sent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}

func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

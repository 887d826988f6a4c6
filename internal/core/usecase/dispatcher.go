package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
	"github.com/atvirokodosprendimai/guitarregistry/internal/core/ports"
	"github.com/atvirokodosprendimai/guitarregistry/internal/errors"
)

const (
	defaultMaxAttempts = 5
	defaultMaxBackoff  = 30 * time.Second
)

// Dispatcher hands validated submissions to a sink, retrying failed
// deliveries with quadratic backoff.
type Dispatcher struct {
	sink        ports.SubmissionSink
	logger      *slog.Logger
	maxAttempts int
	maxBackoff  time.Duration
	sleep       func(context.Context, time.Duration) error

	deliveredTotal      atomic.Int64
	failedAttemptsTotal atomic.Int64
	droppedTotal        atomic.Int64
}

type DispatcherMetrics struct {
	DeliveredTotal      int64
	FailedAttemptsTotal int64
	DroppedTotal        int64
}

type DispatcherOption func(*Dispatcher)

func WithMaxAttempts(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

func WithMaxBackoff(limit time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if limit > 0 {
			d.maxBackoff = limit
		}
	}
}

func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func NewDispatcher(sink ports.SubmissionSink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sink:        sink,
		logger:      slog.Default(),
		maxAttempts: defaultMaxAttempts,
		maxBackoff:  defaultMaxBackoff,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers each entry in order. Entries that exhaust their attempts
// are dropped and reported in the returned error; the rest still go out.
// A cancelled context stops the run.
func (d *Dispatcher) Dispatch(ctx context.Context, deliveries []domain.Delivery) error {
	var errs []error
	for _, delivery := range deliveries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := d.deliver(ctx, delivery); err != nil {
			errs = append(errs, errors.Wrapf(err, "deliver %s[%d]", delivery.Source, delivery.Index))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) deliver(ctx context.Context, delivery domain.Delivery) error {
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.sink.Deliver(ctx, delivery)
		if err == nil {
			d.deliveredTotal.Add(1)
			d.logger.Debug("submission delivered", "source", delivery.Source, "index", delivery.Index, "attempt", attempt)
			return nil
		}
		lastErr = err
		d.failedAttemptsTotal.Add(1)
		d.logger.Warn("delivery attempt failed",
			"source", delivery.Source,
			"index", delivery.Index,
			"attempt", attempt,
			"error", err,
		)
		if attempt == d.maxAttempts {
			break
		}
		if err := d.sleep(ctx, backoffDuration(attempt, d.maxBackoff)); err != nil {
			lastErr = err
			break
		}
	}
	d.droppedTotal.Add(1)
	d.logger.Error("submission dropped", "source", delivery.Source, "index", delivery.Index, "error", lastErr)
	return lastErr
}

func (d *Dispatcher) Metrics() DispatcherMetrics {
	return DispatcherMetrics{
		DeliveredTotal:      d.deliveredTotal.Load(),
		FailedAttemptsTotal: d.failedAttemptsTotal.Load(),
		DroppedTotal:        d.droppedTotal.Load(),
	}
}

func backoffDuration(attempt int, limit time.Duration) time.Duration {
	d := time.Duration(attempt*attempt) * time.Second
	if attempt <= 1 {
		d = time.Second
	}
	if d > limit {
		return limit
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

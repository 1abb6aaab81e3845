package cmdbuf

import (
	"time"

	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/memobj"
	"github.com/fxnlabs/cmdstream/internal/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultRetryInterval is the pause between busy engine submissions when a
// RetryPolicy leaves Interval unset.
const DefaultRetryInterval = time.Millisecond

// RetryPolicy bounds the busy retry loop of Submit.
type RetryPolicy struct {
	// Timeout is the budget measured from the first attempt.
	Timeout time.Duration
	// Interval is the fixed sleep between attempts.
	Interval time.Duration
}

// preflight rejects submissions that cannot be valid without asking the device.
func (b *Buffer) preflight() error {
	if b.state == stateEmpty {
		return errors.Wrap(ErrInvariant, "submit before start")
	}
	if len(b.refs) == 0 {
		return errors.Wrap(ErrInvariant, "submit without referenced objects")
	}
	return b.checkCapacity()
}

// Submit sends the stream to engine. A busy device is retried every
// policy.Interval until policy.Timeout has elapsed, after which
// device.ErrTimeout is returned. Any other device error ends the loop.
func (b *Buffer) Submit(engine uint32, priority device.Priority, policy RetryPolicy) error {
	if err := b.preflight(); err != nil {
		metrics.SubmitAttempts.WithLabelValues("engine", "rejected").Inc()
		return err
	}
	if err := b.Prepare(); err != nil {
		return err
	}
	req := &device.SubmitRequest{
		Engine:         engine,
		Handles:        b.References(),
		CommandsOffset: b.start,
		Priority:       priority,
	}
	interval := policy.Interval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	sess := b.dev.sess
	begin := time.Now()
	deadline := begin.Add(policy.Timeout)
	for attempt := 1; ; attempt++ {
		err := sess.Submit(req)
		if err == nil {
			metrics.SubmitAttempts.WithLabelValues("engine", "ok").Inc()
			metrics.SubmitDuration.Observe(float64(time.Since(begin).Microseconds()) / 1000)
			b.log.Debug("submitted",
				zap.Uint32("engine", engine),
				zap.Int("attempts", attempt),
				zap.Int("references", len(req.Handles)),
				zap.Uint64("region", b.Region()))
			return nil
		}
		if !device.IsBusy(err) {
			metrics.SubmitAttempts.WithLabelValues("engine", "error").Inc()
			return errors.Wrapf(err, "submit buffer %d to engine %d", b.Handle(), engine)
		}
		metrics.SubmitAttempts.WithLabelValues("engine", "busy").Inc()
		if !time.Now().Before(deadline) {
			b.log.Warn("engine stayed busy",
				zap.Uint32("engine", engine),
				zap.Int("attempts", attempt),
				zap.Duration("timeout", policy.Timeout))
			return errors.Wrapf(device.ErrTimeout, "engine %d busy for %s after %d attempts", engine, policy.Timeout, attempt)
		}
		metrics.SubmitBusyRetries.Inc()
		time.Sleep(interval)
	}
}

// SubmitToQueue sends the stream to a queue. preemption, when not nil, is
// registered as a reference and designated as the preemption buffer. A full
// queue is reported immediately as device.ErrBusy; queues apply their own
// backpressure upstream.
func (b *Buffer) SubmitToQueue(queue device.QueueID, priority device.Priority, preemption *memobj.Object) error {
	if err := b.preflight(); err != nil {
		metrics.SubmitAttempts.WithLabelValues("queue", "rejected").Inc()
		return err
	}
	index := device.NoPreemption
	if preemption != nil {
		i, err := b.AddReference(preemption)
		if err != nil {
			return err
		}
		index = uint32(i)
	}
	if err := b.Prepare(); err != nil {
		return err
	}
	req := &device.QueueSubmitRequest{
		Queue:           queue,
		Handles:         b.References(),
		CommandsOffset:  b.start,
		Priority:        priority,
		PreemptionIndex: index,
	}
	if err := b.dev.sess.SubmitToQueue(req); err != nil {
		outcome := "error"
		if device.IsBusy(err) {
			outcome = "busy"
		}
		metrics.SubmitAttempts.WithLabelValues("queue", outcome).Inc()
		return errors.Wrapf(err, "submit buffer %d to queue %d", b.Handle(), queue)
	}
	metrics.SubmitAttempts.WithLabelValues("queue", "ok").Inc()
	b.log.Debug("submitted to queue", zap.Uint32("queue", uint32(queue)), zap.Uint32("preemption_index", index))
	return nil
}

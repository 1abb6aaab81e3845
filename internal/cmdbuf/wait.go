package cmdbuf

import (
	"time"

	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/metrics"
	"github.com/pkg/errors"
)

// Wait blocks until the latest submission of the buffer completes or timeout
// passes on the device clock, and returns the device job status.
func (b *Buffer) Wait(timeout time.Duration) (device.JobStatus, error) {
	if !b.Backed() {
		return 0, errors.Wrap(ErrInvariant, "wait on a destroyed buffer")
	}
	if timeout < 0 {
		timeout = 0
	}
	sess := b.dev.sess
	now, err := sess.QueryParam(device.ParamDeviceClock, 0)
	if err != nil {
		return 0, errors.Wrap(err, "query device clock")
	}
	req := &device.WaitRequest{
		Handle:     b.Handle(),
		DeadlineNs: now + uint64(timeout.Nanoseconds()),
	}
	begin := time.Now()
	if err := sess.Wait(req); err != nil {
		return 0, errors.Wrapf(err, "wait for buffer %d", b.Handle())
	}
	metrics.WaitDuration.Observe(float64(time.Since(begin).Microseconds()) / 1000)
	metrics.WaitStatus.WithLabelValues(req.Status.String()).Inc()
	return req.Status, nil
}

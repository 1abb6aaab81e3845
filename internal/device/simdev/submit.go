package simdev

import (
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type job struct {
	buffer    device.Handle
	refs      []*object
	cmdOffset uint64
	priority  device.Priority
	done      chan struct{}
	status    device.JobStatus
}

func (j *job) finish(status device.JobStatus) {
	j.status = status
	close(j.done)
}

func (j *job) pending() bool {
	select {
	case <-j.done:
		return false
	default:
		return true
	}
}

// newJob resolves the handles of a request. Callers hold d.mu.
func (d *Device) newJob(handles []device.Handle, cmdOffset uint64, prio device.Priority) (*job, error) {
	if len(handles) == 0 {
		return nil, errors.Wrap(device.ErrInvalid, "empty handle list")
	}
	refs := make([]*object, len(handles))
	for i, h := range handles {
		o, err := d.lookup(h)
		if err != nil {
			return nil, err
		}
		refs[i] = o
	}
	buf := refs[0].back
	if cmdOffset%wire.CommandAlign != 0 || cmdOffset+wire.StreamHeaderSize > buf.size {
		return nil, errors.Wrapf(device.ErrInvalid, "commands offset %d in buffer of %d bytes", cmdOffset, buf.size)
	}
	if prev, ok := d.jobs[handles[0]]; ok && prev.pending() {
		return nil, errors.Wrapf(device.ErrBusy, "buffer %d has an outstanding job", handles[0])
	}
	return &job{
		buffer:    handles[0],
		refs:      refs,
		cmdOffset: cmdOffset,
		priority:  prio,
		done:      make(chan struct{}),
	}, nil
}

// Submit implements device.Session. A full engine or a buffer whose previous
// job is outstanding yields device.ErrBusy.
func (d *Device) Submit(req *device.SubmitRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrNoDevice
	}
	if int(req.Engine) >= len(d.engines) {
		return errors.Wrapf(device.ErrInvalid, "engine %d of %d", req.Engine, len(d.engines))
	}
	j, err := d.newJob(req.Handles, req.CommandsOffset, req.Priority)
	if err != nil {
		return err
	}
	select {
	case d.engines[req.Engine].jobs <- j:
	default:
		return errors.Wrapf(device.ErrBusy, "engine %d full", req.Engine)
	}
	d.jobs[j.buffer] = j
	return nil
}

type queue struct {
	id       device.QueueID
	priority device.Priority
	flags    device.QueueFlags
	ring     lfq.SPSC[*job]
	slot     *job
	notify   chan struct{}
	done     chan struct{}
}

// CreateQueue implements device.Session.
func (d *Device) CreateQueue(p device.Priority, flags device.QueueFlags) (device.QueueID, error) {
	if p > device.PriorityRealtime {
		return 0, errors.Wrapf(device.ErrInvalid, "priority %d", p)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, device.ErrNoDevice
	}
	q := &queue{
		id:       device.QueueID(d.queueIDs.Add(1)),
		priority: p,
		flags:    flags,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	q.ring.Init(d.cfg.QueueDepth)
	d.queues[q.id] = q
	d.wg.Add(1)
	go d.runQueue(q)
	return q.id, nil
}

// DestroyQueue implements device.Session. Queued jobs are aborted.
func (d *Device) DestroyQueue(id device.QueueID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrNoDevice
	}
	q, ok := d.queues[id]
	if !ok {
		return errors.Wrapf(device.ErrNotFound, "queue %d", id)
	}
	delete(d.queues, id)
	close(q.done)
	return nil
}

// SubmitToQueue implements device.Session. A full queue yields
// device.ErrBusy immediately.
func (d *Device) SubmitToQueue(req *device.QueueSubmitRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrNoDevice
	}
	q, ok := d.queues[req.Queue]
	if !ok {
		return errors.Wrapf(device.ErrNotFound, "queue %d", req.Queue)
	}
	if req.PreemptionIndex != device.NoPreemption && int(req.PreemptionIndex) >= len(req.Handles) {
		return errors.Wrapf(device.ErrInvalid, "preemption index %d of %d handles", req.PreemptionIndex, len(req.Handles))
	}
	j, err := d.newJob(req.Handles, req.CommandsOffset, req.Priority)
	if err != nil {
		return err
	}
	// d.mu makes this the single producer of the ring.
	q.slot = j
	if err := q.ring.Enqueue(&q.slot); err != nil {
		if iox.IsWouldBlock(err) {
			return errors.Wrapf(device.ErrBusy, "queue %d full", req.Queue)
		}
		return err
	}
	d.jobs[j.buffer] = j
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

func (d *Device) runQueue(q *queue) {
	defer d.wg.Done()
	for {
		for {
			j, err := q.ring.Dequeue()
			if err != nil {
				break
			}
			select {
			case <-q.done:
				j.finish(device.StatusAborted)
			case <-d.stop:
				j.finish(device.StatusAborted)
			default:
				d.execute(j, nil)
			}
		}
		select {
		case <-q.notify:
		case <-q.done:
			d.drainQueue(q)
			return
		case <-d.stop:
			d.drainQueue(q)
			return
		}
	}
}

func (d *Device) drainQueue(q *queue) {
	for {
		j, err := q.ring.Dequeue()
		if err != nil {
			return
		}
		j.finish(device.StatusAborted)
	}
}

// Wait implements device.Session. DeadlineNs is an absolute device clock value.
func (d *Device) Wait(req *device.WaitRequest) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return device.ErrNoDevice
	}
	j, ok := d.jobs[req.Handle]
	if !ok {
		_, err := d.lookup(req.Handle)
		d.mu.Unlock()
		if err != nil {
			return err
		}
		return errors.Wrapf(device.ErrInvalid, "handle %d was never submitted", req.Handle)
	}
	now := d.clock()
	d.mu.Unlock()

	var remaining time.Duration
	if req.DeadlineNs > now {
		remaining = time.Duration(req.DeadlineNs - now)
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-j.done:
	default:
		select {
		case <-j.done:
		case <-timer.C:
			return errors.Wrapf(device.ErrTimeout, "wait for handle %d", req.Handle)
		case <-d.stop:
			return device.ErrNoDevice
		}
	}
	req.Status = j.status
	d.log.Debug("wait complete", zap.Uint32("handle", uint32(req.Handle)), zap.Stringer("status", j.status))
	return nil
}

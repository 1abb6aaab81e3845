package simdev

import (
	"sync/atomic"
	"time"

	"code.hybscloud.com/iox"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/shm"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"go.uber.org/zap"
)

// execute runs the stream of j to completion and finishes the job.
// completed, when set, is incremented before waiters are released.
func (d *Device) execute(j *job, completed *atomic.Uint64) {
	status := d.run(j)
	if status != device.StatusComplete {
		d.log.Warn("job did not complete",
			zap.Uint32("buffer", uint32(j.buffer)),
			zap.Stringer("status", status))
	}
	if completed != nil {
		completed.Add(1)
	}
	j.finish(status)
}

func (d *Device) run(j *job) device.JobStatus {
	buf := j.refs[0].back
	mem := buf.mem
	start := j.cmdOffset
	hdr := wire.ReadStreamHeader(mem[start:])
	end := start + uint64(hdr.RegionSize)
	if hdr.FirstCommandOffset < wire.StreamHeaderSize || uint64(hdr.FirstCommandOffset) > uint64(hdr.RegionSize) || end > buf.size {
		d.log.Debug("malformed stream header",
			zap.Uint32("region_size", hdr.RegionSize),
			zap.Uint32("first_command_offset", hdr.FirstCommandOffset))
		return device.StatusFaulted
	}

	for off := start + uint64(hdr.FirstCommandOffset); off < end; {
		if end-off < wire.CommandHeaderSize {
			return device.StatusFaulted
		}
		typ, size := d.layout.CommandHeader(mem[off:])
		if size < wire.CommandHeaderSize || size%wire.CommandAlign != 0 || uint64(size) > end-off {
			d.log.Debug("malformed command", zap.Stringer("type", typ), zap.Uint32("size", size), zap.Uint64("offset", off))
			return device.StatusFaulted
		}
		payload := mem[off+wire.CommandHeaderSize : off+uint64(size)]
		if status := d.command(j, typ, payload); status != device.StatusComplete {
			return status
		}
		off += uint64(size)
	}
	return device.StatusComplete
}

// resolve maps a device address range onto the backing of an object
// enumerated in the job.
func (j *job) resolve(addr, length uint64) ([]byte, uint64, bool) {
	for _, o := range j.refs {
		if o.contains(addr, length) {
			return o.back.mem, addr - o.back.address, true
		}
	}
	return nil, 0, false
}

func (j *job) resolveWord(addr uint64) ([]byte, uint64, bool) {
	if addr%8 != 0 {
		return nil, 0, false
	}
	return j.resolve(addr, 8)
}

func (d *Device) command(j *job, typ wire.CommandType, p []byte) device.JobStatus {
	l := d.layout
	switch typ {
	case wire.CmdNop, wire.CmdBarrier:
		// Commands of one stream already execute in order.
		return device.StatusComplete

	case wire.CmdTimestamp:
		if len(p) < wire.TimestampSize {
			return device.StatusFaulted
		}
		ts := wire.ReadTimestamp(p)
		mem, off, ok := j.resolveWord(ts.Address)
		if !ok {
			return d.fault(j, typ, ts.Address)
		}
		shm.StoreUint64(mem, off, d.clock())

	case wire.CmdFenceSignal:
		if len(p) < wire.FenceSignalSize {
			return device.StatusFaulted
		}
		fs := wire.ReadFenceSignal(p)
		mem, off, ok := j.resolveWord(fs.Address)
		if !ok {
			return d.fault(j, typ, fs.Address)
		}
		shm.StoreUint64(mem, off, fs.Value)

	case wire.CmdFenceWait:
		if len(p) < int(l.FenceWaitSize()) {
			return device.StatusFaulted
		}
		fw := l.FenceWait(p)
		mem, off, ok := j.resolveWord(fw.Address)
		if !ok {
			return d.fault(j, typ, fw.Address)
		}
		return d.spin(mem, off, fw)

	case wire.CmdFill:
		if len(p) < int(l.FillSize()) {
			return device.StatusFaulted
		}
		f, width := l.Fill(p)
		mem, off, ok := j.resolve(f.Address, f.Length)
		if !ok {
			return d.fault(j, typ, f.Address)
		}
		dst := mem[off : off+f.Length]
		for i := range dst {
			dst[i] = byte(f.Pattern >> (8 * (i % width)))
		}

	case wire.CmdCopy:
		if len(p) < int(l.CopySize()) {
			return device.StatusFaulted
		}
		c := l.Copy(p)
		dmem, doff, ok := j.resolve(c.Descriptor, uint64(l.CopyDescriptorSize()))
		if !ok {
			return d.fault(j, typ, c.Descriptor)
		}
		desc := l.CopyDescriptor(dmem[doff:])
		src, soff, ok := j.resolve(desc.Src, desc.Length)
		if !ok {
			return d.fault(j, typ, desc.Src)
		}
		dst, toff, ok := j.resolve(desc.Dst, desc.Length)
		if !ok {
			return d.fault(j, typ, desc.Dst)
		}
		copy(dst[toff:toff+desc.Length], src[soff:soff+desc.Length])

	default:
		d.log.Debug("unknown command", zap.Stringer("type", typ))
		return device.StatusFaulted
	}
	return device.StatusComplete
}

func (d *Device) fault(j *job, typ wire.CommandType, addr uint64) device.JobStatus {
	d.log.Debug("address not backed by any referenced object",
		zap.Uint32("buffer", uint32(j.buffer)),
		zap.Stringer("command", typ),
		zap.Uint64("address", addr))
	return device.StatusFaulted
}

// spin stalls the stream until the fence word satisfies fw, the device
// closes or the watchdog fires.
func (d *Device) spin(mem []byte, off uint64, fw wire.FenceWait) device.JobStatus {
	var bo iox.Backoff
	var deadline time.Time
	if d.cfg.HangTimeout > 0 {
		deadline = time.Now().Add(d.cfg.HangTimeout)
	}
	for !fw.Cond.Satisfied(shm.LoadUint64(mem, off), fw.Value) {
		select {
		case <-d.stop:
			return device.StatusAborted
		default:
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return device.StatusHang
		}
		bo.Wait()
	}
	return device.StatusComplete
}

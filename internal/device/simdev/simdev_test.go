package simdev

import (
	"testing"
	"time"

	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/shm"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openDevice(t *testing.T, mutate func(*Config)) *Device {
	t.Helper()
	cfg := DefaultConfig()
	cfg.HangTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// stream is a hand-encoded command stream used to drive the executor
// without the encoder package.
type stream struct {
	t      *testing.T
	d      *Device
	handle device.Handle
	addr   uint64
	mem    []byte
	off    uint64
}

func newStream(t *testing.T, d *Device) *stream {
	t.Helper()
	h, addr, err := d.Alloc(4096, device.FlagMappable)
	require.NoError(t, err)
	mem, err := d.Map(tokenFor(h), 4096, device.ProtReadWrite)
	require.NoError(t, err)
	return &stream{t: t, d: d, handle: h, addr: addr, mem: mem, off: wire.StreamHeaderSize}
}

func (s *stream) add(typ wire.CommandType, payloadSize uint32) []byte {
	size := wire.CommandHeaderSize + payloadSize
	s.d.layout.PutCommandHeader(s.mem[s.off:], typ, size)
	p := s.mem[s.off+wire.CommandHeaderSize : s.off+uint64(size)]
	s.off += uint64(size)
	return p
}

func (s *stream) signal(addr, value uint64) {
	wire.FenceSignal{Address: addr, Value: value}.Put(s.add(wire.CmdFenceSignal, wire.FenceSignalSize))
}

func (s *stream) wait(addr, value uint64) {
	p := s.add(wire.CmdFenceWait, s.d.layout.FenceWaitSize())
	require.NoError(s.t, s.d.layout.PutFenceWait(p, wire.FenceWait{Address: addr, Value: value}))
}

func (s *stream) finish() {
	wire.StreamHeader{RegionSize: uint32(s.off), FirstCommandOffset: wire.StreamHeaderSize}.Put(s.mem)
}

func (s *stream) waitDone(t *testing.T) device.JobStatus {
	t.Helper()
	req := &device.WaitRequest{Handle: s.handle, DeadlineNs: s.d.clock() + uint64(2*time.Second)}
	require.NoError(t, s.d.Wait(req))
	return req.Status
}

func TestOpen(t *testing.T) {
	t.Run("invalid queue depth", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.QueueDepth = 3
		_, err := Open(cfg, nil)
		assert.True(t, errors.Is(err, device.ErrInvalid))
	})

	t.Run("unknown revision", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Revision = 9
		_, err := Open(cfg, nil)
		assert.True(t, errors.Is(err, wire.ErrUnsupported))
	})

	t.Run("parameters", func(t *testing.T) {
		d := openDevice(t, func(c *Config) { c.Revision = wire.Revision1; c.Engines = 3 })
		rev, err := d.QueryParam(device.ParamDeviceRevision, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), rev)
		engines, err := d.QueryParam(device.ParamEngineCount, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), engines)
		_, err = d.QueryParam(device.ParamEngineJobs, 3)
		assert.True(t, errors.Is(err, device.ErrInvalid))
		_, err = d.QueryParam(device.Param(99), 0)
		assert.True(t, errors.Is(err, device.ErrInvalid))
	})
}

func TestMemory(t *testing.T) {
	t.Run("alloc rounds to pages and separates addresses", func(t *testing.T) {
		d := openDevice(t, nil)
		h1, a1, err := d.Alloc(100, 0)
		require.NoError(t, err)
		h2, a2, err := d.Alloc(5000, 0)
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
		assert.Greater(t, a2, a1+4096)

		info, err := d.Info(h2)
		require.NoError(t, err)
		assert.Equal(t, uint64(8192), info.Size)
		assert.Equal(t, a2, info.Address)

		used, err := d.QueryParam(device.ParamMemoryUsed, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(4096+8192), used)
	})

	t.Run("resource errors", func(t *testing.T) {
		d := openDevice(t, func(c *Config) { c.MemoryTotal = 8192 })
		_, _, err := d.Alloc(0, 0)
		assert.True(t, errors.Is(err, device.ErrInvalid))
		_, _, err = d.Alloc(4096, device.FlagDeviceLocal|device.FlagSystem)
		assert.True(t, errors.Is(err, device.ErrInvalid))
		_, _, err = d.Alloc(16384, 0)
		assert.True(t, errors.Is(err, device.ErrNoMemory))
	})

	t.Run("map requires mappable flag", func(t *testing.T) {
		d := openDevice(t, nil)
		h, _, err := d.Alloc(4096, 0)
		require.NoError(t, err)
		_, err = d.Map(tokenFor(h), 4096, device.ProtReadWrite)
		assert.True(t, errors.Is(err, device.ErrInvalid))
	})

	t.Run("release frees memory", func(t *testing.T) {
		d := openDevice(t, nil)
		h, _, err := d.Alloc(4096, 0)
		require.NoError(t, err)
		require.NoError(t, d.Release(h))
		assert.True(t, errors.Is(d.Release(h), device.ErrNotFound))
		used, _ := d.QueryParam(device.ParamMemoryUsed, 0)
		assert.Equal(t, uint64(0), used)
	})

	t.Run("export and import share memory", func(t *testing.T) {
		d := openDevice(t, nil)
		h, addr, err := d.Alloc(4096, device.FlagMappable|device.FlagShareable)
		require.NoError(t, err)
		ext, err := d.Export(h)
		require.NoError(t, err)

		h2, addr2, err := d.Import(ext)
		require.NoError(t, err)
		assert.NotEqual(t, h, h2)
		assert.Equal(t, addr, addr2)

		a, err := d.Map(tokenFor(h), 4096, device.ProtReadWrite)
		require.NoError(t, err)
		b, err := d.Map(tokenFor(h2), 4096, device.ProtReadWrite)
		require.NoError(t, err)
		a[10] = 0x5a
		assert.Equal(t, byte(0x5a), b[10])

		require.NoError(t, d.Release(h))
		used, _ := d.QueryParam(device.ParamMemoryUsed, 0)
		assert.Equal(t, uint64(4096), used)
		require.NoError(t, d.Release(h2))
		_, _, err = d.Import(ext)
		assert.True(t, errors.Is(err, device.ErrNotFound))
	})

	t.Run("export requires shareable flag", func(t *testing.T) {
		d := openDevice(t, nil)
		h, _, err := d.Alloc(4096, 0)
		require.NoError(t, err)
		_, err = d.Export(h)
		assert.True(t, errors.Is(err, device.ErrInvalid))
	})

	t.Run("host memory", func(t *testing.T) {
		d := openDevice(t, nil)
		mem := shm.Alloc(64)
		h, _, err := d.AllocFromMemory(mem, device.FlagMappable)
		require.NoError(t, err)
		info, err := d.Info(h)
		require.NoError(t, err)
		assert.Equal(t, uint64(64), info.Size)

		_, _, err = d.AllocFromMemory(mem[1:9], 0)
		assert.True(t, errors.Is(err, device.ErrInvalid))
	})
}

func TestExecution(t *testing.T) {
	t.Run("fence signal lands in referenced object", func(t *testing.T) {
		d := openDevice(t, nil)
		s := newStream(t, d)
		target, taddr, err := d.Alloc(4096, device.FlagMappable)
		require.NoError(t, err)
		tmem, err := d.Map(tokenFor(target), 4096, device.ProtReadWrite)
		require.NoError(t, err)

		s.signal(taddr+16, 42)
		s.finish()
		require.NoError(t, d.Submit(&device.SubmitRequest{Handles: []device.Handle{s.handle, target}}))
		assert.Equal(t, device.StatusComplete, s.waitDone(t))
		assert.Equal(t, uint64(42), shm.LoadUint64(tmem, 16))

		jobs, err := d.QueryParam(device.ParamEngineJobs, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), jobs)
	})

	t.Run("unreferenced object faults", func(t *testing.T) {
		d := openDevice(t, nil)
		s := newStream(t, d)
		_, taddr, err := d.Alloc(4096, 0)
		require.NoError(t, err)

		s.signal(taddr, 1)
		s.finish()
		require.NoError(t, d.Submit(&device.SubmitRequest{Handles: []device.Handle{s.handle}}))
		assert.Equal(t, device.StatusFaulted, s.waitDone(t))
	})

	t.Run("watchdog stops an unsatisfied wait", func(t *testing.T) {
		d := openDevice(t, func(c *Config) { c.HangTimeout = 20 * time.Millisecond })
		s := newStream(t, d)
		s.wait(s.addr+2048, 1)
		s.finish()
		require.NoError(t, d.Submit(&device.SubmitRequest{Handles: []device.Handle{s.handle}}))
		assert.Equal(t, device.StatusHang, s.waitDone(t))
	})

	t.Run("outstanding buffer is busy", func(t *testing.T) {
		d := openDevice(t, nil)
		s := newStream(t, d)
		s.wait(s.addr+2048, 1)
		s.finish()
		req := &device.SubmitRequest{Handles: []device.Handle{s.handle}}
		require.NoError(t, d.Submit(req))
		assert.True(t, device.IsBusy(d.Submit(req)))

		shm.StoreUint64(s.mem, 2048, 1)
		assert.Equal(t, device.StatusComplete, s.waitDone(t))
		require.NoError(t, d.Submit(req))
	})

	t.Run("wait times out on the device clock", func(t *testing.T) {
		d := openDevice(t, nil)
		s := newStream(t, d)
		s.wait(s.addr+2048, 1)
		s.finish()
		require.NoError(t, d.Submit(&device.SubmitRequest{Handles: []device.Handle{s.handle}}))
		err := d.Wait(&device.WaitRequest{Handle: s.handle, DeadlineNs: d.clock() + uint64(10*time.Millisecond)})
		assert.True(t, errors.Is(err, device.ErrTimeout))
		shm.StoreUint64(s.mem, 2048, 1)
		assert.Equal(t, device.StatusComplete, s.waitDone(t))
	})

	t.Run("wait on a never submitted buffer", func(t *testing.T) {
		d := openDevice(t, nil)
		s := newStream(t, d)
		err := d.Wait(&device.WaitRequest{Handle: s.handle, DeadlineNs: d.clock()})
		assert.True(t, errors.Is(err, device.ErrInvalid))
	})
}

func TestQueues(t *testing.T) {
	skipRace(t)
	t.Run("full queue is busy", func(t *testing.T) {
		d := openDevice(t, func(c *Config) { c.QueueDepth = 2 })
		q, err := d.CreateQueue(device.PriorityNormal, 0)
		require.NoError(t, err)

		gate := newStream(t, d)
		gate.wait(gate.addr+2048, 1)
		gate.finish()
		require.NoError(t, d.SubmitToQueue(&device.QueueSubmitRequest{Queue: q, Handles: []device.Handle{gate.handle}, PreemptionIndex: device.NoPreemption}))

		// The executor may already have dequeued the gate; fill the ring until busy.
		var busy bool
		for i := 0; i < 8 && !busy; i++ {
			s := newStream(t, d)
			s.finish()
			err := d.SubmitToQueue(&device.QueueSubmitRequest{Queue: q, Handles: []device.Handle{s.handle}, PreemptionIndex: device.NoPreemption})
			busy = device.IsBusy(err)
			if !busy {
				require.NoError(t, err)
			}
		}
		assert.True(t, busy)

		shm.StoreUint64(gate.mem, 2048, 1)
		assert.Equal(t, device.StatusComplete, gate.waitDone(t))
	})

	t.Run("preemption index must name a handle", func(t *testing.T) {
		d := openDevice(t, nil)
		q, err := d.CreateQueue(device.PriorityFocus, device.QueueTurbo)
		require.NoError(t, err)
		s := newStream(t, d)
		s.finish()
		err = d.SubmitToQueue(&device.QueueSubmitRequest{Queue: q, Handles: []device.Handle{s.handle}, PreemptionIndex: 1})
		assert.True(t, errors.Is(err, device.ErrInvalid))
	})

	t.Run("destroyed queue", func(t *testing.T) {
		d := openDevice(t, nil)
		q, err := d.CreateQueue(device.PriorityNormal, 0)
		require.NoError(t, err)
		require.NoError(t, d.DestroyQueue(q))
		assert.True(t, errors.Is(d.DestroyQueue(q), device.ErrNotFound))
	})
}

func TestClose(t *testing.T) {
	d := openDevice(t, nil)
	s := newStream(t, d)
	s.wait(s.addr+2048, 1)
	s.finish()
	require.NoError(t, d.Submit(&device.SubmitRequest{Handles: []device.Handle{s.handle}}))

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.True(t, errors.Is(d.Release(s.handle), device.ErrNoDevice))
	_, _, err := d.Alloc(4096, 0)
	assert.True(t, errors.Is(err, device.ErrNoDevice))
}

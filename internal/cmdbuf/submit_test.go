package cmdbuf

import (
	"testing"
	"time"

	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/device/simdev"
	"github.com/fxnlabs/cmdstream/internal/shm"
	"github.com/fxnlabs/cmdstream/internal/wire"
	mockdevice "github.com/fxnlabs/cmdstream/mocks/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const bufferFlags = device.FlagMappable | device.FlagWriteCombine

// mockBuffer opens a Device on a mocked session and allocates one buffer
// whose memory lives in the test.
func mockBuffer(t *testing.T, contextSave uint64) (*mockdevice.MockSession, *Buffer) {
	t.Helper()
	sess := mockdevice.NewMockSession(t)
	sess.EXPECT().QueryParam(device.ParamDeviceRevision, uint32(0)).Return(uint64(wire.Revision2), nil)
	sess.EXPECT().QueryParam(device.ParamContextSaveSize, uint32(0)).Return(contextSave, nil)
	sess.EXPECT().Alloc(uint64(4096), bufferFlags).Return(device.Handle(1), uint64(0x10000), nil)
	sess.EXPECT().Info(device.Handle(1)).Return(device.ObjectInfo{
		Address:  0x10000,
		Size:     4096,
		MapToken: 0x1000,
		Flags:    bufferFlags,
	}, nil)
	sess.EXPECT().Map(uint64(0x1000), uint64(4096), device.ProtReadWrite).Return(shm.Alloc(4096), nil)

	dev, err := Open(sess, zap.NewNop())
	require.NoError(t, err)
	b, err := dev.NewBuffer(4096)
	require.NoError(t, err)
	return sess, b
}

func TestSubmitRetry(t *testing.T) {
	policy := RetryPolicy{Timeout: time.Second, Interval: time.Millisecond}

	t.Run("BusyThenSuccess", func(t *testing.T) {
		sess, b := mockBuffer(t, 256)
		require.NoError(t, b.Start(0, 0))
		require.NoError(t, b.Barrier())

		sess.EXPECT().Submit(mock.Anything).Return(device.ErrBusy).Times(3)
		sess.EXPECT().Submit(mock.Anything).Return(nil).Once()

		require.NoError(t, b.Submit(0, device.PriorityNormal, policy))
		sess.AssertNumberOfCalls(t, "Submit", 4)
	})

	t.Run("Request", func(t *testing.T) {
		sess, b := mockBuffer(t, 256)
		require.NoError(t, b.Start(64, 0))

		var got device.SubmitRequest
		sess.EXPECT().Submit(mock.Anything).Run(func(req *device.SubmitRequest) {
			got = *req
		}).Return(nil).Once()

		require.NoError(t, b.Submit(1, device.PriorityRealtime, policy))
		assert.Equal(t, uint32(1), got.Engine)
		assert.Equal(t, []device.Handle{1}, got.Handles)
		assert.Equal(t, uint64(64), got.CommandsOffset)
		assert.Equal(t, device.PriorityRealtime, got.Priority)

		hdr, err := b.Header()
		require.NoError(t, err)
		assert.Equal(t, uint32(wire.StreamHeaderSize), hdr.RegionSize)
	})

	t.Run("AlwaysBusy", func(t *testing.T) {
		sess, b := mockBuffer(t, 256)
		require.NoError(t, b.Start(0, 0))
		sess.EXPECT().Submit(mock.Anything).Return(device.ErrBusy)

		timeout := 30 * time.Millisecond
		begin := time.Now()
		err := b.Submit(0, device.PriorityNormal, RetryPolicy{Timeout: timeout, Interval: 2 * time.Millisecond})
		elapsed := time.Since(begin)

		assert.ErrorIs(t, err, device.ErrTimeout)
		assert.GreaterOrEqual(t, elapsed, timeout)
		submits := 0
		for _, c := range sess.Calls {
			if c.Method == "Submit" {
				submits++
			}
		}
		assert.Greater(t, submits, 1)
	})

	t.Run("HardError", func(t *testing.T) {
		sess, b := mockBuffer(t, 256)
		require.NoError(t, b.Start(0, 0))
		sess.EXPECT().Submit(mock.Anything).Return(device.ErrInvalid).Once()

		err := b.Submit(0, device.PriorityNormal, policy)
		assert.ErrorIs(t, err, device.ErrInvalid)
		assert.False(t, device.IsBusy(err))
		sess.AssertNumberOfCalls(t, "Submit", 1)
	})
}

func TestSubmitPreflight(t *testing.T) {
	policy := RetryPolicy{Timeout: time.Second}

	t.Run("NotStarted", func(t *testing.T) {
		sess, b := mockBuffer(t, 256)
		assert.ErrorIs(t, b.Submit(0, device.PriorityNormal, policy), ErrInvariant)
		assert.ErrorIs(t, b.SubmitToQueue(1, device.PriorityNormal, nil), ErrInvariant)
		sess.AssertNotCalled(t, "Submit", mock.Anything)
		sess.AssertNotCalled(t, "SubmitToQueue", mock.Anything)
	})

	t.Run("NoRoomForContextSave", func(t *testing.T) {
		// 4096-200 is not 64-byte aligned, so a full window leaves the
		// aligned context save area past the end of the buffer.
		sess, b := mockBuffer(t, 200)
		require.NoError(t, b.Start(0, 0))
		require.NoError(t, b.Nop(uint32(b.Remaining())))

		assert.ErrorIs(t, b.Submit(0, device.PriorityNormal, policy), ErrCapacity)
		assert.ErrorIs(t, b.SubmitToQueue(1, device.PriorityNormal, nil), ErrCapacity)
		sess.AssertNotCalled(t, "Submit", mock.Anything)
		sess.AssertNotCalled(t, "SubmitToQueue", mock.Anything)
	})
}

func TestSubmitToQueueBusy(t *testing.T) {
	sess, b := mockBuffer(t, 256)
	require.NoError(t, b.Start(0, 0))

	var got device.QueueSubmitRequest
	sess.EXPECT().SubmitToQueue(mock.Anything).Run(func(req *device.QueueSubmitRequest) {
		got = *req
	}).Return(device.ErrBusy).Once()

	err := b.SubmitToQueue(3, device.PriorityFocus, nil)
	assert.True(t, device.IsBusy(err))
	sess.AssertNumberOfCalls(t, "SubmitToQueue", 1)
	assert.Equal(t, device.QueueID(3), got.Queue)
	assert.Equal(t, device.NoPreemption, got.PreemptionIndex)
}

func TestSubmitExecution(t *testing.T) {
	policy := RetryPolicy{Timeout: time.Second, Interval: time.Millisecond}

	t.Run("Signal", func(t *testing.T) {
		_, dev := openSim(t, nil)
		b := newBuffer(t, dev)
		fence := newObject(t, dev, 4096)

		require.NoError(t, b.Start(0, 0))
		require.NoError(t, b.FenceSignal(fence, 16, 42))
		require.NoError(t, b.Submit(0, device.PriorityNormal, policy))

		status, err := b.Wait(time.Second)
		require.NoError(t, err)
		assert.Equal(t, device.StatusComplete, status)
		v, err := fence.LoadUint64(16)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), v)
	})

	t.Run("FillCopyTimestamp", func(t *testing.T) {
		_, dev := openSim(t, nil)
		b := newBuffer(t, dev)
		src := newObject(t, dev, 4096)
		dst := newObject(t, dev, 4096)
		desc := newObject(t, dev, 4096)
		for i := uint64(0); i < 32; i++ {
			require.NoError(t, src.WriteUint8(i, uint8(i+1)))
		}

		require.NoError(t, b.Start(0, 0))
		require.NoError(t, b.FillMemory(dst, 0, 16, 0x0807060504030201))
		require.NoError(t, b.CopyMemory(desc, 0, src, 0, dst, 64, 32))
		require.NoError(t, b.Timestamp(dst, 128))
		require.NoError(t, b.Submit(1, device.PriorityNormal, policy))

		status, err := b.Wait(time.Second)
		require.NoError(t, err)
		require.Equal(t, device.StatusComplete, status)

		filled := make([]byte, 16)
		require.NoError(t, dst.ReadAt(filled, 0))
		assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 1, 2, 3, 4, 5, 6, 7, 8}, filled)

		want := make([]byte, 32)
		got := make([]byte, 32)
		require.NoError(t, src.ReadAt(want, 0))
		require.NoError(t, dst.ReadAt(got, 64))
		assert.Equal(t, want, got)

		ts, err := dst.LoadUint64(128)
		require.NoError(t, err)
		assert.NotZero(t, ts)
	})

	t.Run("CrossEngineFence", func(t *testing.T) {
		_, dev := openSim(t, nil)
		waiter := newBuffer(t, dev)
		signaler := newBuffer(t, dev)
		fence := newObject(t, dev, 4096)

		require.NoError(t, waiter.Start(0, 0))
		require.NoError(t, waiter.FenceWait(fence, 0, 1, wire.WaitEqual))
		require.NoError(t, waiter.FenceSignal(fence, 8, 7))
		require.NoError(t, waiter.Timestamp(fence, 16))
		jobs, err := dev.Session().QueryParam(device.ParamEngineJobs, 0)
		require.NoError(t, err)
		require.NoError(t, waiter.Submit(0, device.PriorityNormal, policy))

		_, err = waiter.Wait(20 * time.Millisecond)
		assert.ErrorIs(t, err, device.ErrTimeout)
		v, err := fence.LoadUint64(8)
		require.NoError(t, err)
		assert.Zero(t, v, "side effect ran before the fence was signaled")

		require.NoError(t, signaler.Start(0, 0))
		require.NoError(t, signaler.FenceSignal(fence, 0, 1))
		require.NoError(t, signaler.Submit(1, device.PriorityNormal, policy))

		for _, b := range []*Buffer{signaler, waiter} {
			status, err := b.Wait(time.Second)
			require.NoError(t, err)
			assert.Equal(t, device.StatusComplete, status)
		}
		v, err = fence.LoadUint64(8)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), v)
		stamp, err := fence.LoadUint64(16)
		require.NoError(t, err)
		require.NotZero(t, stamp)

		time.Sleep(5 * time.Millisecond)
		after, err := dev.Session().QueryParam(device.ParamEngineJobs, 0)
		require.NoError(t, err)
		assert.Equal(t, jobs+1, after, "waiter stream executed more than once")
		again, err := fence.LoadUint64(16)
		require.NoError(t, err)
		assert.Equal(t, stamp, again)
	})

	t.Run("FullEngineTimesOut", func(t *testing.T) {
		_, dev := openSim(t, func(c *simdev.Config) { c.EngineDepth = 1 })
		fence := newObject(t, dev, 4096)
		stalled := newBuffer(t, dev)
		queued := newBuffer(t, dev)
		rejected := newBuffer(t, dev)
		release := newBuffer(t, dev)

		require.NoError(t, stalled.Start(0, 0))
		require.NoError(t, stalled.FenceWait(fence, 0, 1, wire.WaitEqual))
		require.NoError(t, stalled.Submit(0, device.PriorityNormal, policy))

		// Busy until the engine picks up the stalled job, then accepted.
		require.NoError(t, queued.Start(0, 0))
		require.NoError(t, queued.FenceSignal(fence, 8, 2))
		require.NoError(t, queued.Submit(0, device.PriorityNormal, policy))

		require.NoError(t, rejected.Start(0, 0))
		require.NoError(t, rejected.Barrier())
		timeout := 25 * time.Millisecond
		begin := time.Now()
		err := rejected.Submit(0, device.PriorityNormal, RetryPolicy{Timeout: timeout, Interval: time.Millisecond})
		assert.ErrorIs(t, err, device.ErrTimeout)
		assert.GreaterOrEqual(t, time.Since(begin), timeout)

		require.NoError(t, release.Start(0, 0))
		require.NoError(t, release.FenceSignal(fence, 0, 1))
		require.NoError(t, release.Submit(1, device.PriorityNormal, policy))
		for _, b := range []*Buffer{stalled, queued} {
			status, err := b.Wait(time.Second)
			require.NoError(t, err)
			assert.Equal(t, device.StatusComplete, status)
		}
		v, err := fence.LoadUint64(8)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), v)
	})

	t.Run("ReleasedTarget", func(t *testing.T) {
		_, dev := openSim(t, nil)
		b := newBuffer(t, dev)
		fence := newObject(t, dev, 4096)

		require.NoError(t, b.Start(0, 0))
		require.NoError(t, b.FenceSignal(fence, 0, 1))
		require.NoError(t, fence.Destroy())

		err := b.Submit(0, device.PriorityNormal, policy)
		assert.ErrorIs(t, err, device.ErrNotFound)
	})

	t.Run("Revision1", func(t *testing.T) {
		_, dev := openSim(t, func(c *simdev.Config) { c.Revision = wire.Revision1 })
		b := newBuffer(t, dev)
		obj := newObject(t, dev, 4096)

		require.NoError(t, b.Start(0, 0))
		require.NoError(t, b.FillMemory(obj, 0, 8, 0xAABBCCDD))
		require.NoError(t, b.FenceSignal(obj, 64, 3))
		require.NoError(t, b.FenceWait(obj, 64, 3, wire.WaitEqual))
		require.NoError(t, b.Submit(0, device.PriorityNormal, policy))

		status, err := b.Wait(time.Second)
		require.NoError(t, err)
		assert.Equal(t, device.StatusComplete, status)
		v, err := obj.ReadUint64(0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0xAABBCCDD_AABBCCDD), v)
	})
}

func TestSubmitToQueue(t *testing.T) {
	skipRace(t)
	sim, dev := openSim(t, nil)
	q, err := sim.CreateQueue(device.PriorityNormal, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sim.DestroyQueue(q) })

	b := newBuffer(t, dev)
	fence := newObject(t, dev, 4096)
	preempt := newObject(t, dev, 4096)

	require.NoError(t, b.Start(0, 0))
	require.NoError(t, b.FenceSignal(fence, 0, 9))
	require.NoError(t, b.SubmitToQueue(q, device.PriorityNormal, preempt))
	assert.Equal(t, []device.Handle{b.Handle(), fence.Handle(), preempt.Handle()}, b.References())

	status, err := b.Wait(time.Second)
	require.NoError(t, err)
	assert.Equal(t, device.StatusComplete, status)
	v, err := fence.LoadUint64(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), v)
}

func TestWait(t *testing.T) {
	_, dev := openSim(t, nil)

	t.Run("NeverSubmitted", func(t *testing.T) {
		b := newBuffer(t, dev)
		_, err := b.Wait(time.Millisecond)
		assert.ErrorIs(t, err, device.ErrInvalid)
	})

	t.Run("Destroyed", func(t *testing.T) {
		b, err := dev.NewBuffer(4096)
		require.NoError(t, err)
		require.NoError(t, b.Destroy())
		_, err = b.Wait(time.Millisecond)
		assert.ErrorIs(t, err, ErrInvariant)
	})
}

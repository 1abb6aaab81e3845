// Package fence implements memory-resident fences: 8-byte words that one
// command stream signals and another waits on, ordering independently
// scheduled streams without a round trip through the device session.
//
// A fence moves through three conventional values. The CPU writes Reset
// before each round, a signal command writes Signal, and a wait command
// stalls its stream until the word satisfies the wait condition against
// Wait. Reusing a fence without Reset lets a stale Signal from the previous
// round pass the next wait immediately.
package fence

import (
	"time"

	"code.hybscloud.com/iox"
	"github.com/fxnlabs/cmdstream/internal/cmdbuf"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/memobj"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"github.com/pkg/errors"
)

var (
	// ErrMisaligned is returned for fence offsets that are not 8-byte aligned.
	ErrMisaligned = errors.New("fence offset not 8-byte aligned")
	// ErrValues is returned when the sentinel values cannot order a round:
	// Signal must satisfy the wait and Reset must not.
	ErrValues = errors.New("inconsistent fence values")
)

// Values are the sentinels of one fence round.
type Values struct {
	Reset  uint64
	Wait   uint64
	Signal uint64
}

// DefaultValues is a fence that waits for 1 after a reset to 0.
var DefaultValues = Values{Reset: 0, Wait: 1, Signal: 1}

// State is the CPU view of a fence word.
type State int

const (
	StateUnknown State = iota
	StateReset
	StateWaitPending
	StateSignaled
)

func (s State) String() string {
	switch s {
	case StateReset:
		return "reset"
	case StateWaitPending:
		return "wait-pending"
	case StateSignaled:
		return "signaled"
	default:
		return "unknown"
	}
}

// Option configures a Fence.
type Option func(*Fence)

// WithCondition selects the wait condition. Revision 1 devices only support
// wire.WaitEqual.
func WithCondition(cond wire.WaitCond) Option {
	return func(f *Fence) { f.cond = cond }
}

// Fence is a word at an 8-byte aligned offset of a memory object.
type Fence struct {
	obj    *memobj.Object
	offset uint64
	values Values
	cond   wire.WaitCond
}

// New places a fence at offset in obj. The object must be backed; CPU side
// operations additionally need it mapped.
func New(obj *memobj.Object, offset uint64, values Values, opts ...Option) (*Fence, error) {
	if obj == nil || !obj.Backed() {
		return nil, memobj.ErrNotBacked
	}
	if offset%8 != 0 {
		return nil, errors.Wrapf(ErrMisaligned, "offset %d", offset)
	}
	if !obj.Contains(offset, 8) {
		return nil, errors.Wrapf(memobj.ErrOutOfRange, "fence at %d in object of %d bytes", offset, obj.Size())
	}
	f := &Fence{obj: obj, offset: offset, values: values, cond: wire.WaitEqual}
	for _, opt := range opts {
		opt(f)
	}
	switch {
	case !f.cond.Satisfied(values.Signal, values.Wait):
		return nil, errors.Wrapf(ErrValues, "signal %d never satisfies wait %d", values.Signal, values.Wait)
	case f.cond.Satisfied(values.Reset, values.Wait):
		return nil, errors.Wrapf(ErrValues, "reset %d already satisfies wait %d", values.Reset, values.Wait)
	}
	return f, nil
}

// Object holding the fence word.
func (f *Fence) Object() *memobj.Object { return f.obj }

// Offset of the fence word within its object.
func (f *Fence) Offset() uint64 { return f.offset }

// Address is the device address of the fence word.
func (f *Fence) Address() uint64 { return f.obj.Address() + f.offset }

// Values returns the sentinels of the fence.
func (f *Fence) Values() Values { return f.values }

// Reset writes the reset sentinel. Call it before submitting a new round.
func (f *Fence) Reset() error {
	return f.obj.StoreUint64(f.offset, f.values.Reset)
}

// EncodeWait appends a command that stalls b until the fence is signaled.
func (f *Fence) EncodeWait(b *cmdbuf.Buffer) error {
	return b.FenceWait(f.obj, f.offset, f.values.Wait, f.cond)
}

// EncodeSignal appends a command that signals the fence once every earlier
// command of b has executed.
func (f *Fence) EncodeSignal(b *cmdbuf.Buffer) error {
	return b.FenceSignal(f.obj, f.offset, f.values.Signal)
}

// Value reads the fence word.
func (f *Fence) Value() (uint64, error) {
	return f.obj.LoadUint64(f.offset)
}

// State classifies the current fence word. A word matching none of the
// sentinels is StateUnknown, typically a stale value from another round.
func (f *Fence) State() (State, error) {
	v, err := f.Value()
	if err != nil {
		return StateUnknown, err
	}
	switch {
	case f.cond.Satisfied(v, f.values.Wait):
		return StateSignaled, nil
	case v == f.values.Reset:
		return StateReset, nil
	case f.cond == wire.WaitGreaterEqual && v > f.values.Reset:
		// a counter fence partway to its target
		return StateWaitPending, nil
	default:
		return StateUnknown, nil
	}
}

// Signaled reports whether the fence word satisfies the wait.
func (f *Fence) Signaled() (bool, error) {
	v, err := f.Value()
	if err != nil {
		return false, err
	}
	return f.cond.Satisfied(v, f.values.Wait), nil
}

// Poll spins on the CPU until the fence is signaled or timeout elapses, in
// which case device.ErrTimeout is returned.
func (f *Fence) Poll(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var bo iox.Backoff
	for {
		ok, err := f.Signaled()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return errors.Wrapf(device.ErrTimeout, "fence at %#x not signaled within %s", f.Address(), timeout)
		}
		bo.Wait()
	}
}

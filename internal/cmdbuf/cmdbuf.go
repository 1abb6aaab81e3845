// Package cmdbuf encodes command streams into device memory objects and
// submits them to engines and queues.
//
// A Buffer goes through Empty, Initialized (Start), Appending (commands
// added) and Finalized (Prepare, run by Submit). Start is the only way into
// Initialized: it zeroes the buffer from the start offset and registers the
// buffer itself as reference 0. Every command that names a device address
// also registers the object behind it, because the device resolves only the
// objects a submission enumerates.
package cmdbuf

import (
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/memobj"
	"github.com/fxnlabs/cmdstream/internal/metrics"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type state int

const (
	stateEmpty state = iota
	stateInitialized
	stateAppending
	stateFinalized
)

// Buffer is a memory object holding a command stream and the table of
// objects the stream references.
type Buffer struct {
	*memobj.Object

	dev        *Device
	log        *zap.Logger
	apiVersion uint32

	state state
	start uint64
	end   uint64
	first uint32

	// refs keeps first-reference order, index maps a handle to its position.
	refs  []device.Handle
	index map[device.Handle]int
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithAPIVersion sets the api_version field of the stream header.
func WithAPIVersion(v uint32) Option {
	return func(b *Buffer) { b.apiVersion = v }
}

// NewBuffer allocates a mapped command buffer of at least size bytes.
// The buffer is Empty until Start is called.
func (d *Device) NewBuffer(size uint64, opts ...Option) (*Buffer, error) {
	obj := memobj.New(d.sess, size, device.FlagMappable|device.FlagWriteCombine, d.log)
	if err := obj.Create(); err != nil {
		return nil, err
	}
	if obj.Size() < d.contextSaveSize+wire.StreamHeaderSize {
		_ = obj.Destroy()
		return nil, errors.Wrapf(ErrCapacity, "buffer of %d bytes cannot hold a header and %d bytes of context save", obj.Size(), d.contextSaveSize)
	}
	b := &Buffer{
		Object: obj,
		dev:    d,
		log:    d.log.With(zap.Uint32("buffer", uint32(obj.Handle()))),
		index:  make(map[device.Handle]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// limit is the end of the writable window.
func (b *Buffer) limit() uint64 {
	return b.Size() - b.dev.contextSaveSize
}

// Start (re)initializes the stream at offset. Commands begin commandsOffset
// bytes after it; zero selects the stream header size.
func (b *Buffer) Start(offset uint64, commandsOffset uint32) error {
	if !b.Mapped() {
		return errors.Wrap(memobj.ErrNotMapped, "start")
	}
	if commandsOffset == 0 {
		commandsOffset = wire.StreamHeaderSize
	}
	if offset%wire.CommandAlign != 0 || commandsOffset < wire.StreamHeaderSize || commandsOffset%wire.CommandAlign != 0 {
		return errors.Wrapf(ErrInvariant, "start at %d with commands at +%d", offset, commandsOffset)
	}
	if offset > b.limit() || uint64(commandsOffset) > b.limit()-offset {
		return errors.Wrapf(ErrCapacity, "start at %d with commands at +%d in window of %d", offset, commandsOffset, b.limit())
	}
	if err := b.Object.Fill(0, offset, b.Size()-offset); err != nil {
		return err
	}

	b.start = offset
	b.first = commandsOffset
	b.end = offset + uint64(commandsOffset)
	b.refs = b.refs[:0]
	clear(b.index)
	b.refs = append(b.refs, b.Handle())
	b.index[b.Handle()] = 0
	b.state = stateInitialized
	return nil
}

// StartOffset is the offset of the stream header.
func (b *Buffer) StartOffset() uint64 { return b.start }

// EndOffset is the offset just past the last encoded command.
func (b *Buffer) EndOffset() uint64 { return b.end }

// Region is the size of the active window, header included.
func (b *Buffer) Region() uint64 { return b.end - b.start }

// Remaining is the number of bytes commands may still occupy.
func (b *Buffer) Remaining() uint64 {
	if b.state == stateEmpty || b.end >= b.limit() {
		return 0
	}
	return b.limit() - b.end
}

// References returns a copy of the referenced handles in first-reference order.
func (b *Buffer) References() []device.Handle {
	return append([]device.Handle(nil), b.refs...)
}

// AddCommand appends a command header of type t and total size bytes and
// returns the zeroed payload for the caller to fill. If the command does not
// fit, nothing is written and ErrCapacity is returned.
func (b *Buffer) AddCommand(t wire.CommandType, size uint32) ([]byte, error) {
	if b.state == stateEmpty {
		return nil, errors.Wrap(ErrInvariant, "add command before start")
	}
	if size < wire.CommandHeaderSize || size%wire.CommandAlign != 0 {
		return nil, errors.Wrapf(ErrInvariant, "%s command of %d bytes", t, size)
	}
	if uint64(size) > b.Remaining() {
		return nil, errors.Wrapf(ErrCapacity, "%s command of %d bytes, %d remaining", t, size, b.Remaining())
	}

	mem := b.Bytes()
	cmd := mem[b.end : b.end+uint64(size)]
	clear(cmd)
	b.dev.layout.PutCommandHeader(cmd, t, size)
	b.end += uint64(size)
	b.state = stateAppending
	metrics.CommandBytes.WithLabelValues(t.String()).Add(float64(size))
	return cmd[wire.CommandHeaderSize:], nil
}

// AddReference registers obj in the reference table and returns its index.
// Registering the same handle again returns the existing index.
func (b *Buffer) AddReference(obj *memobj.Object) (int, error) {
	if b.state == stateEmpty {
		return 0, errors.Wrap(ErrInvariant, "add reference before start")
	}
	if !obj.Backed() {
		return 0, errors.Wrap(memobj.ErrNotBacked, "add reference")
	}
	h := obj.Handle()
	if i, ok := b.index[h]; ok {
		return i, nil
	}
	b.refs = append(b.refs, h)
	b.index[h] = len(b.refs) - 1
	return len(b.refs) - 1, nil
}

// Resize sets the region size to n. Growing appends a nop of exactly the
// difference; shrinking truncates and is only valid at a command boundary
// known to the caller.
func (b *Buffer) Resize(n uint64) error {
	if b.state == stateEmpty {
		return errors.Wrap(ErrInvariant, "resize before start")
	}
	cur := b.Region()
	switch {
	case n == cur:
		return nil
	case n < uint64(b.first) || n%wire.CommandAlign != 0:
		return errors.Wrapf(ErrInvariant, "resize to %d with commands at +%d", n, b.first)
	case n > cur:
		diff := n - cur
		if diff > uint64(^uint32(0)) {
			return errors.Wrapf(ErrCapacity, "resize by %d bytes", diff)
		}
		if diff < wire.CommandHeaderSize {
			return errors.Wrapf(ErrInvariant, "resize by %d bytes is smaller than a nop", diff)
		}
		_, err := b.AddCommand(wire.CmdNop, uint32(diff))
		return err
	default:
		b.end = b.start + n
		return nil
	}
}

// checkCapacity verifies the aligned end plus the context save tail fits.
func (b *Buffer) checkCapacity() error {
	if wire.AlignUp(b.end, wire.ContextSaveAlign)+b.dev.contextSaveSize > b.Size() {
		return errors.Wrapf(ErrCapacity, "end %d leaves no room for %d bytes of context save", b.end, b.dev.contextSaveSize)
	}
	return nil
}

// Prepare writes the stream header: region size, first command offset,
// context save address and api version.
func (b *Buffer) Prepare() error {
	if b.state == stateEmpty {
		return errors.Wrap(ErrInvariant, "prepare before start")
	}
	if err := b.checkCapacity(); err != nil {
		return err
	}
	hdr := wire.StreamHeader{
		RegionSize:         uint32(b.Region()),
		FirstCommandOffset: b.first,
		ContextSaveAddress: b.Address() + wire.AlignUp(b.end, wire.ContextSaveAlign),
		APIVersion:         b.apiVersion,
	}
	hdr.Put(b.Bytes()[b.start:])
	b.state = stateFinalized
	return nil
}

// Header decodes the stream header as last written by Prepare.
func (b *Buffer) Header() (wire.StreamHeader, error) {
	if !b.Mapped() {
		return wire.StreamHeader{}, memobj.ErrNotMapped
	}
	return wire.ReadStreamHeader(b.Bytes()[b.start:]), nil
}

// Destroy releases the buffer memory. The buffer returns to Empty.
func (b *Buffer) Destroy() error {
	b.state = stateEmpty
	b.refs = nil
	clear(b.index)
	return b.Object.Destroy()
}

package cmdbuf

import (
	"github.com/fxnlabs/cmdstream/internal/memobj"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"github.com/pkg/errors"
)

// target validates that [offset, offset+length) of obj is addressable and
// returns its device address.
func target(obj *memobj.Object, offset, length, align uint64) (uint64, error) {
	if obj == nil || !obj.Backed() {
		return 0, errors.Wrap(memobj.ErrNotBacked, "command target")
	}
	if !obj.Contains(offset, length) {
		return 0, errors.Wrapf(memobj.ErrOutOfRange, "[%d, %d) in object %d of %d bytes", offset, offset+length, obj.Handle(), obj.Size())
	}
	if align > 1 && offset%align != 0 {
		return 0, errors.Wrapf(ErrInvariant, "offset %d not %d-byte aligned", offset, align)
	}
	return obj.Address() + offset, nil
}

// emit appends a command whose payload has been encoded into p and registers
// objs. The payload is encoded before anything is written so that encoding
// errors leave the stream untouched.
func (b *Buffer) emit(t wire.CommandType, p []byte, objs ...*memobj.Object) error {
	payload, err := b.AddCommand(t, wire.CommandHeaderSize+uint32(len(p)))
	if err != nil {
		return err
	}
	copy(payload, p)
	for _, obj := range objs {
		if _, err := b.AddReference(obj); err != nil {
			return err
		}
	}
	return nil
}

// Nop appends a padding command of size bytes, header included.
func (b *Buffer) Nop(size uint32) error {
	_, err := b.AddCommand(wire.CmdNop, size)
	return err
}

// Barrier appends a full ordering barrier: every prior command of the stream
// completes before any later one starts.
func (b *Buffer) Barrier() error {
	_, err := b.AddCommand(wire.CmdBarrier, wire.CommandHeaderSize)
	return err
}

// Timestamp makes the device write its clock to obj at offset.
func (b *Buffer) Timestamp(obj *memobj.Object, offset uint64) error {
	addr, err := target(obj, offset, 8, 8)
	if err != nil {
		return err
	}
	p := make([]byte, wire.TimestampSize)
	wire.Timestamp{Address: addr}.Put(p)
	return b.emit(wire.CmdTimestamp, p, obj)
}

// FenceSignal makes the device write value to obj at offset.
func (b *Buffer) FenceSignal(obj *memobj.Object, offset, value uint64) error {
	addr, err := target(obj, offset, 8, 8)
	if err != nil {
		return err
	}
	p := make([]byte, wire.FenceSignalSize)
	wire.FenceSignal{Address: addr, Value: value}.Put(p)
	return b.emit(wire.CmdFenceSignal, p, obj)
}

// FenceWait stalls the rest of the stream until the word of obj at offset
// satisfies cond against value. Revision 1 devices support WaitEqual only.
func (b *Buffer) FenceWait(obj *memobj.Object, offset, value uint64, cond wire.WaitCond) error {
	addr, err := target(obj, offset, 8, 8)
	if err != nil {
		return err
	}
	p := make([]byte, b.dev.layout.FenceWaitSize())
	if err := b.dev.layout.PutFenceWait(p, wire.FenceWait{Address: addr, Value: value, Cond: cond}); err != nil {
		return err
	}
	return b.emit(wire.CmdFenceWait, p, obj)
}

// FillMemory makes the device repeat pattern, least significant byte first,
// over length bytes of obj starting at offset. Revision 1 devices take a
// 32-bit pattern.
func (b *Buffer) FillMemory(obj *memobj.Object, offset, length, pattern uint64) error {
	addr, err := target(obj, offset, length, 1)
	if err != nil {
		return err
	}
	p := make([]byte, b.dev.layout.FillSize())
	if err := b.dev.layout.PutFill(p, wire.Fill{Address: addr, Length: length, Pattern: pattern}); err != nil {
		return err
	}
	return b.emit(wire.CmdFill, p, obj)
}

// CopyMemory makes the device copy length bytes from src to dst. The copy is
// described by a record written into desc at descOffset; desc must be
// mapped and must stay allocated until the stream completes.
func (b *Buffer) CopyMemory(desc *memobj.Object, descOffset uint64, src *memobj.Object, srcOffset uint64, dst *memobj.Object, dstOffset, length uint64) error {
	l := b.dev.layout
	descAddr, err := target(desc, descOffset, uint64(l.CopyDescriptorSize()), 8)
	if err != nil {
		return err
	}
	srcAddr, err := target(src, srcOffset, length, 1)
	if err != nil {
		return err
	}
	dstAddr, err := target(dst, dstOffset, length, 1)
	if err != nil {
		return err
	}
	if desc.Handle() == b.Handle() {
		return errors.Wrap(ErrInvariant, "copy descriptor inside the command buffer")
	}

	record := make([]byte, l.CopyDescriptorSize())
	l.PutCopyDescriptor(record, wire.CopyDescriptor{Src: srcAddr, Dst: dstAddr, Length: length})
	p := make([]byte, l.CopySize())
	l.PutCopy(p, wire.Copy{Descriptor: descAddr})
	if uint64(len(p))+wire.CommandHeaderSize > b.Remaining() {
		return errors.Wrapf(ErrCapacity, "copy command, %d remaining", b.Remaining())
	}
	if err := desc.WriteAt(record, descOffset); err != nil {
		return err
	}
	return b.emit(wire.CmdCopy, p, desc, src, dst)
}

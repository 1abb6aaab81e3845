package wire

import (
	"fmt"

	"github.com/pkg/errors"
)

// Revision is a device hardware revision as reported by the device.
type Revision uint32

const (
	// Revision1 devices use 16-bit command types and narrow payloads.
	Revision1 Revision = 1
	// Revision2 devices use 32-bit command types, conditional fence waits
	// and 64-bit fill patterns.
	Revision2 Revision = 2
)

func (r Revision) String() string {
	return fmt.Sprintf("rev%d", uint32(r))
}

// ErrUnsupported is returned for revisions or payload values a layout cannot encode.
var ErrUnsupported = errors.New("unsupported by device revision")

// Layout encodes and decodes the revision-dependent parts of the stream.
// A layout is chosen once per session; the revision never changes within it.
type Layout interface {
	Revision() Revision

	PutCommandHeader(b []byte, t CommandType, size uint32)
	CommandHeader(b []byte) (CommandType, uint32)

	FenceWaitSize() uint32
	PutFenceWait(p []byte, w FenceWait) error
	FenceWait(p []byte) FenceWait

	FillSize() uint32
	PutFill(p []byte, f Fill) error
	Fill(p []byte) (f Fill, patternWidth int)

	CopySize() uint32
	PutCopy(p []byte, c Copy)
	Copy(p []byte) Copy

	CopyDescriptorSize() uint32
	PutCopyDescriptor(p []byte, d CopyDescriptor)
	CopyDescriptor(p []byte) CopyDescriptor
}

// LayoutFor returns the layout of rev.
func LayoutFor(rev Revision) (Layout, error) {
	switch rev {
	case Revision1:
		return layoutV1{}, nil
	case Revision2:
		return layoutV2{}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupported, "revision %d", uint32(rev))
	}
}

type layoutV1 struct{}

func (layoutV1) Revision() Revision { return Revision1 }

func (layoutV1) PutCommandHeader(b []byte, t CommandType, size uint32) {
	le.PutUint16(b[0:], uint16(t))
	le.PutUint16(b[2:], 0)
	le.PutUint32(b[4:], size)
}

func (layoutV1) CommandHeader(b []byte) (CommandType, uint32) {
	return CommandType(le.Uint16(b[0:])), le.Uint32(b[4:])
}

func (layoutV1) FenceWaitSize() uint32 { return 16 }

func (layoutV1) PutFenceWait(p []byte, w FenceWait) error {
	if w.Cond != WaitEqual {
		return errors.Wrap(ErrUnsupported, "conditional fence wait")
	}
	le.PutUint64(p[0:], w.Address)
	le.PutUint64(p[8:], w.Value)
	return nil
}

func (layoutV1) FenceWait(p []byte) FenceWait {
	return FenceWait{Address: le.Uint64(p[0:]), Value: le.Uint64(p[8:]), Cond: WaitEqual}
}

func (layoutV1) FillSize() uint32 { return 24 }

func (layoutV1) PutFill(p []byte, f Fill) error {
	if f.Pattern > 0xffffffff {
		return errors.Wrapf(ErrUnsupported, "fill pattern %#x wider than 32 bits", f.Pattern)
	}
	le.PutUint64(p[0:], f.Address)
	le.PutUint64(p[8:], f.Length)
	le.PutUint32(p[16:], uint32(f.Pattern))
	le.PutUint32(p[20:], 0)
	return nil
}

func (layoutV1) Fill(p []byte) (Fill, int) {
	return Fill{Address: le.Uint64(p[0:]), Length: le.Uint64(p[8:]), Pattern: uint64(le.Uint32(p[16:]))}, 4
}

func (layoutV1) CopySize() uint32 { return 8 }

func (layoutV1) PutCopy(p []byte, c Copy) {
	le.PutUint64(p[0:], c.Descriptor)
}

func (layoutV1) Copy(p []byte) Copy {
	return Copy{Descriptor: le.Uint64(p[0:])}
}

func (layoutV1) CopyDescriptorSize() uint32 { return 24 }

func (layoutV1) PutCopyDescriptor(p []byte, d CopyDescriptor) {
	le.PutUint64(p[0:], d.Src)
	le.PutUint64(p[8:], d.Dst)
	le.PutUint64(p[16:], d.Length)
}

func (layoutV1) CopyDescriptor(p []byte) CopyDescriptor {
	return CopyDescriptor{Src: le.Uint64(p[0:]), Dst: le.Uint64(p[8:]), Length: le.Uint64(p[16:])}
}

type layoutV2 struct{}

func (layoutV2) Revision() Revision { return Revision2 }

func (layoutV2) PutCommandHeader(b []byte, t CommandType, size uint32) {
	le.PutUint32(b[0:], uint32(t))
	le.PutUint32(b[4:], size)
}

func (layoutV2) CommandHeader(b []byte) (CommandType, uint32) {
	return CommandType(le.Uint32(b[0:])), le.Uint32(b[4:])
}

func (layoutV2) FenceWaitSize() uint32 { return 24 }

func (layoutV2) PutFenceWait(p []byte, w FenceWait) error {
	le.PutUint64(p[0:], w.Address)
	le.PutUint64(p[8:], w.Value)
	le.PutUint32(p[16:], uint32(w.Cond))
	le.PutUint32(p[20:], 0)
	return nil
}

func (layoutV2) FenceWait(p []byte) FenceWait {
	return FenceWait{Address: le.Uint64(p[0:]), Value: le.Uint64(p[8:]), Cond: WaitCond(le.Uint32(p[16:]))}
}

func (layoutV2) FillSize() uint32 { return 24 }

func (layoutV2) PutFill(p []byte, f Fill) error {
	le.PutUint64(p[0:], f.Address)
	le.PutUint64(p[8:], f.Length)
	le.PutUint64(p[16:], f.Pattern)
	return nil
}

func (layoutV2) Fill(p []byte) (Fill, int) {
	return Fill{Address: le.Uint64(p[0:]), Length: le.Uint64(p[8:]), Pattern: le.Uint64(p[16:])}, 8
}

func (layoutV2) CopySize() uint32 { return 16 }

func (l layoutV2) PutCopy(p []byte, c Copy) {
	le.PutUint64(p[0:], c.Descriptor)
	le.PutUint32(p[8:], l.CopyDescriptorSize())
	le.PutUint32(p[12:], 0)
}

func (layoutV2) Copy(p []byte) Copy {
	return Copy{Descriptor: le.Uint64(p[0:])}
}

func (layoutV2) CopyDescriptorSize() uint32 { return 32 }

func (layoutV2) PutCopyDescriptor(p []byte, d CopyDescriptor) {
	le.PutUint64(p[0:], d.Src)
	le.PutUint64(p[8:], d.Dst)
	le.PutUint64(p[16:], d.Length)
	le.PutUint64(p[24:], 0)
}

func (layoutV2) CopyDescriptor(p []byte) CopyDescriptor {
	return CopyDescriptor{Src: le.Uint64(p[0:]), Dst: le.Uint64(p[8:]), Length: le.Uint64(p[16:])}
}

// Package memobj manages device-visible memory objects: allocation through a
// device session, the optional CPU mapping, byte accessors and release.
package memobj

import (
	"encoding/binary"

	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/metrics"
	"github.com/fxnlabs/cmdstream/internal/shm"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyBacked is returned by Create* on an object that is still backed.
	ErrAlreadyBacked = errors.New("memory object already backed")
	// ErrNotBacked is returned by operations that need device memory.
	ErrNotBacked = errors.New("memory object not backed")
	// ErrNotMapped is returned by CPU accessors on an unmapped object.
	ErrNotMapped = errors.New("memory object not mapped")
	// ErrOutOfRange is returned for accesses beyond the object size.
	ErrOutOfRange = errors.New("access out of range")
)

var le = binary.LittleEndian

// Object is a device allocation. The zero Handle and Address mean the object
// is not backed by device memory.
type Object struct {
	sess    device.Session
	log     *zap.Logger
	size    uint64
	flags   device.Flags
	handle  device.Handle
	address uint64
	token   uint64
	mapping []byte
}

// New returns an unbacked object description. size is the requested size;
// the device may round it up on Create.
func New(sess device.Session, size uint64, flags device.Flags, log *zap.Logger) *Object {
	if log == nil {
		log = zap.NewNop()
	}
	return &Object{sess: sess, log: log, size: size, flags: flags}
}

// Handle of the object, zero when not backed.
func (o *Object) Handle() device.Handle { return o.handle }

// Address is the device virtual address, zero when not backed.
func (o *Object) Address() uint64 { return o.address }

// Size is the device-rounded size once backed, the requested size before.
func (o *Object) Size() uint64 { return o.size }

// Flags returns the allocation attributes.
func (o *Object) Flags() device.Flags { return o.flags }

// Session the object was created through.
func (o *Object) Session() device.Session { return o.sess }

// Backed reports whether the object currently owns device memory.
func (o *Object) Backed() bool { return o.handle != 0 }

// Mapped reports whether a CPU mapping is established.
func (o *Object) Mapped() bool { return o.mapping != nil }

// Bytes returns the CPU mapping, nil when unmapped.
func (o *Object) Bytes() []byte { return o.mapping }

func (o *Object) checkUnbacked() error {
	if o.handle != 0 || o.address != 0 || o.mapping != nil {
		return errors.Wrapf(ErrAlreadyBacked, "handle %d", o.handle)
	}
	return nil
}

// Create allocates device memory for the object, fetches its authoritative
// size and address and maps it when FlagMappable is set.
func (o *Object) Create() error {
	if err := o.checkUnbacked(); err != nil {
		return err
	}
	h, _, err := o.sess.Alloc(o.size, o.flags)
	if err != nil {
		return errors.Wrapf(err, "allocate %d bytes", o.size)
	}
	return o.adopt(h)
}

// CreateFromMemory wraps existing host memory as a device object. mem must
// stay alive and unmoved until Destroy.
func (o *Object) CreateFromMemory(mem []byte) error {
	if err := o.checkUnbacked(); err != nil {
		return err
	}
	h, _, err := o.sess.AllocFromMemory(mem, o.flags)
	if err != nil {
		return errors.Wrapf(err, "wrap %d bytes of host memory", len(mem))
	}
	return o.adopt(h)
}

// CreateFromExternalHandle imports an object exported by another session.
func (o *Object) CreateFromExternalHandle(ext device.ExternalHandle) error {
	if err := o.checkUnbacked(); err != nil {
		return err
	}
	h, _, err := o.sess.Import(ext)
	if err != nil {
		return errors.Wrapf(err, "import external handle %#x", uint64(ext))
	}
	return o.adopt(h)
}

// adopt completes creation of a freshly allocated handle. On failure the
// handle is released and the object is left unbacked.
func (o *Object) adopt(h device.Handle) error {
	info, err := o.sess.Info(h)
	if err != nil {
		return multierr.Append(errors.Wrapf(err, "info for handle %d", h), o.sess.Release(h))
	}
	o.handle = h
	o.address = info.Address
	o.size = info.Size
	o.token = info.MapToken
	if info.Flags != 0 {
		o.flags = info.Flags
	}
	if o.flags.Has(device.FlagMappable) {
		if err := o.Map(); err != nil {
			release := o.sess.Release(h)
			o.reset()
			return multierr.Append(err, release)
		}
	}
	metrics.MemoryObjectsLive.Inc()
	metrics.MemoryObjectBytes.Add(float64(o.size))
	o.log.Debug("memory object created",
		zap.Uint32("handle", uint32(o.handle)),
		zap.Uint64("address", o.address),
		zap.Uint64("size", o.size),
		zap.Stringer("flags", o.flags))
	return nil
}

// Export returns a token other sessions can import.
func (o *Object) Export() (device.ExternalHandle, error) {
	if !o.Backed() {
		return 0, ErrNotBacked
	}
	ext, err := o.sess.Export(o.handle)
	if err != nil {
		return 0, errors.Wrapf(err, "export handle %d", o.handle)
	}
	return ext, nil
}

// Map establishes the CPU mapping. Mapping an already mapped object is a no-op.
func (o *Object) Map() error {
	if !o.Backed() {
		return ErrNotBacked
	}
	if o.mapping != nil {
		return nil
	}
	m, err := o.sess.Map(o.token, o.size, device.ProtReadWrite)
	if err != nil {
		return errors.Wrapf(err, "map handle %d", o.handle)
	}
	if !shm.Aligned(m) {
		_ = o.sess.Unmap(o.token)
		return errors.Errorf("mapping of handle %d is not 8-byte aligned", o.handle)
	}
	o.mapping = m
	return nil
}

// Unmap revokes the CPU mapping. The backing allocation is kept.
func (o *Object) Unmap() error {
	if o.mapping == nil {
		return nil
	}
	o.mapping = nil
	if err := o.sess.Unmap(o.token); err != nil {
		return errors.Wrapf(err, "unmap handle %d", o.handle)
	}
	return nil
}

// Destroy unmaps and releases the object. It is safe on an object that is
// not backed. A session reporting ErrNoDevice counts as already released.
func (o *Object) Destroy() error {
	if !o.Backed() {
		return nil
	}
	err := o.Unmap()
	if errors.Is(err, device.ErrNoDevice) {
		err = nil
	}
	h, size := o.handle, o.size
	if rerr := o.sess.Release(h); rerr != nil {
		if !errors.Is(rerr, device.ErrNoDevice) {
			return multierr.Append(err, errors.Wrapf(rerr, "release handle %d", h))
		}
		o.log.Debug("device gone, treating handle as released", zap.Uint32("handle", uint32(h)))
	}
	o.reset()
	metrics.MemoryObjectsLive.Dec()
	metrics.MemoryObjectBytes.Sub(float64(size))
	return err
}

func (o *Object) reset() {
	o.handle = 0
	o.address = 0
	o.token = 0
	o.mapping = nil
}

// Contains reports whether [offset, offset+length) lies within the object.
func (o *Object) Contains(offset, length uint64) bool {
	return offset <= o.size && length <= o.size-offset
}

func (o *Object) span(offset, length uint64) ([]byte, error) {
	if o.mapping == nil {
		return nil, ErrNotMapped
	}
	if !o.Contains(offset, length) {
		return nil, errors.Wrapf(ErrOutOfRange, "[%d, %d) in object of %d bytes", offset, offset+length, o.size)
	}
	return o.mapping[offset : offset+length], nil
}

// ReadAt copies len(p) bytes at offset into p.
func (o *Object) ReadAt(p []byte, offset uint64) error {
	b, err := o.span(offset, uint64(len(p)))
	if err != nil {
		return err
	}
	copy(p, b)
	return nil
}

// WriteAt copies p into the object at offset.
func (o *Object) WriteAt(p []byte, offset uint64) error {
	b, err := o.span(offset, uint64(len(p)))
	if err != nil {
		return err
	}
	copy(b, p)
	return nil
}

func (o *Object) ReadUint8(offset uint64) (uint8, error) {
	b, err := o.span(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (o *Object) ReadUint16(offset uint64) (uint16, error) {
	b, err := o.span(offset, 2)
	if err != nil {
		return 0, err
	}
	return le.Uint16(b), nil
}

func (o *Object) ReadUint32(offset uint64) (uint32, error) {
	b, err := o.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

func (o *Object) ReadUint64(offset uint64) (uint64, error) {
	b, err := o.span(offset, 8)
	if err != nil {
		return 0, err
	}
	return le.Uint64(b), nil
}

func (o *Object) WriteUint8(offset uint64, v uint8) error {
	b, err := o.span(offset, 1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (o *Object) WriteUint16(offset uint64, v uint16) error {
	b, err := o.span(offset, 2)
	if err != nil {
		return err
	}
	le.PutUint16(b, v)
	return nil
}

func (o *Object) WriteUint32(offset uint64, v uint32) error {
	b, err := o.span(offset, 4)
	if err != nil {
		return err
	}
	le.PutUint32(b, v)
	return nil
}

func (o *Object) WriteUint64(offset uint64, v uint64) error {
	b, err := o.span(offset, 8)
	if err != nil {
		return err
	}
	le.PutUint64(b, v)
	return nil
}

// LoadUint64 atomically reads the 8-byte aligned word at offset. Use it for
// words the device may write concurrently, such as fences and timestamps.
func (o *Object) LoadUint64(offset uint64) (uint64, error) {
	if _, err := o.span(offset, 8); err != nil {
		return 0, err
	}
	if offset%8 != 0 {
		return 0, errors.Wrapf(ErrOutOfRange, "offset %d not 8-byte aligned", offset)
	}
	return shm.LoadUint64(o.mapping, offset), nil
}

// StoreUint64 atomically writes the 8-byte aligned word at offset.
func (o *Object) StoreUint64(offset uint64, v uint64) error {
	if _, err := o.span(offset, 8); err != nil {
		return err
	}
	if offset%8 != 0 {
		return errors.Wrapf(ErrOutOfRange, "offset %d not 8-byte aligned", offset)
	}
	shm.StoreUint64(o.mapping, offset, v)
	return nil
}

// Fill sets length bytes starting at offset to pattern.
func (o *Object) Fill(pattern byte, offset, length uint64) error {
	b, err := o.span(offset, length)
	if err != nil {
		return err
	}
	for i := range b {
		b[i] = pattern
	}
	return nil
}

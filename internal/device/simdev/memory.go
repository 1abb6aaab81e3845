package simdev

import (
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/shm"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// backing is device memory shared by an object and its imports.
type backing struct {
	mem     []byte
	address uint64
	size    uint64
	flags   device.Flags
	user    bool
	refs    int
	ext     device.ExternalHandle
}

type object struct {
	handle device.Handle
	back   *backing
	mapped bool
}

func (o *object) contains(addr, length uint64) bool {
	return addr >= o.back.address && length <= o.back.size && addr-o.back.address <= o.back.size-length
}

// mapTokenShift places the handle above the page offset bits of a token.
const mapTokenShift = 12

func tokenFor(h device.Handle) uint64 { return uint64(h) << mapTokenShift }

func (d *Device) newHandle() device.Handle {
	return device.Handle(d.handles.Add(1))
}

func (d *Device) insert(b *backing) device.Handle {
	b.refs++
	h := d.newHandle()
	d.objects[h] = &object{handle: h, back: b}
	return h
}

func checkPlacement(flags device.Flags) error {
	if flags.Has(device.FlagDeviceLocal | device.FlagSystem) {
		return errors.Wrap(device.ErrInvalid, "device-local and system placement are exclusive")
	}
	if flags.Has(device.FlagCached | device.FlagWriteCombine) {
		return errors.Wrap(device.ErrInvalid, "cached and write-combined access are exclusive")
	}
	return nil
}

// Alloc implements device.Session. Sizes are rounded up to the page size.
func (d *Device) Alloc(size uint64, flags device.Flags) (device.Handle, uint64, error) {
	if size == 0 {
		return 0, 0, errors.Wrap(device.ErrInvalid, "zero size allocation")
	}
	if err := checkPlacement(flags); err != nil {
		return 0, 0, err
	}
	rounded := wire.AlignUp(size, d.cfg.PageSize)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, 0, device.ErrNoDevice
	}
	if d.memUsed+rounded > d.cfg.MemoryTotal {
		return 0, 0, errors.Wrapf(device.ErrNoMemory, "%d bytes requested, %d of %d used", rounded, d.memUsed, d.cfg.MemoryTotal)
	}
	b := &backing{
		mem:     shm.Alloc(rounded),
		address: d.nextVA,
		size:    rounded,
		flags:   flags,
	}
	// one guard page between allocations
	d.nextVA += rounded + d.cfg.PageSize
	d.memUsed += rounded
	h := d.insert(b)
	d.log.Debug("alloc", zap.Uint32("handle", uint32(h)), zap.Uint64("address", b.address), zap.Uint64("size", rounded))
	return h, b.address, nil
}

// AllocFromMemory implements device.Session. mem must be 8-byte aligned and
// its length a multiple of 8.
func (d *Device) AllocFromMemory(mem []byte, flags device.Flags) (device.Handle, uint64, error) {
	if len(mem) == 0 || len(mem)%8 != 0 || !shm.Aligned(mem) {
		return 0, 0, errors.Wrapf(device.ErrInvalid, "host memory of %d bytes is not 8-byte aligned", len(mem))
	}
	if err := checkPlacement(flags); err != nil {
		return 0, 0, err
	}
	if flags.Has(device.FlagDeviceLocal) {
		return 0, 0, errors.Wrap(device.ErrInvalid, "host memory cannot be device-local")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, 0, device.ErrNoDevice
	}
	size := uint64(len(mem))
	b := &backing{
		mem:     mem,
		address: d.nextVA,
		size:    size,
		flags:   flags,
		user:    true,
	}
	d.nextVA += wire.AlignUp(size, d.cfg.PageSize) + d.cfg.PageSize
	return d.insert(b), b.address, nil
}

// Release implements device.Session.
func (d *Device) Release(h device.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrNoDevice
	}
	o, ok := d.objects[h]
	if !ok {
		return errors.Wrapf(device.ErrNotFound, "handle %d", h)
	}
	delete(d.objects, h)
	delete(d.jobs, h)
	o.back.refs--
	if o.back.refs == 0 {
		if o.back.ext != 0 {
			delete(d.exports, o.back.ext)
		}
		if !o.back.user {
			d.memUsed -= o.back.size
		}
	}
	return nil
}

func (d *Device) lookup(h device.Handle) (*object, error) {
	if d.closed {
		return nil, device.ErrNoDevice
	}
	o, ok := d.objects[h]
	if !ok {
		return nil, errors.Wrapf(device.ErrNotFound, "handle %d", h)
	}
	return o, nil
}

// Info implements device.Session.
func (d *Device) Info(h device.Handle) (device.ObjectInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, err := d.lookup(h)
	if err != nil {
		return device.ObjectInfo{}, err
	}
	return device.ObjectInfo{
		Address:  o.back.address,
		Size:     o.back.size,
		MapToken: tokenFor(h),
		Flags:    o.back.flags,
	}, nil
}

// Map implements device.Session. The returned slice aliases device memory.
func (d *Device) Map(token uint64, size uint64, prot device.Protection) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, err := d.lookup(device.Handle(token >> mapTokenShift))
	if err != nil {
		return nil, err
	}
	switch {
	case token != tokenFor(o.handle):
		return nil, errors.Wrapf(device.ErrInvalid, "map token %#x", token)
	case !o.back.flags.Has(device.FlagMappable):
		return nil, errors.Wrapf(device.ErrInvalid, "handle %d is not mappable", o.handle)
	case size == 0 || size > o.back.size:
		return nil, errors.Wrapf(device.ErrInvalid, "map %d bytes of %d", size, o.back.size)
	case prot&device.ProtReadWrite == 0:
		return nil, errors.Wrap(device.ErrInvalid, "empty protection")
	}
	o.mapped = true
	return o.back.mem[:size:size], nil
}

// Unmap implements device.Session.
func (d *Device) Unmap(token uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, err := d.lookup(device.Handle(token >> mapTokenShift))
	if err != nil {
		return err
	}
	if !o.mapped {
		return errors.Wrapf(device.ErrInvalid, "handle %d is not mapped", o.handle)
	}
	o.mapped = false
	return nil
}

// Export implements device.Session. Only FlagShareable objects can be exported.
func (d *Device) Export(h device.Handle) (device.ExternalHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, err := d.lookup(h)
	if err != nil {
		return 0, err
	}
	if !o.back.flags.Has(device.FlagShareable) {
		return 0, errors.Wrapf(device.ErrInvalid, "handle %d is not shareable", h)
	}
	if o.back.ext == 0 {
		o.back.ext = device.ExternalHandle(d.extIDs.Add(1))
		d.exports[o.back.ext] = o.back
	}
	return o.back.ext, nil
}

// Import implements device.Session. The new handle shares the exported memory.
func (d *Device) Import(ext device.ExternalHandle) (device.Handle, uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, 0, device.ErrNoDevice
	}
	b, ok := d.exports[ext]
	if !ok {
		return 0, 0, errors.Wrapf(device.ErrNotFound, "external handle %#x", uint64(ext))
	}
	return d.insert(b), b.address, nil
}

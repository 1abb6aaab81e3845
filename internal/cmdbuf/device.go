package cmdbuf

import (
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Device is a device session with its revision-dependent encoding resolved.
// The revision is fixed for the lifetime of a session, so every buffer
// created from one Device shares its layout.
type Device struct {
	sess            device.Session
	log             *zap.Logger
	layout          wire.Layout
	contextSaveSize uint64
}

// Open queries the device revision and context save size of sess.
func Open(sess device.Session, log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}
	rev, err := sess.QueryParam(device.ParamDeviceRevision, 0)
	if err != nil {
		return nil, errors.Wrap(err, "query device revision")
	}
	layout, err := wire.LayoutFor(wire.Revision(rev))
	if err != nil {
		return nil, err
	}
	tail, err := sess.QueryParam(device.ParamContextSaveSize, 0)
	if err != nil {
		return nil, errors.Wrap(err, "query context save size")
	}
	log.Debug("command stream device resolved",
		zap.Stringer("revision", layout.Revision()),
		zap.Uint64("context_save_size", tail))
	return &Device{sess: sess, log: log, layout: layout, contextSaveSize: tail}, nil
}

// Session returns the underlying device session.
func (d *Device) Session() device.Session { return d.sess }

// Layout returns the wire layout of the device revision.
func (d *Device) Layout() wire.Layout { return d.layout }

// ContextSaveSize is the size of the tail every buffer reserves for the device.
func (d *Device) ContextSaveSize() uint64 { return d.contextSaveSize }

package device

import (
	"code.hybscloud.com/iox"
	"github.com/pkg/errors"
)

var (
	// ErrBusy is the transient "resubmit later" condition. It wraps
	// iox.ErrWouldBlock so generic backpressure handling recognizes it.
	ErrBusy = errors.WithMessage(iox.ErrWouldBlock, "device busy")

	ErrNoDevice = errors.New("no such device")
	ErrNoMemory = errors.New("out of device memory")
	ErrInvalid  = errors.New("invalid argument")
	ErrNotFound = errors.New("no such object")
	ErrTimeout  = errors.New("timed out")
	ErrClosed   = errors.New("session closed")
)

// IsBusy reports whether err is a transient backpressure condition.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy) || iox.IsWouldBlock(err)
}

package cmdbuf

import "github.com/pkg/errors"

var (
	// ErrCapacity means a command, resize or submission does not fit in the
	// writable window of the buffer. It is detected before any device call.
	ErrCapacity = errors.New("command buffer capacity exceeded")
	// ErrInvariant reports a programming error: encoding before Start,
	// misaligned sizes or offsets, or submitting without references.
	ErrInvariant = errors.New("command buffer invariant violated")
)

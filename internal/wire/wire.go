// Package wire defines the binary layout of command streams as consumed by
// the device. All fields are little-endian and every payload is 8-byte
// aligned.
//
// The stream header and the timestamp and fence-signal payloads are common
// to every device revision. Command headers and the fence-wait, fill and copy
// payloads differ between revisions and are encoded through a Layout.
package wire

import (
	"encoding/binary"
	"fmt"
)

const (
	// StreamHeaderSize is the encoded size of StreamHeader.
	StreamHeaderSize = 24
	// CommandHeaderSize is the encoded size of a command header.
	CommandHeaderSize = 8
	// CommandAlign is the alignment of every command and payload.
	CommandAlign = 8
	// ContextSaveAlign is the alignment of the context save area.
	ContextSaveAlign = 64
)

var le = binary.LittleEndian

// AlignUp rounds v up to a multiple of align, which must be a power of two.
func AlignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// CommandType identifies a command.
type CommandType uint32

const (
	CmdNop CommandType = iota
	CmdBarrier
	CmdTimestamp
	CmdFenceSignal
	CmdFenceWait
	CmdFill
	CmdCopy
)

var commandNames = [...]string{
	CmdNop:         "nop",
	CmdBarrier:     "barrier",
	CmdTimestamp:   "timestamp",
	CmdFenceSignal: "fence_signal",
	CmdFenceWait:   "fence_wait",
	CmdFill:        "fill",
	CmdCopy:        "copy",
}

func (t CommandType) String() string {
	if int(t) < len(commandNames) {
		return commandNames[t]
	}
	return fmt.Sprintf("command(%d)", uint32(t))
}

// StreamHeader sits at the start offset of every command stream.
type StreamHeader struct {
	RegionSize         uint32
	FirstCommandOffset uint32
	ContextSaveAddress uint64
	APIVersion         uint32
}

// Put encodes h into b[:StreamHeaderSize].
func (h StreamHeader) Put(b []byte) {
	_ = b[StreamHeaderSize-1]
	le.PutUint32(b[0:], h.RegionSize)
	le.PutUint32(b[4:], h.FirstCommandOffset)
	le.PutUint64(b[8:], h.ContextSaveAddress)
	le.PutUint32(b[16:], h.APIVersion)
	le.PutUint32(b[20:], 0)
}

// ReadStreamHeader decodes a StreamHeader from b.
func ReadStreamHeader(b []byte) StreamHeader {
	_ = b[StreamHeaderSize-1]
	return StreamHeader{
		RegionSize:         le.Uint32(b[0:]),
		FirstCommandOffset: le.Uint32(b[4:]),
		ContextSaveAddress: le.Uint64(b[8:]),
		APIVersion:         le.Uint32(b[16:]),
	}
}

// Timestamp makes the device write its clock to Address.
type Timestamp struct {
	Address uint64
}

// TimestampSize is the encoded size of a timestamp payload.
const TimestampSize = 8

func (ts Timestamp) Put(p []byte) {
	le.PutUint64(p[0:], ts.Address)
}

func ReadTimestamp(p []byte) Timestamp {
	return Timestamp{Address: le.Uint64(p[0:])}
}

// FenceSignal makes the device write Value to Address.
type FenceSignal struct {
	Address uint64
	Value   uint64
}

// FenceSignalSize is the encoded size of a fence-signal payload.
const FenceSignalSize = 16

func (fs FenceSignal) Put(p []byte) {
	le.PutUint64(p[0:], fs.Address)
	le.PutUint64(p[8:], fs.Value)
}

func ReadFenceSignal(p []byte) FenceSignal {
	return FenceSignal{Address: le.Uint64(p[0:]), Value: le.Uint64(p[8:])}
}

// WaitCond is the comparison a fence wait applies.
type WaitCond uint32

const (
	// WaitEqual proceeds once the fence word equals the value.
	WaitEqual WaitCond = iota
	// WaitGreaterEqual proceeds once the fence word reaches the value.
	WaitGreaterEqual
)

// Satisfied reports whether current satisfies the condition against value.
func (c WaitCond) Satisfied(current, value uint64) bool {
	if c == WaitGreaterEqual {
		return current >= value
	}
	return current == value
}

// FenceWait stalls the stream until the word at Address satisfies Cond.
type FenceWait struct {
	Address uint64
	Value   uint64
	Cond    WaitCond
}

// Fill makes the device repeat Pattern over [Address, Address+Length).
type Fill struct {
	Address uint64
	Length  uint64
	Pattern uint64
}

// Copy points at a CopyDescriptor in device memory.
type Copy struct {
	Descriptor uint64
}

// CopyDescriptor describes one device-side copy.
type CopyDescriptor struct {
	Src    uint64
	Dst    uint64
	Length uint64
}

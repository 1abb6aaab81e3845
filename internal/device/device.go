// Package device defines the contract between the command-stream protocol and
// the device session transport: memory object allocation, CPU mapping,
// parameter queries, queue management, submission and completion waits.
//
// Implementations must be safe for concurrent use and must report transient
// backpressure with ErrBusy, separately from hard failures.
package device

import "fmt"

// Handle identifies a memory object within a session. Zero means "not backed".
type Handle uint32

// ExternalHandle is a session-independent token used to share a memory object.
type ExternalHandle uint64

// QueueID identifies an execution queue created with Session.CreateQueue.
type QueueID uint32

// Flags are allocation attributes of a memory object.
type Flags uint32

const (
	// FlagMappable requests a CPU mapping of the object.
	FlagMappable Flags = 1 << iota
	// FlagCached selects cached CPU access.
	FlagCached
	// FlagWriteCombine selects write-combined CPU access.
	FlagWriteCombine
	// FlagDeviceLocal places the object in device-local memory.
	FlagDeviceLocal
	// FlagSystem places the object in system memory.
	FlagSystem
	// FlagShareable allows the object to be exported.
	FlagShareable
)

func (f Flags) String() string {
	return fmt.Sprintf("%#x", uint32(f))
}

// Has reports whether all bits of other are set in f.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// Protection of a CPU mapping.
type Protection uint32

const (
	ProtRead Protection = 1 << iota
	ProtWrite

	ProtReadWrite = ProtRead | ProtWrite
)

// Priority of a submission or queue.
type Priority uint32

const (
	PriorityIdle Priority = iota
	PriorityNormal
	PriorityFocus
	PriorityRealtime
)

// QueueFlags are queue creation attributes.
type QueueFlags uint32

const (
	// QueueTurbo asks the device to favor latency over power for the queue.
	QueueTurbo QueueFlags = 1 << iota
)

// Param identifies a numeric device parameter.
type Param uint32

const (
	ParamDeviceRevision Param = iota + 1
	ParamEngineCount
	ParamContextSaveSize
	ParamPageSize
	// ParamDeviceClock is the device clock in nanoseconds.
	ParamDeviceClock
	// ParamEngineJobs is the number of jobs completed by the engine selected by index.
	ParamEngineJobs
	ParamMemoryTotal
	ParamMemoryUsed
)

var paramNames = map[Param]string{
	ParamDeviceRevision:  "device_revision",
	ParamEngineCount:     "engine_count",
	ParamContextSaveSize: "context_save_size",
	ParamPageSize:        "page_size",
	ParamDeviceClock:     "device_clock",
	ParamEngineJobs:      "engine_jobs",
	ParamMemoryTotal:     "memory_total",
	ParamMemoryUsed:      "memory_used",
}

func (p Param) String() string {
	if name, ok := paramNames[p]; ok {
		return name
	}
	return fmt.Sprintf("param(%d)", uint32(p))
}

// JobStatus is the device-reported completion status of a submission.
type JobStatus uint32

const (
	StatusComplete JobStatus = iota
	// StatusFaulted means the device rejected a command, typically an address
	// outside every object enumerated in the request.
	StatusFaulted
	// StatusAborted means the job was abandoned because the session closed.
	StatusAborted
	// StatusHang means the device watchdog stopped the job.
	StatusHang
)

func (s JobStatus) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusFaulted:
		return "faulted"
	case StatusAborted:
		return "aborted"
	case StatusHang:
		return "hang"
	default:
		return fmt.Sprintf("status(%d)", uint32(s))
	}
}

// NoPreemption marks a queue submission without a preemption buffer.
const NoPreemption = ^uint32(0)

// ObjectInfo is the authoritative description of a memory object.
type ObjectInfo struct {
	Address  uint64
	Size     uint64
	MapToken uint64
	Flags    Flags
}

// SubmitRequest submits a command stream directly to an engine.
// Handles[0] must be the command buffer itself.
type SubmitRequest struct {
	Engine         uint32
	Handles        []Handle
	CommandsOffset uint64
	Priority       Priority
}

// QueueSubmitRequest submits a command stream to a queue.
type QueueSubmitRequest struct {
	Queue           QueueID
	Handles         []Handle
	CommandsOffset  uint64
	Priority        Priority
	PreemptionIndex uint32
}

// WaitRequest blocks until the latest job of Handle completes or the device
// clock reaches DeadlineNs. Status is filled in on success.
type WaitRequest struct {
	Handle     Handle
	DeadlineNs uint64
	Status     JobStatus
}

// Session is a control channel to one device.
type Session interface {
	Alloc(size uint64, flags Flags) (Handle, uint64, error)
	AllocFromMemory(mem []byte, flags Flags) (Handle, uint64, error)
	Release(h Handle) error
	Info(h Handle) (ObjectInfo, error)

	Map(token uint64, size uint64, prot Protection) ([]byte, error)
	Unmap(token uint64) error

	Export(h Handle) (ExternalHandle, error)
	Import(ext ExternalHandle) (Handle, uint64, error)

	CreateQueue(p Priority, flags QueueFlags) (QueueID, error)
	DestroyQueue(id QueueID) error

	Submit(req *SubmitRequest) error
	SubmitToQueue(req *QueueSubmitRequest) error
	Wait(req *WaitRequest) error

	QueryParam(id Param, index uint32) (uint64, error)

	Close() error
}

// Package simdev is an in-process reference implementation of
// device.Session. It allocates memory objects from host memory, executes
// command streams on engine and queue goroutines and decodes them with the
// wire layout of its configured revision.
//
// The executor resolves every address against the objects enumerated in
// the submission only. An address outside them faults the job, exactly as
// real hardware without a page-table entry would.
package simdev

import (
	"sync"
	"sync/atomic"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config describes the simulated hardware.
type Config struct {
	Revision        wire.Revision
	Engines         int
	EngineDepth     int
	QueueDepth      int
	MemoryTotal     uint64
	ContextSaveSize uint64
	PageSize        uint64
	// HangTimeout bounds how long a job may stall on a fence before the
	// watchdog stops it. Zero disables the watchdog.
	HangTimeout time.Duration
}

// DefaultConfig returns a two-engine revision 2 device with 256 MiB of memory.
func DefaultConfig() Config {
	return Config{
		Revision:        wire.Revision2,
		Engines:         2,
		EngineDepth:     4,
		QueueDepth:      8,
		MemoryTotal:     256 << 20,
		ContextSaveSize: 256,
		PageSize:        4096,
		HangTimeout:     5 * time.Second,
	}
}

func (c Config) validate() error {
	switch {
	case c.Engines <= 0:
		return errors.Wrapf(device.ErrInvalid, "engines must be positive, got %d", c.Engines)
	case c.EngineDepth <= 0:
		return errors.Wrapf(device.ErrInvalid, "engine depth must be positive, got %d", c.EngineDepth)
	case c.QueueDepth <= 0 || c.QueueDepth&(c.QueueDepth-1) != 0:
		return errors.Wrapf(device.ErrInvalid, "queue depth must be a power of two, got %d", c.QueueDepth)
	case c.PageSize == 0 || c.PageSize&(c.PageSize-1) != 0:
		return errors.Wrapf(device.ErrInvalid, "page size must be a power of two, got %d", c.PageSize)
	case c.ContextSaveSize%wire.CommandAlign != 0:
		return errors.Wrapf(device.ErrInvalid, "context save size must be 8-byte aligned, got %d", c.ContextSaveSize)
	}
	return nil
}

// vaBase is the first device virtual address handed out.
const vaBase = 0x1_0000_0000

// Device is a simulated accelerator and the session to it.
type Device struct {
	cfg    Config
	log    *zap.Logger
	layout wire.Layout
	epoch  time.Time

	mu       sync.Mutex
	closed   bool
	objects  map[device.Handle]*object
	exports  map[device.ExternalHandle]*backing
	jobs     map[device.Handle]*job
	queues   map[device.QueueID]*queue
	nextVA   uint64
	memUsed  uint64
	handles  atomix.Uint32
	queueIDs atomix.Uint32
	extIDs   atomix.Uint32

	engines []*engine
	stop    chan struct{}
	wg      sync.WaitGroup
}

var _ device.Session = (*Device)(nil)

// Open starts a simulated device.
func Open(cfg Config, log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	layout, err := wire.LayoutFor(cfg.Revision)
	if err != nil {
		return nil, err
	}

	d := &Device{
		cfg:     cfg,
		log:     log,
		layout:  layout,
		epoch:   time.Now(),
		objects: make(map[device.Handle]*object),
		exports: make(map[device.ExternalHandle]*backing),
		jobs:    make(map[device.Handle]*job),
		queues:  make(map[device.QueueID]*queue),
		nextVA:  vaBase,
		stop:    make(chan struct{}),
	}
	for i := range cfg.Engines {
		e := &engine{index: uint32(i), jobs: make(chan *job, cfg.EngineDepth)}
		d.engines = append(d.engines, e)
		d.wg.Add(1)
		go d.runEngine(e)
	}
	log.Info("simulated device opened",
		zap.Stringer("revision", cfg.Revision),
		zap.Int("engines", cfg.Engines),
		zap.Uint64("memory", cfg.MemoryTotal))
	return d, nil
}

// Layout returns the wire layout of the device revision.
func (d *Device) Layout() wire.Layout { return d.layout }

// clock is the device clock in nanoseconds.
func (d *Device) clock() uint64 {
	return uint64(time.Since(d.epoch).Nanoseconds())
}

// QueryParam implements device.Session.
func (d *Device) QueryParam(id device.Param, index uint32) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, device.ErrNoDevice
	}
	switch id {
	case device.ParamDeviceRevision:
		return uint64(d.cfg.Revision), nil
	case device.ParamEngineCount:
		return uint64(len(d.engines)), nil
	case device.ParamContextSaveSize:
		return d.cfg.ContextSaveSize, nil
	case device.ParamPageSize:
		return d.cfg.PageSize, nil
	case device.ParamDeviceClock:
		return d.clock(), nil
	case device.ParamEngineJobs:
		if int(index) >= len(d.engines) {
			return 0, errors.Wrapf(device.ErrInvalid, "engine %d", index)
		}
		return d.engines[index].completed.Load(), nil
	case device.ParamMemoryTotal:
		return d.cfg.MemoryTotal, nil
	case device.ParamMemoryUsed:
		return d.memUsed, nil
	default:
		return 0, errors.Wrapf(device.ErrInvalid, "unknown parameter %s", id)
	}
}

// Close stops all engines and queues. Jobs still pending finish with
// StatusAborted. Every later call on the session returns ErrNoDevice.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.stop)
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info("simulated device closed")
	return nil
}

type engine struct {
	index     uint32
	jobs      chan *job
	completed atomic.Uint64
}

func (d *Device) runEngine(e *engine) {
	defer d.wg.Done()
	for {
		select {
		case j := <-e.jobs:
			d.execute(j, &e.completed)
		case <-d.stop:
			for {
				select {
				case j := <-e.jobs:
					j.finish(device.StatusAborted)
				default:
					return
				}
			}
		}
	}
}

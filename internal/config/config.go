package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/device/simdev"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file name inside the home directory.
const DefaultFileName = "config.yaml"

// BackendSim selects the in-process simulated device.
const BackendSim = "sim"

type Logger struct {
	Verbosity string `yaml:"verbosity"`
	Encoding  string `yaml:"encoding"`
}

type Device struct {
	Backend         string        `yaml:"backend"`
	Revision        uint32        `yaml:"revision"`
	Engines         int           `yaml:"engines"`
	EngineDepth     int           `yaml:"engineDepth"`
	QueueDepth      int           `yaml:"queueDepth"`
	Memory          uint64        `yaml:"memory"`
	ContextSaveSize uint64        `yaml:"contextSaveSize"`
	PageSize        uint64        `yaml:"pageSize"`
	HangTimeout     time.Duration `yaml:"hangTimeout"`
}

type Submit struct {
	Timeout       time.Duration `yaml:"timeout"`
	RetryInterval time.Duration `yaml:"retryInterval"`
	Priority      string        `yaml:"priority"`
}

type Wait struct {
	Timeout time.Duration `yaml:"timeout"`
}

type Metrics struct {
	ListenAddress string `yaml:"listenAddress"`
}

type Config struct {
	Logger  Logger  `yaml:"logger"`
	Device  Device  `yaml:"device"`
	Submit  Submit  `yaml:"submit"`
	Wait    Wait    `yaml:"wait"`
	Metrics Metrics `yaml:"metrics"`
}

// Default returns the configuration used for any field a file leaves unset.
func Default() *Config {
	sim := simdev.DefaultConfig()
	return &Config{
		Logger: Logger{Verbosity: "info", Encoding: "json"},
		Device: Device{
			Backend:         BackendSim,
			Revision:        uint32(sim.Revision),
			Engines:         sim.Engines,
			EngineDepth:     sim.EngineDepth,
			QueueDepth:      sim.QueueDepth,
			Memory:          sim.MemoryTotal,
			ContextSaveSize: sim.ContextSaveSize,
			PageSize:        sim.PageSize,
			HangTimeout:     sim.HangTimeout,
		},
		Submit: Submit{
			Timeout:       2 * time.Second,
			RetryInterval: time.Millisecond,
			Priority:      "normal",
		},
		Wait:    Wait{Timeout: 5 * time.Second},
		Metrics: Metrics{ListenAddress: ":9090"},
	}
}

// GetDefaultConfigHome returns ~/.cmdstream, or the working directory when
// the home directory cannot be resolved.
func GetDefaultConfigHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cmdstream"
	}
	return filepath.Join(home, ".cmdstream")
}

// LoadConfig reads path over Default. A directory is resolved to its
// config.yaml.
func LoadConfig(path string) (*Config, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Validate checks the values the device and submission paths rely on.
func (c *Config) Validate() error {
	var errs []error
	if c.Device.Backend != BackendSim {
		errs = append(errs, fmt.Errorf("device.backend: unknown backend %q", c.Device.Backend))
	}
	if _, err := wire.LayoutFor(wire.Revision(c.Device.Revision)); err != nil {
		errs = append(errs, fmt.Errorf("device.revision: %w", err))
	}
	if c.Device.Engines <= 0 {
		errs = append(errs, fmt.Errorf("device.engines must be positive"))
	}
	if c.Submit.Timeout < 0 || c.Submit.RetryInterval < 0 {
		errs = append(errs, fmt.Errorf("submit.timeout and submit.retryInterval must not be negative"))
	}
	if _, err := c.Submit.ParsePriority(); err != nil {
		errs = append(errs, err)
	}
	if c.Wait.Timeout < 0 {
		errs = append(errs, fmt.Errorf("wait.timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// Sim converts the device section into a simulated device configuration.
func (d Device) Sim() simdev.Config {
	return simdev.Config{
		Revision:        wire.Revision(d.Revision),
		Engines:         d.Engines,
		EngineDepth:     d.EngineDepth,
		QueueDepth:      d.QueueDepth,
		MemoryTotal:     d.Memory,
		ContextSaveSize: d.ContextSaveSize,
		PageSize:        d.PageSize,
		HangTimeout:     d.HangTimeout,
	}
}

var priorities = map[string]device.Priority{
	"idle":     device.PriorityIdle,
	"normal":   device.PriorityNormal,
	"focus":    device.PriorityFocus,
	"realtime": device.PriorityRealtime,
}

// ParsePriority maps the configured priority name to a device priority.
// An empty name is normal priority.
func (s Submit) ParsePriority() (device.Priority, error) {
	if s.Priority == "" {
		return device.PriorityNormal, nil
	}
	p, ok := priorities[strings.ToLower(s.Priority)]
	if !ok {
		return 0, fmt.Errorf("submit.priority: unknown priority %q", s.Priority)
	}
	return p, nil
}

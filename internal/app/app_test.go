package app

import (
	"testing"
	"time"

	"github.com/fxnlabs/cmdstream/internal/cmdbuf"
	"github.com/fxnlabs/cmdstream/internal/config"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/wire"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Device.Revision = uint32(wire.Revision1)
	cfg.Submit.Priority = "focus"
	cfg.Submit.Timeout = 300 * time.Millisecond

	var (
		sess   device.Session
		dev    *cmdbuf.Device
		policy Policy
	)
	app := fxtest.New(t, WithConfig(cfg), fx.Populate(&sess, &dev, &policy))
	app.RequireStart()

	assert.Equal(t, wire.Revision1, dev.Layout().Revision())
	assert.Equal(t, device.PriorityFocus, policy.Priority)
	assert.Equal(t, 300*time.Millisecond, policy.Retry.Timeout)
	assert.Equal(t, cfg.Wait.Timeout, policy.WaitTimeout)

	app.RequireStop()
	_, err := sess.QueryParam(device.ParamEngineCount, 0)
	assert.True(t, errors.Is(err, device.ErrNoDevice), "session is closed on stop")
}

func TestModule(t *testing.T) {
	var dev *cmdbuf.Device
	app := fxtest.New(t, Module("../../fixtures/tests/config/valid_config.yaml"), fx.Populate(&dev))
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, wire.Revision1, dev.Layout().Revision())
}

func TestNewPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Submit.Priority = "bogus"
	_, err := NewPolicy(cfg)
	require.Error(t, err)
}

func TestMetricsServer(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.ListenAddress = "127.0.0.1:0"

	app := fxtest.New(t, WithConfig(cfg), MetricsModule)
	app.RequireStart()
	app.RequireStop()
}

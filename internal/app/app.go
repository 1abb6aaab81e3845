// Package app wires configuration, logging and the device session into an
// fx application shared by the CLI and the integration tests.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fxnlabs/cmdstream/internal/cmdbuf"
	"github.com/fxnlabs/cmdstream/internal/config"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/device/simdev"
	"github.com/fxnlabs/cmdstream/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module loads the configuration at configPath and provides the core
// components.
func Module(configPath string) fx.Option {
	return fx.Module("cmdstream",
		fx.Provide(func() (*config.Config, error) {
			return config.LoadConfig(configPath)
		}),
		core,
	)
}

// WithConfig provides the core components for an already loaded configuration.
func WithConfig(cfg *config.Config) fx.Option {
	return fx.Module("cmdstream",
		fx.Supply(cfg),
		core,
	)
}

var core = fx.Provide(
	NewLogger,
	NewSession,
	NewDevice,
	NewPolicy,
)

// Policy carries the submission and wait settings every caller threads
// explicitly into cmdbuf calls.
type Policy struct {
	Retry       cmdbuf.RetryPolicy
	Priority    device.Priority
	WaitTimeout time.Duration
}

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Logger)
}

// NewSession opens the configured device backend and closes it when the
// application stops.
func NewSession(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (device.Session, error) {
	if cfg.Device.Backend != config.BackendSim {
		return nil, fmt.Errorf("unknown device backend %q", cfg.Device.Backend)
	}
	sess, err := simdev.Open(cfg.Device.Sim(), log.Named("simdev"))
	if err != nil {
		return nil, fmt.Errorf("failed to open device: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Info("closing device session")
			return sess.Close()
		},
	})
	return sess, nil
}

func NewDevice(sess device.Session, log *zap.Logger) (*cmdbuf.Device, error) {
	return cmdbuf.Open(sess, log.Named("cmdbuf"))
}

func NewPolicy(cfg *config.Config) (Policy, error) {
	prio, err := cfg.Submit.ParsePriority()
	if err != nil {
		return Policy{}, err
	}
	return Policy{
		Retry: cmdbuf.RetryPolicy{
			Timeout:  cfg.Submit.Timeout,
			Interval: cfg.Submit.RetryInterval,
		},
		Priority:    prio,
		WaitTimeout: cfg.Wait.Timeout,
	}, nil
}

// MetricsModule serves the Prometheus registry on metrics.listenAddress.
var MetricsModule = fx.Module("metrics",
	fx.Provide(NewMetricsServer),
	fx.Invoke(func(*http.Server) {}),
)

func NewMetricsServer(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.Metrics.ListenAddress, Handler: mux}
	log = log.Named("metrics")

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}
			log.Info("serving metrics", zap.String("address", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}

package main

import (
	"context"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/fxnlabs/cmdstream/internal/app"
	"github.com/fxnlabs/cmdstream/internal/cmdbuf"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/memobj"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Open the device, submit a heartbeat stream and serve /metrics until interrupted",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "interval", Value: time.Second, Usage: "Heartbeat submission interval, 0 disables it"},
		},
		Action: func(c *cli.Context) error {
			log := loggerFrom(c)
			figure.NewFigure("cmdstream", "", true).Print()

			a := fx.New(
				app.WithConfig(configFrom(c)),
				app.MetricsModule,
				fx.WithLogger(func() fxevent.Logger {
					return &fxevent.ZapLogger{Logger: log.Named("fx")}
				}),
				fx.Invoke(func(lc fx.Lifecycle, dev *cmdbuf.Device, policy app.Policy) {
					if c.Duration("interval") <= 0 {
						return
					}
					hb := &heartbeat{dev: dev, policy: policy, interval: c.Duration("interval"), log: log.Named("heartbeat")}
					lc.Append(fx.Hook{OnStart: hb.start, OnStop: hb.stop})
				}),
			)
			a.Run()
			return a.Err()
		},
	}
}

// heartbeat periodically timestamps a word through the device so that the
// submission and wait metrics move while serving.
type heartbeat struct {
	dev      *cmdbuf.Device
	policy   app.Policy
	interval time.Duration
	log      *zap.Logger

	buf  *cmdbuf.Buffer
	mem  *memobj.Object
	done chan struct{}
	quit chan struct{}
}

func (h *heartbeat) start(context.Context) error {
	buf, err := h.dev.NewBuffer(4096)
	if err != nil {
		return err
	}
	mem := memobj.New(h.dev.Session(), 4096, device.FlagMappable, h.log)
	if err := mem.Create(); err != nil {
		_ = buf.Destroy()
		return err
	}
	h.buf, h.mem = buf, mem
	h.done = make(chan struct{})
	h.quit = make(chan struct{})
	go h.loop()
	return nil
}

func (h *heartbeat) loop() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.quit:
			return
		case <-ticker.C:
			if err := h.beat(); err != nil {
				h.log.Warn("heartbeat failed", zap.Error(err))
			}
		}
	}
}

func (h *heartbeat) beat() error {
	if err := h.buf.Start(0, 0); err != nil {
		return err
	}
	if err := h.buf.Timestamp(h.mem, 0); err != nil {
		return err
	}
	if err := h.buf.Submit(0, h.policy.Priority, h.policy.Retry); err != nil {
		return err
	}
	status, err := h.buf.Wait(h.policy.WaitTimeout)
	if err != nil {
		return err
	}
	ts, err := h.mem.LoadUint64(0)
	if err != nil {
		return err
	}
	h.log.Debug("heartbeat", zap.Stringer("status", status), zap.Uint64("device_clock", ts))
	return nil
}

func (h *heartbeat) stop(context.Context) error {
	close(h.quit)
	<-h.done
	return multierr.Append(h.buf.Destroy(), h.mem.Destroy())
}
